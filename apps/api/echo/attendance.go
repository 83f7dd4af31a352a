package echoapi

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/attendance"
)

type attendanceApi struct {
	svc      attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, svc attendance.Service, validate *validator.Validate) {
	api := attendanceApi{svc: svc, validate: validate}
	staff := authMiddleware(core.RoleAdmin, core.RoleTeacher)

	g.GET("/attendance", api.query, staff)
	g.POST("/attendance", api.bulkSave, staff)
	g.GET("/attendance/student/:id", api.studentHistory, authMiddleware())
}

// Handlers

func (api *attendanceApi) bulkSave(ctx echo.Context) error {
	var data attendance.BulkAttendance
	if err := bindAndValidate(ctx, &data, api.validate); err != nil {
		return err
	}

	recs, err := api.svc.BulkSave(ctx.Request().Context(), getPrincipal(ctx), data)
	if err != nil {
		return errors.Wrap(err, "saving attendance")
	}
	return ok(ctx, recs, fmt.Sprintf("%d attendance records saved.", len(data.Records)))
}

func (api *attendanceApi) query(ctx echo.Context) error {
	var filter attendance.Filter
	if err := bindAndValidate(ctx, &filter, api.validate); err != nil {
		return err
	}

	recs, err := api.svc.Query(ctx.Request().Context(), getPrincipal(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ok(ctx, recs)
}

func (api *attendanceApi) studentHistory(ctx echo.Context) error {
	history, err := api.svc.StudentHistory(ctx.Request().Context(), getPrincipal(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding student attendance")
	}
	return ok(ctx, history)
}
