package echoapi

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/grade"
)

type gradeApi struct {
	svc      grade.Service
	validate *validator.Validate
}

func registerGradeAPI(g *echo.Group, svc grade.Service, validate *validator.Validate) {
	api := gradeApi{svc: svc, validate: validate}
	staff := authMiddleware(core.RoleAdmin, core.RoleTeacher)

	g.GET("/grades", api.query, authMiddleware())
	g.POST("/grades", api.bulkInsert, staff)
	g.GET("/grades/class/:id", api.classGradebook, staff)
}

// Handlers

func (api *gradeApi) bulkInsert(ctx echo.Context) error {
	var data grade.BulkGrades
	if err := bindAndValidate(ctx, &data, api.validate); err != nil {
		return err
	}

	grades, err := api.svc.BulkInsert(ctx.Request().Context(), getPrincipal(ctx), data)
	if err != nil {
		return errors.Wrap(err, "saving grades")
	}
	return ok(ctx, grades, fmt.Sprintf("%d grade records saved.", len(data.Records)))
}

func (api *gradeApi) query(ctx echo.Context) error {
	var filter grade.Filter
	if err := bindAndValidate(ctx, &filter, api.validate); err != nil {
		return err
	}

	grades, err := api.svc.Query(ctx.Request().Context(), getPrincipal(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ok(ctx, grades)
}

func (api *gradeApi) classGradebook(ctx echo.Context) error {
	book, err := api.svc.ClassGradebook(ctx.Request().Context(), getPrincipal(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding class grades")
	}
	return ok(ctx, book)
}
