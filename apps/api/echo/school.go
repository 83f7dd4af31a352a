package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/school"
)

type schoolApi struct {
	svc      school.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, svc school.Service, validate *validator.Validate) {
	api := schoolApi{svc: svc, validate: validate}
	staff := authMiddleware(core.RoleAdmin, core.RoleTeacher)
	admin := authMiddleware(core.RoleAdmin)

	g.GET("/subjects", api.querySubjects, staff)
	g.POST("/subjects", api.createSubject, admin)

	g.GET("/classes", api.queryClasses, staff)
	g.POST("/classes", api.createClass, admin)
	g.GET("/classes/:id/students", api.queryRoster, staff)

	g.GET("/enrollments", api.queryEnrollments, staff)
	g.POST("/enrollments", api.createEnrollment, admin)
}

// Handlers

func (api *schoolApi) querySubjects(ctx echo.Context) error {
	subjects, err := api.svc.QuerySubjects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ok(ctx, subjects)
}

func (api *schoolApi) createSubject(ctx echo.Context) error {
	var data school.NewSubject
	if err := bindAndValidate(ctx, &data, api.validate); err != nil {
		return err
	}

	subj, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return created(ctx, subj)
}

func (api *schoolApi) queryClasses(ctx echo.Context) error {
	classes, err := api.svc.QueryClasses(ctx.Request().Context(), getPrincipal(ctx))
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ok(ctx, classes)
}

func (api *schoolApi) createClass(ctx echo.Context) error {
	var data school.NewClass
	if err := bindAndValidate(ctx, &data, api.validate); err != nil {
		return err
	}

	cls, err := api.svc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return created(ctx, cls)
}

func (api *schoolApi) queryRoster(ctx echo.Context) error {
	roster, err := api.svc.QueryRoster(ctx.Request().Context(), getPrincipal(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying roster")
	}
	return ok(ctx, roster)
}

func (api *schoolApi) queryEnrollments(ctx echo.Context) error {
	var filter school.EnrollmentFilter
	if err := bindAndValidate(ctx, &filter, api.validate); err != nil {
		return err
	}

	enrollments, err := api.svc.QueryEnrollments(ctx.Request().Context(), getPrincipal(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return ok(ctx, enrollments)
}

func (api *schoolApi) createEnrollment(ctx echo.Context) error {
	var data school.NewEnrollment
	if err := bindAndValidate(ctx, &data, api.validate); err != nil {
		return err
	}

	enr, err := api.svc.CreateEnrollment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating enrollment")
	}
	return created(ctx, enr)
}
