package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core/analytics"
)

type analyticsApi struct {
	svc analytics.Service
}

func registerAnalyticsAPI(g *echo.Group, svc analytics.Service) {
	api := analyticsApi{svc: svc}
	g.GET("/analytics/dashboard", api.dashboard, authMiddleware())
}

func (api *analyticsApi) dashboard(ctx echo.Context) error {
	dash, err := api.svc.Dashboard(ctx.Request().Context(), getPrincipal(ctx))
	if err != nil {
		return errors.Wrap(err, "loading dashboard")
	}
	return ok(ctx, dash)
}
