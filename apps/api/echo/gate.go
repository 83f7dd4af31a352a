package echoapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/eduos/core"
)

// frontDoorGate redirects browser navigations to the role portals according to the session cookie.
// API routes authenticate on their own and are never redirected.
func frontDoorGate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		if req.Method != http.MethodGet {
			return next(ctx)
		}

		path := req.URL.Path
		if path == "/" {
			if p, ok := cookiePrincipal(ctx); ok {
				return ctx.Redirect(http.StatusFound, "/"+string(p.Role))
			}
			return ctx.Redirect(http.StatusFound, "/login")
		}

		portal, ok := portalRole(path)
		if !ok {
			return next(ctx)
		}
		p, ok := cookiePrincipal(ctx)
		if !ok {
			return ctx.Redirect(http.StatusFound, "/login?redirect="+url.QueryEscape(path))
		}
		if p.Role != portal {
			return ctx.Redirect(http.StatusFound, "/"+string(p.Role))
		}
		return next(ctx)
	}
}

// portalRole reports which role portal path belongs to, if any.
func portalRole(path string) (core.Role, bool) {
	for _, role := range core.AllRoles {
		prefix := "/" + string(role)
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return role, true
		}
	}
	return "", false
}

func cookiePrincipal(ctx echo.Context) (core.Principal, bool) {
	cookie, err := ctx.Cookie(core.Conf.Server.TokenCookieName)
	if err != nil || cookie.Value == "" {
		return core.Principal{}, false
	}
	claims, err := parseToken(cookie.Value)
	if err != nil {
		return core.Principal{}, false
	}
	return claims.Principal(), true
}

func loginPage(ctx echo.Context) error {
	return ctx.String(http.StatusOK, fmt.Sprintf("Welcome to %s! Please log in: POST /api/auth/login", core.Conf.AppName))
}

func portal(ctx echo.Context) error {
	p, _ := cookiePrincipal(ctx)
	return ctx.String(http.StatusOK, fmt.Sprintf("%s %s portal", core.Conf.AppName, p.Role))
}
