package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/testutil"
)

func Test_frontDoorGate(t *testing.T) {
	app, store := setup(t)
	teacher := testutil.CreateUser(t, store.Users, core.RoleTeacher, "Tom", "Teach", "tom@eduos.test", "")
	token := getToken(t, teacher)

	tests := []struct {
		name         string
		path         string
		cookie       string
		wantCode     int
		wantLocation string
	}{
		{name: "Root, anonymous", path: "/", wantCode: http.StatusFound, wantLocation: "/login"},
		{name: "Root, logged in", path: "/", cookie: token, wantCode: http.StatusFound, wantLocation: "/teacher"},
		{name: "Portal, anonymous", path: "/admin/users", wantCode: http.StatusFound, wantLocation: "/login?redirect=%2Fadmin%2Fusers"},
		{name: "Portal, bad cookie", path: "/student", cookie: "garbage", wantCode: http.StatusFound, wantLocation: "/login?redirect=%2Fstudent"},
		{name: "Portal, other role", path: "/parent/grades", cookie: token, wantCode: http.StatusFound, wantLocation: "/teacher"},
		{name: "Portal, own role", path: "/teacher/classes", cookie: token, wantCode: http.StatusOK},
		{name: "Login page is public", path: "/login", wantCode: http.StatusOK},
		{name: "Health is public", path: "/health", wantCode: http.StatusOK},
		{name: "Lookalike prefix is not a portal", path: "/administration", wantCode: http.StatusNotFound},
		{name: "API is never redirected", path: "/api/analytics/dashboard", wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "eduos-token", Value: tt.cookie})
			}
			app.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
		})
	}
}
