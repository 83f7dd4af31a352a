package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/analytics"
	"github.com/trezcool/eduos/core/attendance"
	"github.com/trezcool/eduos/core/grade"
	"github.com/trezcool/eduos/core/school"
	"github.com/trezcool/eduos/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		Registry       *prometheus.Registry // a fresh one when nil

		UserSvc       user.Service
		SchoolSvc     school.Service
		AttendanceSvc attendance.Service
		GradeSvc      grade.Service
		AnalyticsSvc  analytics.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.Validate == nil || opts.Translator == nil {
		opts.Validate, opts.Translator = core.NewValidator()
		user.InitValidators(opts.Validate, opts.Translator)
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	debug := core.Conf.Debug

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Pre(frontDoorGate)
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(newMetrics(s.opts.Registry).middleware)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator)
	s.app.Debug = debug

	s.app.GET("/login", loginPage)
	s.app.GET("/health", health)
	s.app.GET("/metrics", metricsHandler(s.opts.Registry))
	for _, role := range core.AllRoles {
		s.app.GET("/"+string(role), portal)
		s.app.GET("/"+string(role)+"/*", portal)
	}

	api := s.app.Group("/api")
	registerUserAPI(api, s.opts.UserSvc, s.opts.Validate)
	registerSchoolAPI(api, s.opts.SchoolSvc, s.opts.Validate)
	registerAttendanceAPI(api, s.opts.AttendanceSvc, s.opts.Validate)
	registerGradeAPI(api, s.opts.GradeSvc, s.opts.Validate)
	registerAnalyticsAPI(api, s.opts.AnalyticsSvc)
}

// Start blocks until the server stops; http.ErrServerClosed means a graceful Stop.
func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func health(ctx echo.Context) error {
	return ok(ctx, echo.Map{"status": "ok", "build": core.Conf.Build})
}
