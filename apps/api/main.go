package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/trezcool/eduos/apps/api/echo"
	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/analytics"
	"github.com/trezcool/eduos/core/attendance"
	"github.com/trezcool/eduos/core/grade"
	"github.com/trezcool/eduos/core/school"
	"github.com/trezcool/eduos/core/user"
	emailsvc "github.com/trezcool/eduos/services/email"
	logsvc "github.com/trezcool/eduos/services/logger"
	"github.com/trezcool/eduos/storage/database"
	sqlxrepos "github.com/trezcool/eduos/storage/database/sqlx"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf := core.Conf

	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()
	if err = database.Migrate(db); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	schoolRepo := sqlxrepos.NewSchoolRepository(db)
	attendanceRepo := sqlxrepos.NewAttendanceRepository(db)
	gradeRepo := sqlxrepos.NewGradeRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc)
	schoolSvc := school.NewService(schoolRepo, usrRepo)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(&echoapi.Options{
		Address:       conf.Server.Address(),
		Logger:        logger,
		UserSvc:       usrSvc,
		SchoolSvc:     schoolSvc,
		AttendanceSvc: attendance.NewService(attendanceRepo, schoolSvc),
		GradeSvc:      grade.NewService(gradeRepo, usrRepo, schoolSvc),
		AnalyticsSvc: analytics.NewService(analytics.Repositories{
			Users:      usrRepo,
			School:     schoolRepo,
			Attendance: attendanceRepo,
			Grades:     gradeRepo,
		}),
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}
