package main

import (
	"log"
	"os"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/school"
	"github.com/trezcool/eduos/core/user"
	emailsvc "github.com/trezcool/eduos/services/email"
	logsvc "github.com/trezcool/eduos/services/logger"
	"github.com/trezcool/eduos/storage/database"
	sqlxrepos "github.com/trezcool/eduos/storage/database/sqlx"
)

func main() {
	conf := core.Conf
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("creating database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:         db.DB,
		usrSvc:     user.NewService(usrRepo, emailsvc.NewConsoleService(logger)),
		schoolSvc:  school.NewService(sqlxrepos.NewSchoolRepository(db), usrRepo),
		validate:   validate,
		translator: translator,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(err.Error(), err)
		}
		os.Exit(1)
	}
}
