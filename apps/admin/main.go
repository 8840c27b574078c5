package main

import (
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/bochengwang975-blip/campus/core"
	"github.com/bochengwang975-blip/campus/services/email"
	"github.com/bochengwang975-blip/campus/services/logger"
	"github.com/bochengwang975-blip/campus/storage/database"
	"github.com/bochengwang975-blip/campus/storage/database/inmem"
	"github.com/bochengwang975-blip/campus/storage/database/sqlx"
)

var stdLogger = log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

func main() {
	if err := start(os.Args); err != nil {
		stdLogger.Printf("error: %s", err)
		os.Exit(1)
	}
}

func start(args []string) error {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	mailSvc := emailsvc.NewConsoleService(conf, logger)

	if conf.Database.InMemory {
		logger.Warn("using the in-memory database: nothing will outlive this command")
		db := inmemdb.Open()
		cli := newCommandLine(conf, logger, mailSvc, nil, repositories{
			courses:     inmemdb.NewCourseRepository(db),
			enrollments: inmemdb.NewEnrollmentRepository(db),
			users:       inmemdb.NewUserRepository(db),
		})
		return cli.run(args)
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return errors.Wrap(err, "setting up database")
	}
	db, err := database.Open(conf)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	cli := newCommandLine(conf, logger, mailSvc, db.DB, repositories{
		courses:     sqlxrepos.NewCourseRepository(db),
		enrollments: sqlxrepos.NewEnrollmentRepository(db),
		users:       sqlxrepos.NewUserRepository(db),
	})
	return cli.run(args)
}
