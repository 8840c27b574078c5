package main

import (
	"database/sql"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bochengwang975-blip/campus/core"
	"github.com/bochengwang975-blip/campus/core/course"
	"github.com/bochengwang975-blip/campus/core/user"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errNoDatabase = errors.New("migrations need the postgres database (database.inMemory is set)")
	errConflicts  = errors.New("schedule conflicts found")
)

type repositories struct {
	courses     course.Repository
	enrollments course.EnrollmentRepository
	users       user.Repository
}

type commandLine struct {
	db        *sql.DB // nil with the in-memory database
	repos     repositories
	courseSvc *course.Service
	usrSvc    *user.Service
	validate  *validator.Validate
	out       io.Writer
}

func newCommandLine(conf *core.Config, logger core.Logger, mailSvc core.EmailService, db *sql.DB, repos repositories) *commandLine {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)

	return &commandLine{
		db:        db,
		repos:     repos,
		courseSvc: course.NewService(repos.courses, repos.enrollments, repos.users, mailSvc, logger, validate, conf),
		usrSvc:    user.NewService(repos.users),
		validate:  validate,
		out:       os.Stdout,
	}
}

func (cli *commandLine) rootCmd() *cobra.Command {
	var output string

	root := &cobra.Command{
		Use:           "admin",
		Short:         "Campus timetable administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format: table|json|yaml (default: table on a terminal, json otherwise)")

	format := func() string {
		if output != "" {
			return output
		}
		if f, ok := cli.out.(*os.File); ok && isTerminalFunc(int(f.Fd())) {
			return formatTable
		}
		return formatJSON
	}

	root.AddCommand(
		cli.migrateCmd(),
		cli.seedCmd(),
		cli.checkCmd(format),
		cli.timetableCmd(format),
	)
	root.SetOut(cli.out)
	return root
}

// run executes the command line; args[0] is the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	return root.Execute()
}
