package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bochengwang975-blip/campus/core"
	"github.com/bochengwang975-blip/campus/core/course"
	"github.com/bochengwang975-blip/campus/core/user"
	"github.com/bochengwang975-blip/campus/services/email"
	"github.com/bochengwang975-blip/campus/storage/database/inmem"
	"github.com/bochengwang975-blip/campus/tests"
)

var usrRepo user.Repository

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	// set up DB & repos
	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	repos := repositories{
		courses:     inmemdb.NewCourseRepository(db),
		enrollments: inmemdb.NewEnrollmentRepository(db),
		users:       usrRepo,
	}

	conf := &core.Config{AppName: "Campus", TestMode: true, LocationHintRatio: .75}
	isTerminalFunc = func(fd int) bool { return false }

	// start CLI
	var out bytes.Buffer
	cli := newCommandLine(conf, testutil.NewLogger(), emailsvc.NewConsoleServiceMock(conf), nil, repos)
	cli.out = &out
	return cli, &out
}

func execute(cli *commandLine, out *bytes.Buffer, args ...string) (string, error) {
	out.Reset()
	err := cli.run(append([]string{"admin"}, args...))
	return out.String(), err
}

func userID(t *testing.T, uname string) string {
	t.Helper()
	usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Username: uname})
	require.NoError(t, err)
	return usr.ID
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli, out := setup(t)

	t.Run("in-memory database", func(t *testing.T) {
		_, err := execute(cli, out, "migrate", "up")
		assert.Equal(t, errNoDatabase, err)
	})

	cli.db = new(sql.DB) // never used by the mock below
	gooseRunFunc = func(ctx context.Context, db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErrStr: "requires at least 1 arg(s), only received 0"},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "rooms", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(cli, out, tt.args...)
			if tt.wantErrStr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli, out := setup(t)

	got, err := execute(cli, out, "seed")
	require.NoError(t, err)
	assert.Equal(t, "seeded 5 users, 5 courses\n", got)

	courses, err := cli.repos.courses.QueryCourses(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, courses, 5)

	var legacy []course.Course
	for _, c := range courses {
		if c.Schedule != "" {
			legacy = append(legacy, c)
		}
	}
	require.Len(t, legacy, 2)
	for _, c := range legacy {
		assert.Nil(t, c.Time)
		assert.True(t, course.Resolve(c).Placed, c.Schedule)
	}

	enrollments, err := cli.courseSvc.StudentEnrollments(context.Background(), userID(t, "zhangsan"))
	require.NoError(t, err)
	assert.Len(t, enrollments, 3)

	_, err = execute(cli, out, "seed")
	assert.Equal(t, errAlreadySeeded, err)
}

func Test_commandLine_check(t *testing.T) {
	cli, out := setup(t)
	_, err := execute(cli, out, "seed")
	require.NoError(t, err)
	li, wang, admin := userID(t, "lili"), userID(t, "wang"), userID(t, "admin")

	t.Run("legacy course taken", func(t *testing.T) {
		got, err := execute(cli, out, "check", "-t", li, "-d", "1", "-p", "3", "-l", "A402")
		assert.Equal(t, errConflicts, err)

		var report course.ConflictReport
		require.NoError(t, json.Unmarshal([]byte(got), &report))
		assert.True(t, report.HasConflict)
		require.Len(t, report.Conflicts, 2)
		assert.Equal(t, course.ConflictTeacher, report.Conflicts[0].Type)
		assert.Equal(t, course.ConflictLocation, report.Conflicts[1].Type)
		assert.Equal(t, "HIST101", report.Conflicts[0].Course.Code)
	})

	t.Run("free", func(t *testing.T) {
		got, err := execute(cli, out, "check", "--teacher", wang, "--day", "5", "--period", "5", "--location", "A402")
		require.NoError(t, err)
		assert.JSONEq(t, `{"has_conflict": false, "conflicts": []}`, got)
	})

	t.Run("editing itself", func(t *testing.T) {
		courses, err := cli.courseSvc.Query(context.Background(), &course.QueryFilter{Search: "MATH201"}, nil)
		require.NoError(t, err)
		require.Len(t, courses, 1)

		_, err = execute(cli, out, "check", "-t", wang, "-d", "2", "-p", "1", "-l", "A101", "--exclude", courses[0].ID)
		assert.NoError(t, err)
	})

	t.Run("missing teachers", func(t *testing.T) {
		_, err := execute(cli, out, "check", "-d", "1", "-p", "3", "-l", "A402")
		require.Error(t, err)
		_, ok := errors.Cause(err).(*core.ValidationError)
		assert.True(t, ok, "got %T", err)
	})

	t.Run("similar room", func(t *testing.T) {
		got, err := execute(cli, out, "check", "-t", admin, "-d", "2", "-p", "1", "-l", "A-101")
		require.NoError(t, err)

		var report course.ConflictReport
		require.NoError(t, json.Unmarshal([]byte(got), &report))
		assert.Equal(t, []string{"A-101 与已占用的 A101 相似，请确认教室"}, report.Hints)
	})

	t.Run("yaml", func(t *testing.T) {
		got, err := execute(cli, out, "check", "-t", wang, "-d", "5", "-p", "5", "-l", "A402", "-o", "yaml")
		require.NoError(t, err)
		assert.Equal(t, "has_conflict: false\nconflicts: []\n", got)
	})

	t.Run("table", func(t *testing.T) {
		got, err := execute(cli, out, "check", "-t", li, "-d", "1", "-p", "3", "-l", "A402", "-o", "table")
		assert.Equal(t, errConflicts, err)
		assert.Contains(t, got, "HIST101 中国近代史")
		assert.Contains(t, got, "周一 下午第1节 / A402")
	})

	t.Run("unknown output", func(t *testing.T) {
		_, err := execute(cli, out, "check", "-t", wang, "-o", "xml")
		require.Error(t, err)
		assert.Equal(t, `unsupported output "xml" (expected table|json|yaml)`, err.Error())
	})
}

func Test_commandLine_timetable(t *testing.T) {
	cli, out := setup(t)
	_, err := execute(cli, out, "seed")
	require.NoError(t, err)

	week := func(t *testing.T, args ...string) course.Week {
		t.Helper()
		got, err := execute(cli, out, append([]string{"timetable"}, args...)...)
		require.NoError(t, err)
		var w course.Week
		require.NoError(t, json.Unmarshal([]byte(got), &w))
		return w
	}
	codes := func(courses []course.Course) []string {
		cc := make([]string, 0, len(courses))
		for _, c := range courses {
			cc = append(cc, c.Code)
		}
		return cc
	}

	t.Run("everyone", func(t *testing.T) {
		w := week(t)
		assert.Equal(t, []string{"MATH201", "PHYS101", "CS101", "HIST101", "CHEM101"}, codes(w.Courses))
		assert.Empty(t, w.Unplaced)
		assert.Equal(t, []string{"MATH201", "PHYS101"}, codes([]course.Course{w.Grid[1][0][0].Course, w.Grid[1][0][1].Course}))
	})

	t.Run("student", func(t *testing.T) {
		w := week(t, "--user", "zhangsan")
		assert.Equal(t, []string{"MATH201", "HIST101", "CS101"}, codes(w.Courses))
		entry := w.Grid[0][2][0]
		assert.Equal(t, "HIST101", entry.Course.Code)
		assert.Equal(t, "A402", entry.Location)
		assert.Equal(t, "李老师", entry.TeacherNames)
	})

	t.Run("teacher", func(t *testing.T) {
		w := week(t, "--viewer", userID(t, "wang"), "--role", "teacher")
		assert.Equal(t, []string{"MATH201", "CS101", "CHEM101"}, codes(w.Courses))
		assert.Equal(t, "王老师, 李老师", w.Grid[3][2][0].TeacherNames)
		assert.Equal(t, "周三 晚上", w.Grid[2][4][0].SlotLabel)
	})

	t.Run("table", func(t *testing.T) {
		got, err := execute(cli, out, "timetable", "-u", "chensi", "-o", "table")
		require.NoError(t, err)
		assert.Contains(t, got, "周一")
		assert.Contains(t, got, "CHEM101 基础化学")
		assert.Contains(t, got, "B202 · 王老师")
		assert.NotContains(t, got, "MATH201")
	})

	tests := []cliTest{
		{name: "unknown role", args: []string{"timetable", "--role", "dean"}, wantErrStr: "unknown timetable role"},
		{name: "unknown user", args: []string{"timetable", "--user", "nobody"}, wantErr: user.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(cli, out, tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			} else {
				assert.Equal(t, tt.wantErrStr, err.Error())
			}
		})
	}
}
