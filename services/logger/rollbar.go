package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/bochengwang975-blip/campus/core"
	"github.com/bochengwang975-blip/campus/core/course"
	"github.com/bochengwang975-blip/campus/core/user"
)

type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// entry is a log call with its args sorted out.
type entry struct {
	msg    string
	actor  *user.User
	custom map[string]interface{}
	rest   []interface{}
}

// newEntry accepts: error, map[string]interface{}, user.User, course.Course.
// Only the first user is kept. Courses and maps end up in custom, later keys win.
func newEntry(msg string, args []interface{}) entry {
	e := entry{msg: msg, custom: make(map[string]interface{})}
	for _, arg := range args {
		switch a := arg.(type) {
		case user.User:
			if e.actor == nil {
				usr := a
				e.actor = &usr
			}
		case course.Course:
			e.custom["course_id"] = a.ID
			e.custom["course_code"] = a.Code
			if a.Override != nil {
				e.custom["override_by"] = a.Override.By
				e.custom["override_reasons"] = a.Override.Reasons
			}
		case map[string]interface{}:
			for k, v := range a {
				e.custom[k] = v
			}
		default:
			e.rest = append(e.rest, arg)
		}
	}
	return e
}

// rollbarArgs sets the acting person, rollbar only takes one custom map per item.
func (e entry) rollbarArgs() []interface{} {
	if e.actor != nil {
		rollbar.SetPerson(e.actor.ID, e.actor.Username, e.actor.Email)
	} else {
		rollbar.ClearPerson()
	}

	args := make([]interface{}, 0, len(e.rest)+2)
	args = append(args, e.msg)
	args = append(args, e.rest...)
	if len(e.custom) > 0 {
		args = append(args, e.custom)
	}
	return args
}

// lines renders the entry for the std logger, custom data as sorted key=value pairs.
func (e entry) lines() []string {
	lines := []string{e.msg}
	for _, arg := range e.rest {
		lines = append(lines, fmt.Sprintf("%+v", arg))
	}
	if len(e.custom) > 0 {
		keys := make([]string, 0, len(e.custom))
		for k := range e.custom {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, e.custom[k]))
		}
		lines = append(lines, strings.Join(pairs, " "))
	}
	if e.actor != nil {
		lines = append(lines, "user="+e.actor.Username)
	}
	return lines
}

func (l RollbarLogger) log(level string, msg string, args []interface{}) {
	e := newEntry(msg, args)
	rollbar.Log(level, e.rollbarArgs()...)
	for _, line := range e.lines() {
		l.std.Println(line)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.log(rollbar.DEBUG, msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.log(rollbar.INFO, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.log(rollbar.WARN, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.log(rollbar.ERR, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
