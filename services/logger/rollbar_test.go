package logsvc

import (
	"bytes"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bochengwang975-blip/campus/core"
	"github.com/bochengwang975-blip/campus/core/course"
	"github.com/bochengwang975-blip/campus/core/user"
)

func Test_newEntry(t *testing.T) {
	admin := user.User{ID: "u1", Username: "admin"}
	wang := user.User{ID: "u2", Username: "wang"}
	forced := course.Course{
		ID:       "c1",
		Code:     "PHYS101",
		Override: &course.Override{By: "u1", At: time.Now(), Reasons: []string{"教师冲突"}},
	}
	err := fmt.Errorf("boom")

	tests := []struct {
		name       string
		args       []interface{}
		wantActor  *user.User
		wantCustom map[string]interface{}
		wantRest   []interface{}
		wantLines  []string
	}{
		{
			name:       "message only",
			wantCustom: map[string]interface{}{},
			wantLines:  []string{"msg"},
		},
		{
			name:       "first user is the actor",
			args:       []interface{}{admin, err, wang},
			wantActor:  &admin,
			wantCustom: map[string]interface{}{},
			wantRest:   []interface{}{err},
			wantLines:  []string{"msg", "boom", "user=admin"},
		},
		{
			name: "course becomes custom data",
			args: []interface{}{forced},
			wantCustom: map[string]interface{}{
				"course_id": "c1", "course_code": "PHYS101", "override_by": "u1", "override_reasons": []string{"教师冲突"},
			},
			wantLines: []string{"msg", "course_code=PHYS101 course_id=c1 override_by=u1 override_reasons=[教师冲突]"},
		},
		{
			name:       "maps are merged, later keys win",
			args:       []interface{}{course.Course{ID: "c2", Code: "MATH101"}, map[string]interface{}{"course_code": "X", "n": 2}},
			wantCustom: map[string]interface{}{"course_id": "c2", "course_code": "X", "n": 2},
			wantLines:  []string{"msg", "course_code=X course_id=c2 n=2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEntry("msg", tt.args)
			assert.Equal(t, tt.wantActor, e.actor)
			assert.Equal(t, tt.wantCustom, e.custom)
			assert.Equal(t, tt.wantRest, e.rest)
			assert.Equal(t, tt.wantLines, e.lines())
		})
	}
}

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "test"})
	logger.Enable(false)

	logger.Warn("course PHYS101 saved despite 1 conflict(s)", course.Course{ID: "c1", Code: "PHYS101"})
	require.Equal(t, "course PHYS101 saved despite 1 conflict(s)\ncourse_code=PHYS101 course_id=c1\n", buf.String())
}
