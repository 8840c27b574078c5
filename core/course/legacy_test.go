package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		want     TimeSlot
		wantOk   bool
	}{
		{name: "empty", schedule: ""},
		{name: "no weekday", schedule: "3-4 节，A402"},
		{name: "no period", schedule: "周二 A402"},
		{name: "range", schedule: "周一 3-4 节，A402", want: TimeSlot{Day: Monday, Period: 3}, wantOk: true},
		{name: "range (no space)", schedule: "周三 5-6节 B202", want: TimeSlot{Day: Wednesday, Period: 5}, wantOk: true},
		{name: "range with 到", schedule: "周四 1到2节 C101", want: TimeSlot{Day: Thursday, Period: 1}, wantOk: true},
		{name: "single period", schedule: "周五 2 节", want: TimeSlot{Day: Friday, Period: 2}, wantOk: true},
		{name: "earliest weekday wins", schedule: "周二、周四 3节", want: TimeSlot{Day: Tuesday, Period: 3}, wantOk: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSlot(tt.schedule)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		schedule string
		want     string
	}{
		{schedule: "", want: ""},
		{schedule: "周一 3-4 节，A402", want: "A402"},
		{schedule: "周三 5-6节 B202", want: "B202"},
		{schedule: "周三 5-6节 b202", want: ""},
		{schedule: "A402 then B101", want: "A402"},
		{schedule: "线上", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLocation(tt.schedule))
		})
	}
}

func TestCourse_TimeSource(t *testing.T) {
	slot := &TimeSlot{Day: Monday, Period: Afternoon1}

	tests := []struct {
		name string
		crs  Course
		want TimeSource
	}{
		{name: "structured", crs: Course{Time: slot, Location: "A402"}, want: Structured{Slot: *slot, Location: "A402"}},
		{
			name: "structured wins over legacy", crs: Course{Time: slot, Location: "A402", Schedule: "周三 5-6节 B202"},
			want: Structured{Slot: *slot, Location: "A402"},
		},
		{
			name: "structured without room", crs: Course{Time: slot, Schedule: "周三 5-6节 B202"},
			want: Structured{Slot: *slot, Location: "B202"},
		},
		{name: "legacy", crs: Course{Schedule: "周三 5-6节 B202"}, want: Legacy{Text: "周三 5-6节 B202"}},
		{
			name: "legacy with room", crs: Course{Schedule: "周三 5-6节 B202", Location: "A402"},
			want: Legacy{Text: "周三 5-6节 B202", Location: "A402"},
		},
		{name: "unscheduled", crs: Course{Location: "A402"}, want: Unscheduled{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.crs.TimeSource())
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		crs        Course
		wantSlot   TimeSlot
		wantLoc    string
		wantTchrs  []string
		wantPlaced bool
	}{
		{
			name:     "structured",
			crs:      Course{Time: &TimeSlot{Day: 1, Period: 3}, Location: "A402", TeacherIDs: []string{"t1", "t2"}},
			wantSlot: TimeSlot{Day: 1, Period: 3}, wantLoc: "A402", wantTchrs: []string{"t1", "t2"}, wantPlaced: true,
		},
		{
			name:     "legacy",
			crs:      Course{Schedule: "周三 5-6节 B202", TeacherID: "t1"},
			wantSlot: TimeSlot{Day: 3, Period: 5}, wantLoc: "B202", wantTchrs: []string{"t1"}, wantPlaced: true,
		},
		{
			name:     "legacy with its own room",
			crs:      Course{Schedule: "周一 3-4节", Location: "A402", TeacherID: "t9"},
			wantSlot: TimeSlot{Day: 1, Period: 3}, wantLoc: "A402", wantTchrs: []string{"t9"}, wantPlaced: true,
		},
		{
			name:     "legacy room overridden",
			crs:      Course{Schedule: "周三 5-6节 B202", Location: "C301", TeacherID: "t1"},
			wantSlot: TimeSlot{Day: 3, Period: 5}, wantLoc: "C301", wantTchrs: []string{"t1"}, wantPlaced: true,
		},
		{name: "unparseable legacy", crs: Course{Schedule: "待定", TeacherID: "t1"}, wantTchrs: []string{"t1"}},
		{name: "unset structured time", crs: Course{Time: &TimeSlot{}, Location: "A402"}},
		{name: "unscheduled", crs: Course{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Resolve(tt.crs)
			assert.Equal(t, tt.wantPlaced, p.Placed)
			assert.Equal(t, tt.wantSlot, p.Slot)
			assert.Equal(t, tt.wantLoc, p.Location)
			assert.Equal(t, tt.wantTchrs, p.TeacherIDs)
		})
	}
}
