package course

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/bochengwang975-blip/campus/core"
)

type ConflictType string

const (
	ConflictTeacher  ConflictType = "teacher"
	ConflictLocation ConflictType = "location"

	teacherConflictText = "教师时间冲突：该时间段已有课程"
)

var errTeacherIDsRequired = errors.New("teacher_ids is required")

// Candidate is a placement about to be saved.
// ID is the course being edited, empty on creation.
type Candidate struct {
	ID         string    `json:"id"`
	Time       *TimeSlot `json:"time"`
	Location   string    `json:"location"`
	TeacherIDs []string  `json:"teacher_ids"`
}

type Conflict struct {
	Type    ConflictType `json:"type"`
	Message string       `json:"message"`
	Course  Course       `json:"course"`
}

type ConflictReport struct {
	HasConflict bool       `json:"has_conflict"`
	Conflicts   []Conflict `json:"conflicts"`
	// Hints are advisory notes that never block a save, eg. a probable room typo.
	Hints []string `json:"hints,omitempty"`
}

// Reasons lists the conflict messages.
func (r ConflictReport) Reasons() []string {
	reasons := make([]string, 0, len(r.Conflicts))
	for _, c := range r.Conflicts {
		reasons = append(reasons, c.Message)
	}
	return reasons
}

// CheckConflict reports every existing course booked in the candidate's slot
// that shares one of its teachers or its room. A course matching on both shows up twice.
// Courses whose slot cannot be resolved are ignored.
func CheckConflict(cand Candidate, existing []Course) (ConflictReport, error) {
	report := ConflictReport{Conflicts: []Conflict{}}
	if cand.Time == nil || !cand.Time.IsSet() {
		return report, nil
	}
	if cand.TeacherIDs == nil {
		return report, core.NewValidationError(
			errTeacherIDsRequired,
			core.FieldError{Field: "teacher_ids", Error: "this field is required"},
		)
	}

	slot := *cand.Time
	for _, c := range existing {
		if cand.ID != "" && c.ID == cand.ID {
			continue
		}
		p := Resolve(c)
		if !p.Placed || p.Slot != slot {
			continue
		}

		if p.sharesTeacher(cand.TeacherIDs) {
			report.Conflicts = append(report.Conflicts, Conflict{
				Type:    ConflictTeacher,
				Message: teacherConflictText,
				Course:  c,
			})
		}
		if cand.Location != "" && p.Location == cand.Location {
			report.Conflicts = append(report.Conflicts, Conflict{
				Type:    ConflictLocation,
				Message: fmt.Sprintf("地点冲突：%s 在 %s 已被占用", cand.Location, slot),
				Course:  c,
			})
		}
	}

	report.HasConflict = len(report.Conflicts) > 0
	return report, nil
}

// SimilarLocations returns the rooms booked in the candidate's slot whose label is close to,
// but not the same as, the candidate's (eg. "A402" and "a402").
// ratio is the minimum similarity in [0, 1]; results are sorted.
func SimilarLocations(cand Candidate, existing []Course, ratio float64) []string {
	if cand.Time == nil || !cand.Time.IsSet() || cand.Location == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var similar []string
	for _, c := range existing {
		if cand.ID != "" && c.ID == cand.ID {
			continue
		}
		p := Resolve(c)
		if !p.Placed || p.Slot != *cand.Time || p.Location == "" || p.Location == cand.Location {
			continue
		}
		if _, ok := seen[p.Location]; ok {
			continue
		}
		if locationSimilarity(cand.Location, p.Location) >= ratio {
			seen[p.Location] = struct{}{}
			similar = append(similar, p.Location)
		}
	}
	sort.Strings(similar)
	return similar
}

func locationSimilarity(a, b string) float64 {
	a, b = strings.ToUpper(strings.Join(strings.Fields(a), "")), strings.ToUpper(strings.Join(strings.Fields(b), ""))
	if a == b {
		return 1
	}
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
