package course

import "strings"

type Role string

const (
	RoleNone    Role = ""
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"

	unknownTeacher = "未知"
)

func (r Role) Valid() bool {
	switch r {
	case RoleNone, RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// TeacherDirectory resolves teacher IDs to display names.
type TeacherDirectory interface {
	TeacherName(id string) (string, bool)
}

type Entry struct {
	Course       Course `json:"course"`
	Location     string `json:"location"`
	TeacherNames string `json:"teacher_names"`
	SlotLabel    string `json:"slot_label"`
}

// Cell holds the courses of one period; nil when free.
// More than one entry means a conflict was overridden.
type Cell []Entry

type Week struct {
	// Grid is indexed [day-1][period-1].
	Grid [DaysPerWeek][PeriodsPerDay]Cell `json:"grid"`
	// Courses are all the courses relevant to the viewer, placed or not.
	Courses []Course `json:"courses"`
	// Unplaced are the relevant courses missing from the grid because their slot is unknown.
	Unplaced []Course `json:"unplaced"`
}

// ProjectWeek builds the weekly timetable seen by a viewer:
//   - student: the courses they are enrolled in
//   - teacher: the courses they teach
//   - admin or no role: every course
//
// Within a cell, courses keep the order of Week.Courses.
func ProjectWeek(viewerID string, role Role, courses []Course, enrollments []Enrollment, dir TeacherDirectory) Week {
	week := Week{
		Courses:  relevantCourses(viewerID, role, courses, enrollments),
		Unplaced: []Course{},
	}

	for _, c := range week.Courses {
		p := Resolve(c)
		if !p.Placed {
			week.Unplaced = append(week.Unplaced, c)
			continue
		}
		dayIdx, periodIdx := p.Slot.Day-1, p.Slot.Period-1
		if dayIdx < 0 || dayIdx >= DaysPerWeek || periodIdx < 0 || periodIdx >= PeriodsPerDay {
			week.Unplaced = append(week.Unplaced, c)
			continue
		}

		if week.Grid[dayIdx][periodIdx] == nil {
			week.Grid[dayIdx][periodIdx] = Cell{}
		}
		week.Grid[dayIdx][periodIdx] = append(week.Grid[dayIdx][periodIdx], Entry{
			Course:       c,
			Location:     p.Location,
			TeacherNames: teacherNames(p.TeacherIDs, dir),
			SlotLabel:    p.Slot.String(),
		})
	}
	return week
}

func relevantCourses(viewerID string, role Role, courses []Course, enrollments []Enrollment) []Course {
	relevant := make([]Course, 0)

	switch role {
	case RoleStudent:
		if viewerID == "" {
			return relevant
		}
		byID := make(map[string]Course, len(courses))
		for _, c := range courses {
			byID[c.ID] = c
		}
		seen := make(map[string]struct{})
		for _, e := range enrollments {
			if e.StudentID != viewerID {
				continue
			}
			c, ok := byID[e.CourseID]
			if !ok {
				continue // course deleted since
			}
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			relevant = append(relevant, c)
		}
	case RoleTeacher:
		if viewerID == "" {
			return relevant
		}
		for _, c := range courses {
			if c.HasTeacher(viewerID) {
				relevant = append(relevant, c)
			}
		}
	case RoleAdmin, RoleNone:
		relevant = append(relevant, courses...)
	}
	return relevant
}

func teacherNames(ids []string, dir TeacherDirectory) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name, ok := "", false
		if dir != nil {
			name, ok = dir.TeacherName(id)
		}
		if !ok {
			name = unknownTeacher
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
