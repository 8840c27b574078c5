package course

import (
	"strconv"
	"strings"
	"time"

	"github.com/bochengwang975-blip/campus/core"
)

const (
	defaultCredits    = 2
	defaultCapacity   = 50
	defaultDepartment = "未分配院系"
)

type Course struct {
	ID         string   `json:"id"`
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	Credits    int      `json:"credits"`
	Department string   `json:"department"`
	Capacity   int      `json:"capacity"`
	Summary    string   `json:"summary"`
	Tags       []string `json:"tags"`
	TeacherIDs []string `json:"teacher_ids,omitempty"`
	// TeacherID is the single teacher of courses created before co-teaching existed.
	TeacherID string    `json:"teacher_id,omitempty"`
	Time      *TimeSlot `json:"time"`
	Location  string    `json:"location"`
	// Schedule is the free-text time & room of courses created before structured time slots.
	Schedule  string    `json:"schedule,omitempty"`
	Override  *Override `json:"override,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Teachers returns the IDs of the course teachers, falling back to the legacy single teacher.
func (c Course) Teachers() []string {
	if len(c.TeacherIDs) > 0 {
		return c.TeacherIDs
	}
	if c.TeacherID != "" {
		return []string{c.TeacherID}
	}
	return nil
}

// HasTeacher reports whether id is one of the course teachers.
func (c Course) HasTeacher(id string) bool {
	for _, tid := range c.Teachers() {
		if tid == id {
			return true
		}
	}
	return false
}

// Override records a save that went through despite reported conflicts.
type Override struct {
	By      string    `json:"by"`
	At      time.Time `json:"at"` // UTC
	Reasons []string  `json:"reasons"`
}

type Enrollment struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	StudentID string    `json:"student_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
// Time and Location are required for new courses; only legacy imports lack them.
type NewCourse struct {
	Code       string    `json:"code" validate:"omitempty,max=32,coursecode"`
	Name       string    `json:"name" validate:"notblank"`
	Credits    int       `json:"credits" validate:"min=0,max=20"`
	Department string    `json:"department"`
	Capacity   int       `json:"capacity" validate:"min=0"`
	Summary    string    `json:"summary"`
	Tags       []string  `json:"tags"`
	TeacherIDs []string  `json:"teacher_ids" validate:"required,min=1,dive,notblank"`
	Time       *TimeSlot `json:"time" validate:"required"`
	Location   string    `json:"location" validate:"notblank"`
	// Force commits the course even when conflicts are reported.
	Force bool `json:"force"`
	// ActorID identifies who asked for the save; it is recorded on forced overrides.
	ActorID string `json:"-"`
}

func (nc *NewCourse) Clean() {
	nc.Code = core.CleanString(nc.Code)
	nc.Name = core.CleanString(nc.Name)
	nc.Department = core.CleanString(nc.Department)
	nc.Summary = core.CleanString(nc.Summary)
	nc.Location = core.CleanString(nc.Location)
	nc.Tags = core.CleanStrings(nc.Tags)
	nc.TeacherIDs = dedupe(core.CleanStrings(nc.TeacherIDs))

	if nc.Credits == 0 {
		nc.Credits = defaultCredits
	}
	if nc.Capacity == 0 {
		nc.Capacity = defaultCapacity
	}
	if nc.Department == "" {
		nc.Department = defaultDepartment
	}
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Zero values keep the current ones.
type UpdateCourse struct {
	Code       string    `json:"code" validate:"omitempty,max=32,coursecode"`
	Name       string    `json:"name"`
	Credits    *int      `json:"credits" validate:"omitempty,min=0,max=20"`
	Department string    `json:"department"`
	Capacity   *int      `json:"capacity" validate:"omitempty,min=0"`
	Summary    *string   `json:"summary"`
	Tags       []string  `json:"tags"`
	TeacherIDs []string  `json:"teacher_ids" validate:"omitempty,min=1,dive,notblank"`
	Time       *TimeSlot `json:"time"`
	Location   string    `json:"location"`
	Force      bool      `json:"force"`
	ActorID    string    `json:"-"`
}

func (uc *UpdateCourse) Clean() {
	uc.Code = core.CleanString(uc.Code)
	uc.Name = core.CleanString(uc.Name)
	uc.Department = core.CleanString(uc.Department)
	uc.Location = core.CleanString(uc.Location)
	uc.Tags = core.CleanStrings(uc.Tags)
	uc.TeacherIDs = dedupe(core.CleanStrings(uc.TeacherIDs))
	if uc.Summary != nil {
		s := core.CleanString(*uc.Summary)
		uc.Summary = &s
	}
}

// apply returns a copy of c with the set fields of uc.
func (uc UpdateCourse) apply(c Course) Course {
	if uc.Code != "" {
		c.Code = uc.Code
	}
	if uc.Name != "" {
		c.Name = uc.Name
	}
	if uc.Credits != nil {
		c.Credits = *uc.Credits
	}
	if uc.Department != "" {
		c.Department = uc.Department
	}
	if uc.Capacity != nil {
		c.Capacity = *uc.Capacity
	}
	if uc.Summary != nil {
		c.Summary = *uc.Summary
	}
	if uc.Tags != nil {
		c.Tags = uc.Tags
	}
	if uc.TeacherIDs != nil {
		c.TeacherIDs = uc.TeacherIDs
		c.TeacherID = ""
	}
	if uc.Time != nil {
		slot := *uc.Time
		c.Time = &slot
	}
	if uc.Location != "" {
		c.Location = uc.Location
	}
	return c
}

type QueryFilter struct {
	// Search does a case-insensitive match on the name, code, department and summary.
	Search    string `query:"search"`
	TeacherID string `query:"teacher"`
	Day       int    `query:"day"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf == nil || (qf.Search == "" && qf.TeacherID == "" && qf.Day == 0)
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.TeacherID = core.CleanString(qf.TeacherID)
}

// Match reports whether c passes every set field of the filter.
func (qf *QueryFilter) Match(c Course) bool {
	if qf.IsEmpty() {
		return true
	}
	if qf.Search != "" {
		haystack := strings.ToLower(strings.Join([]string{c.Name, c.Code, c.Department, c.Summary}, "\n"))
		if !strings.Contains(haystack, strings.ToLower(qf.Search)) {
			return false
		}
	}
	if qf.TeacherID != "" && !c.HasTeacher(qf.TeacherID) {
		return false
	}
	if qf.Day != 0 {
		p := Resolve(c)
		if !p.Placed || p.Slot.Day != qf.Day {
			return false
		}
	}
	return true
}

// OrderingFields are the fields courses may be sorted by.
var OrderingFields = map[string]struct{}{
	"code": {}, "name": {}, "department": {}, "credits": {}, "capacity": {}, "created_at": {}, "updated_at": {},
}

func checkOrdering(ordering []core.DBOrdering) error {
	for _, ord := range ordering {
		if _, ok := OrderingFields[ord.Field]; !ok {
			return core.NewValidationError(
				errUnknownOrdering,
				core.FieldError{Field: "ordering", Error: "cannot order by " + strconv.Quote(ord.Field)},
			)
		}
	}
	return nil
}

type EnrollmentFilter struct {
	CourseID  string
	StudentID string
}

func dedupe(ids []string) []string {
	if ids == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
