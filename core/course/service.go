package course

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	texttmpl "text/template"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/bochengwang975-blip/campus/core"
	"github.com/bochengwang975-blip/campus/core/user"
)

var (
	// errors
	ErrNotFound           = errors.New("course not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	errUnknownRole        = errors.New("unknown timetable role")
	errUnknownOrdering    = errors.New("unknown ordering field")

	overrideTmpl = texttmpl.Must(texttmpl.New("override").Parse(
		`课程 {{.Course.Name}}（{{.Course.Code}}）已在 {{.Slot}} @ {{.Location}} 强制排课，与以下课程冲突：
{{range .Conflicts}}- {{.Course.Name}}（{{.Course.Code}}）：{{.Message}}
{{end}}`))
)

// ConflictError is returned when a save is refused because of scheduling conflicts.
// Saving again with Force set commits anyway.
type ConflictError struct {
	Report ConflictReport
}

func (e *ConflictError) Error() string {
	return "schedule conflict: " + strings.Join(e.Report.Reasons(), "; ")
}

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		// QueryCourses returns courses in creation order unless ordering is given.
		// Implementations must apply QueryFilter.Search and QueryFilter.TeacherID; Day may be left to the caller.
		QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids []string) (int, error)
	}

	EnrollmentRepository interface {
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		// QueryEnrollments returns enrollments in creation order.
		QueryEnrollments(ctx context.Context, filter EnrollmentFilter) ([]Enrollment, error)
		DeleteEnrollments(ctx context.Context, filter EnrollmentFilter) (int, error)
	}

	Service struct {
		repo       Repository
		enrollRepo EnrollmentRepository
		users      user.Repository
		mailSvc    core.EmailService
		logger     core.Logger
		validate   *validator.Validate
		hintRatio  float64

		// writeMu serializes check-then-commit sequences.
		writeMu sync.Mutex
	}
)

func NewService(
	repo Repository,
	enrollRepo EnrollmentRepository,
	users user.Repository,
	mailSvc core.EmailService,
	logger core.Logger,
	validate *validator.Validate,
	conf *core.Config,
) *Service {
	return &Service{
		repo:       repo,
		enrollRepo: enrollRepo,
		users:      users,
		mailSvc:    mailSvc,
		logger:     logger,
		validate:   validate,
		hintRatio:  conf.LocationHintRatio,
	}
}

// CheckConflict checks a candidate against the live course collection.
func (svc *Service) CheckConflict(ctx context.Context, cand Candidate) (ConflictReport, error) {
	cand.Location = core.CleanString(cand.Location)
	existing, err := svc.repo.QueryCourses(ctx, nil, nil)
	if err != nil {
		return ConflictReport{}, errors.Wrap(err, "querying courses")
	}
	return svc.check(cand, existing)
}

func (svc *Service) check(cand Candidate, existing []Course) (ConflictReport, error) {
	report, err := CheckConflict(cand, existing)
	if err != nil {
		return report, err
	}
	if svc.hintRatio > 0 {
		for _, loc := range SimilarLocations(cand, existing, svc.hintRatio) {
			report.Hints = append(report.Hints, fmt.Sprintf("%s 与已占用的 %s 相似，请确认教室", cand.Location, loc))
		}
	}
	return report, nil
}

// Create saves a new course unless it conflicts with an existing one and nc.Force is not set.
// The conflict report is returned in both cases.
func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, ConflictReport, error) {
	nc.Clean()
	if err := svc.validate.Struct(nc); err != nil {
		return Course{}, ConflictReport{}, err
	}

	svc.writeMu.Lock()
	defer svc.writeMu.Unlock()

	existing, err := svc.repo.QueryCourses(ctx, nil, nil)
	if err != nil {
		return Course{}, ConflictReport{}, errors.Wrap(err, "querying courses")
	}
	report, err := svc.check(Candidate{Time: nc.Time, Location: nc.Location, TeacherIDs: nc.TeacherIDs}, existing)
	if err != nil {
		return Course{}, report, err
	}
	if report.HasConflict && !nc.Force {
		return Course{}, report, &ConflictError{Report: report}
	}

	now := time.Now().UTC()
	slot := *nc.Time
	crs := Course{
		Code:       nc.Code,
		Name:       nc.Name,
		Credits:    nc.Credits,
		Department: nc.Department,
		Capacity:   nc.Capacity,
		Summary:    nc.Summary,
		Tags:       nc.Tags,
		TeacherIDs: nc.TeacherIDs,
		Time:       &slot,
		Location:   nc.Location,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if crs.Code == "" {
		crs.Code = nextCode(existing)
	}
	if crs.Tags == nil {
		crs.Tags = []string{}
	}
	if report.HasConflict {
		crs.Override = &Override{By: nc.ActorID, At: now, Reasons: report.Reasons()}
	}

	crs, err = svc.repo.CreateCourse(ctx, crs)
	if err != nil {
		return Course{}, report, errors.Wrap(err, "creating course")
	}
	if report.HasConflict {
		svc.overridden(ctx, crs, report)
	}
	return crs, report, nil
}

// Update modifies a course. Changes to its time, room or teachers are checked for conflicts
// against every other course and refused without uc.Force.
func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, ConflictReport, error) {
	uc.Clean()
	if err := svc.validate.Struct(uc); err != nil {
		return Course{}, ConflictReport{}, err
	}

	svc.writeMu.Lock()
	defer svc.writeMu.Unlock()

	orig, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, ConflictReport{}, err
	}
	crs := uc.apply(orig)
	crs.UpdatedAt = time.Now().UTC()

	existing, err := svc.repo.QueryCourses(ctx, nil, nil)
	if err != nil {
		return Course{}, ConflictReport{}, errors.Wrap(err, "querying courses")
	}
	report, err := svc.check(candidateOf(crs), existing)
	if err != nil {
		return Course{}, report, err
	}

	var forced bool
	if replaced := uc.Time != nil || uc.Location != "" || uc.TeacherIDs != nil; replaced {
		if report.HasConflict && !uc.Force {
			return Course{}, report, &ConflictError{Report: report}
		}
		crs.Override = nil
		if report.HasConflict {
			crs.Override = &Override{By: uc.ActorID, At: crs.UpdatedAt, Reasons: report.Reasons()}
			forced = true
		}
	}

	crs, err = svc.repo.UpdateCourse(ctx, crs)
	if err != nil {
		return Course{}, report, errors.Wrap(err, "updating course")
	}
	if forced {
		svc.overridden(ctx, crs, report)
	}
	return crs, report, nil
}

func candidateOf(crs Course) Candidate {
	p := Resolve(crs)
	cand := Candidate{ID: crs.ID, Location: p.Location, TeacherIDs: p.TeacherIDs}
	if cand.TeacherIDs == nil {
		cand.TeacherIDs = []string{}
	}
	if p.Placed {
		slot := p.Slot
		cand.Time = &slot
	}
	return cand
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error) {
	if err := checkOrdering(ordering); err != nil {
		return nil, err
	}
	if filter != nil {
		filter.Clean()
	}
	courses, err := svc.repo.QueryCourses(ctx, filter, ordering)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	if filter == nil || filter.Day == 0 {
		return courses, nil
	}
	matched := make([]Course, 0, len(courses))
	for _, c := range courses {
		if filter.Match(c) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

// Delete removes courses along with their enrollments.
func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	svc.writeMu.Lock()
	defer svc.writeMu.Unlock()

	for _, id := range ids {
		if _, err := svc.enrollRepo.DeleteEnrollments(ctx, EnrollmentFilter{CourseID: id}); err != nil {
			return errors.Wrap(err, "deleting enrollments")
		}
	}
	if _, err := svc.repo.DeleteCoursesByID(ctx, ids); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}

// Enroll registers a student to a course. Enrolling twice returns the first enrollment.
func (svc *Service) Enroll(ctx context.Context, courseID, studentID string) (Enrollment, error) {
	studentID = core.CleanString(studentID)
	if studentID == "" {
		return Enrollment{}, core.NewValidationError(
			errors.New("student_id is required"),
			core.FieldError{Field: "student_id", Error: "this field is required"},
		)
	}
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return Enrollment{}, err
	}

	filter := EnrollmentFilter{CourseID: courseID, StudentID: studentID}
	enrollments, err := svc.enrollRepo.QueryEnrollments(ctx, filter)
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "querying enrollments")
	}
	if len(enrollments) > 0 {
		return enrollments[0], nil
	}

	enr, err := svc.enrollRepo.CreateEnrollment(ctx, Enrollment{
		CourseID:  courseID,
		StudentID: studentID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return enr, nil
}

func (svc *Service) Drop(ctx context.Context, courseID, studentID string) error {
	if courseID == "" || studentID == "" {
		return ErrEnrollmentNotFound
	}
	n, err := svc.enrollRepo.DeleteEnrollments(ctx, EnrollmentFilter{CourseID: courseID, StudentID: studentID})
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	if n == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

func (svc *Service) StudentEnrollments(ctx context.Context, studentID string) ([]Enrollment, error) {
	return svc.enrollRepo.QueryEnrollments(ctx, EnrollmentFilter{StudentID: studentID})
}

func (svc *Service) CourseEnrollments(ctx context.Context, courseID string) ([]Enrollment, error) {
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return svc.enrollRepo.QueryEnrollments(ctx, EnrollmentFilter{CourseID: courseID})
}

// Timetable projects the live collection into the weekly grid of a viewer.
func (svc *Service) Timetable(ctx context.Context, viewerID string, role Role) (Week, error) {
	if !role.Valid() {
		return Week{}, core.NewValidationError(errUnknownRole, core.FieldError{Field: "role", Error: errUnknownRole.Error()})
	}

	courses, err := svc.repo.QueryCourses(ctx, nil, nil)
	if err != nil {
		return Week{}, errors.Wrap(err, "querying courses")
	}
	var enrollments []Enrollment
	if role == RoleStudent && viewerID != "" {
		if enrollments, err = svc.enrollRepo.QueryEnrollments(ctx, EnrollmentFilter{StudentID: viewerID}); err != nil {
			return Week{}, errors.Wrap(err, "querying enrollments")
		}
	}
	users, err := svc.users.QueryUsers(ctx, nil)
	if err != nil {
		return Week{}, errors.Wrap(err, "querying users")
	}

	week := ProjectWeek(viewerID, role, courses, enrollments, user.NewDirectory(users))
	if len(week.Unplaced) > 0 {
		codes := make([]string, 0, len(week.Unplaced))
		for _, c := range week.Unplaced {
			codes = append(codes, c.Code)
		}
		svc.logger.Debug(fmt.Sprintf("timetable: %d course(s) without a resolvable slot: %s", len(codes), strings.Join(codes, ", ")))
	}
	return week, nil
}

// overridden logs a forced save and notifies the teachers involved.
func (svc *Service) overridden(ctx context.Context, crs Course, report ConflictReport) {
	svc.logger.Warn(fmt.Sprintf("course %s saved despite %d conflict(s)", crs.Code, len(report.Conflicts)), crs)

	teacherIDs := make(map[string]struct{})
	for _, id := range crs.Teachers() {
		teacherIDs[id] = struct{}{}
	}
	for _, c := range report.Conflicts {
		for _, id := range c.Course.Teachers() {
			teacherIDs[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(teacherIDs))
	for id := range teacherIDs {
		ids = append(ids, id)
	}

	users, err := svc.users.QueryUsers(ctx, &user.QueryFilter{IDs: ids})
	if err != nil {
		svc.logger.Error("querying override recipients", errors.Wrap(err, "querying users"))
		return
	}
	to := make([]mail.Address, 0, len(users))
	for _, usr := range users {
		if usr.Email != "" {
			to = append(to, mail.Address{Name: usr.Name, Address: usr.Email})
		}
	}
	if len(to) == 0 {
		return
	}

	p := Resolve(crs)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:       to,
		Subject:  fmt.Sprintf("排课冲突提醒：%s", crs.Name),
		Template: overrideTmpl,
		TemplateData: map[string]interface{}{
			"Course":    crs,
			"Slot":      p.Slot.String(),
			"Location":  FormatLocation(p.Location),
			"Conflicts": report.Conflicts,
		},
	})
}

func nextCode(existing []Course) string {
	taken := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		taken[c.Code] = struct{}{}
	}
	for n := len(existing) + 1; ; n++ {
		code := fmt.Sprintf("NEW-%03d", n)
		if _, ok := taken[code]; !ok {
			return code
		}
	}
}
