package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/bochengwang975-blip/campus/core"
	"github.com/bochengwang975-blip/campus/core/course"
)

const enrollmentColumns = `id, course_id, student_id, created_at`

type enrollmentRow struct {
	ID        string    `db:"id"`
	CourseID  string    `db:"course_id"`
	StudentID string    `db:"student_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (row enrollmentRow) toEnrollment() course.Enrollment {
	return course.Enrollment{
		ID:        row.ID,
		CourseID:  row.CourseID,
		StudentID: row.StudentID,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

type enrollmentRepository struct {
	db core.DBExecutor
}

func NewEnrollmentRepository(db core.DBExecutor) course.EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func enrollmentWhere(filter course.EnrollmentFilter) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		where = append(where, fmt.Sprintf("course_id = $%d", len(args)))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	if enr.ID == "" {
		enr.ID = uuid.NewString()
	}
	q := `INSERT INTO enrollments (` + enrollmentColumns + `) VALUES ($1, $2, $3, $4)
		ON CONFLICT (course_id, student_id) DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, q, enr.ID, enr.CourseID, enr.StudentID, enr.CreatedAt); err != nil {
		return course.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}

	var row enrollmentRow
	q = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE course_id = $1 AND student_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, enr.CourseID, enr.StudentID); err != nil {
		return course.Enrollment{}, errors.Wrap(err, "selecting enrollment")
	}
	return row.toEnrollment(), nil
}

func (repo *enrollmentRepository) QueryEnrollments(ctx context.Context, filter course.EnrollmentFilter) ([]course.Enrollment, error) {
	where, args := enrollmentWhere(filter)
	q := `SELECT ` + enrollmentColumns + ` FROM enrollments` + where + ` ORDER BY created_at ASC, id ASC`

	var rows []enrollmentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting enrollments")
	}
	enrollments := make([]course.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, row.toEnrollment())
	}
	return enrollments, nil
}

func (repo *enrollmentRepository) DeleteEnrollments(ctx context.Context, filter course.EnrollmentFilter) (int, error) {
	where, args := enrollmentWhere(filter)
	res, err := repo.db.ExecContext(ctx, `DELETE FROM enrollments`+where, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting enrollments")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting enrollments")
	}
	return int(n), nil
}
