package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/bochengwang975-blip/campus/core"
	"github.com/bochengwang975-blip/campus/core/course"
)

const courseColumns = `id, code, name, credits, department, capacity, summary, tags, teacher_ids, teacher_id,
	time_day, time_period, location, schedule, override_by, override_at, override_reasons, created_at, updated_at`

var (
	errUnknownOrdering = errors.New("unknown ordering field")

	// likeEscaper makes user input match literally in a LIKE pattern (default escape char).
	likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

type courseRow struct {
	ID              string         `db:"id"`
	Code            string         `db:"code"`
	Name            string         `db:"name"`
	Credits         int            `db:"credits"`
	Department      string         `db:"department"`
	Capacity        int            `db:"capacity"`
	Summary         string         `db:"summary"`
	Tags            pq.StringArray `db:"tags"`
	TeacherIDs      pq.StringArray `db:"teacher_ids"`
	TeacherID       string         `db:"teacher_id"`
	TimeDay         sql.NullInt64  `db:"time_day"`
	TimePeriod      sql.NullInt64  `db:"time_period"`
	Location        string         `db:"location"`
	Schedule        string         `db:"schedule"`
	OverrideBy      sql.NullString `db:"override_by"`
	OverrideAt      sql.NullTime   `db:"override_at"`
	OverrideReasons pq.StringArray `db:"override_reasons"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func toCourseRow(c course.Course) courseRow {
	row := courseRow{
		ID:         c.ID,
		Code:       c.Code,
		Name:       c.Name,
		Credits:    c.Credits,
		Department: c.Department,
		Capacity:   c.Capacity,
		Summary:    c.Summary,
		Tags:       pq.StringArray(c.Tags),
		TeacherIDs: pq.StringArray(c.TeacherIDs),
		TeacherID:  c.TeacherID,
		Location:   c.Location,
		Schedule:   c.Schedule,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if row.Tags == nil {
		row.Tags = pq.StringArray{}
	}
	if c.Time != nil {
		row.TimeDay = sql.NullInt64{Int64: int64(c.Time.Day), Valid: true}
		row.TimePeriod = sql.NullInt64{Int64: int64(c.Time.Period), Valid: true}
	}
	if c.Override != nil {
		row.OverrideBy = sql.NullString{String: c.Override.By, Valid: true}
		row.OverrideAt = sql.NullTime{Time: c.Override.At, Valid: true}
		row.OverrideReasons = pq.StringArray(c.Override.Reasons)
	}
	return row
}

func (row courseRow) toCourse() course.Course {
	c := course.Course{
		ID:         row.ID,
		Code:       row.Code,
		Name:       row.Name,
		Credits:    row.Credits,
		Department: row.Department,
		Capacity:   row.Capacity,
		Summary:    row.Summary,
		Tags:       []string(row.Tags),
		TeacherIDs: []string(row.TeacherIDs),
		TeacherID:  row.TeacherID,
		Location:   row.Location,
		Schedule:   row.Schedule,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
	if row.TimeDay.Valid && row.TimePeriod.Valid {
		c.Time = &course.TimeSlot{Day: int(row.TimeDay.Int64), Period: int(row.TimePeriod.Int64)}
	}
	if row.OverrideAt.Valid {
		c.Override = &course.Override{
			By:      row.OverrideBy.String,
			At:      row.OverrideAt.Time.UTC(),
			Reasons: []string(row.OverrideReasons),
		}
	}
	return c
}

type courseRepository struct {
	db core.DBExecutor
}

func NewCourseRepository(db core.DBExecutor) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	if crs.ID == "" {
		crs.ID = uuid.NewString()
	}
	q := `INSERT INTO courses (` + courseColumns + `) VALUES (
		:id, :code, :name, :credits, :department, :capacity, :summary, :tags, :teacher_ids, :teacher_id,
		:time_day, :time_period, :location, :schedule, :override_by, :override_at, :override_reasons, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toCourseRow(crs)); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "selecting course")
	}
	return row.toCourse(), nil
}

// QueryCourses applies the search and teacher filters in SQL. The day filter is left to the caller
// since legacy schedules are only parsed in Go.
func (repo *courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, ordering []core.DBOrdering) ([]course.Course, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter != nil && filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		where = append(where, fmt.Sprintf(`concat_ws(E'\n', name, code, department, summary) ILIKE $%d`, len(args)))
	}
	if filter != nil && filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		where = append(where, fmt.Sprintf("($%d = ANY(teacher_ids) OR (COALESCE(cardinality(teacher_ids), 0) = 0 AND teacher_id = $%[1]d))", len(args)))
	}

	q := `SELECT ` + courseColumns + ` FROM courses`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	orderBy := []string{}
	for _, ord := range ordering {
		if _, ok := course.OrderingFields[ord.Field]; !ok {
			return nil, errors.Wrap(errUnknownOrdering, ord.Field)
		}
		orderBy = append(orderBy, ord.String())
	}
	orderBy = append(orderBy, "created_at ASC", "id ASC")
	q += ` ORDER BY ` + strings.Join(orderBy, ", ")

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	q := `UPDATE courses SET
		code = :code, name = :name, credits = :credits, department = :department, capacity = :capacity,
		summary = :summary, tags = :tags, teacher_ids = :teacher_ids, teacher_id = :teacher_id,
		time_day = :time_day, time_period = :time_period, location = :location, schedule = :schedule,
		override_by = :override_by, override_at = :override_at, override_reasons = :override_reasons,
		updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, toCourseRow(crs))
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting courses")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting courses")
	}
	return int(n), nil
}
