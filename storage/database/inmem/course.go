package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/bochengwang975-blip/campus/core"
	"github.com/bochengwang975-blip/campus/core/course"
)

var errUnknownOrdering = errors.New("unknown ordering field")

type courseRepository struct {
	db *courseTable
}

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func copyCourse(c course.Course) course.Course {
	c.Tags = copyStrings(c.Tags)
	c.TeacherIDs = copyStrings(c.TeacherIDs)
	if c.Time != nil {
		slot := *c.Time
		c.Time = &slot
	}
	if c.Override != nil {
		ovr := *c.Override
		ovr.Reasons = copyStrings(ovr.Reasons)
		c.Override = &ovr
	}
	return c
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if crs.ID == "" {
		crs.ID = uuid.NewString()
	}
	crs = copyCourse(crs)
	repo.db.table[crs.ID] = &crs
	repo.db.seq = append(repo.db.seq, crs.ID)
	return copyCourse(crs), nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.table[id]; ok {
		return copyCourse(*crs), nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, ordering []core.DBOrdering) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.seq))
	for _, id := range repo.db.seq {
		crs := repo.db.table[id]
		if filter.Match(*crs) {
			courses = append(courses, copyCourse(*crs))
		}
	}
	if len(ordering) > 0 {
		if err := sortCourses(courses, ordering); err != nil {
			return nil, err
		}
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	crs = copyCourse(crs)
	crs.CreatedAt = orig.CreatedAt
	repo.db.table[crs.ID] = &crs
	return copyCourse(crs), nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids []string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	deleted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			deleted[id] = struct{}{}
		}
	}
	repo.db.seq = removeIDs(repo.db.seq, deleted)
	return len(deleted), nil
}

func sortCourses(courses []course.Course, ordering []core.DBOrdering) error {
	for _, ord := range ordering {
		if _, ok := courseFields[ord.Field]; !ok {
			return errors.Wrap(errUnknownOrdering, ord.Field)
		}
	}
	sort.SliceStable(courses, func(i, j int) bool {
		for _, ord := range ordering {
			cmp := courseFields[ord.Field](courses[i], courses[j])
			if cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
	return nil
}

var courseFields = map[string]func(a, b course.Course) int{
	"code":       func(a, b course.Course) int { return strings.Compare(a.Code, b.Code) },
	"name":       func(a, b course.Course) int { return strings.Compare(a.Name, b.Name) },
	"department": func(a, b course.Course) int { return strings.Compare(a.Department, b.Department) },
	"credits":    func(a, b course.Course) int { return a.Credits - b.Credits },
	"capacity":   func(a, b course.Course) int { return a.Capacity - b.Capacity },
	"created_at": func(a, b course.Course) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updated_at": func(a, b course.Course) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}
