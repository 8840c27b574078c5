package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/bochengwang975-blip/campus/core/course"
)

type enrollmentRepository struct {
	db *enrollmentTable
}

func NewEnrollmentRepository(db *DB) course.EnrollmentRepository {
	return &enrollmentRepository{db: db.enrollment}
}

func matchEnrollment(enr course.Enrollment, filter course.EnrollmentFilter) bool {
	return (filter.CourseID == "" || enr.CourseID == filter.CourseID) &&
		(filter.StudentID == "" || enr.StudentID == filter.StudentID)
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range repo.db.seq {
		if e := repo.db.table[id]; e.CourseID == enr.CourseID && e.StudentID == enr.StudentID {
			return *e, nil
		}
	}
	if enr.ID == "" {
		enr.ID = uuid.NewString()
	}
	repo.db.table[enr.ID] = &enr
	repo.db.seq = append(repo.db.seq, enr.ID)
	return enr, nil
}

func (repo *enrollmentRepository) QueryEnrollments(ctx context.Context, filter course.EnrollmentFilter) ([]course.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrollments := make([]course.Enrollment, 0)
	for _, id := range repo.db.seq {
		if enr := repo.db.table[id]; matchEnrollment(*enr, filter) {
			enrollments = append(enrollments, *enr)
		}
	}
	return enrollments, nil
}

func (repo *enrollmentRepository) DeleteEnrollments(ctx context.Context, filter course.EnrollmentFilter) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	deleted := make(map[string]struct{})
	for _, id := range repo.db.seq {
		if enr := repo.db.table[id]; matchEnrollment(*enr, filter) {
			delete(repo.db.table, id)
			deleted[id] = struct{}{}
		}
	}
	repo.db.seq = removeIDs(repo.db.seq, deleted)
	return len(deleted), nil
}
