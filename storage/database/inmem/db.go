package inmemdb

import (
	"sync"

	"github.com/bochengwang975-blip/campus/core/course"
	"github.com/bochengwang975-blip/campus/core/user"
)

type (
	// DB keeps every table in memory. Rows are returned in insertion order.
	DB struct {
		course     *courseTable
		enrollment *enrollmentTable
		user       *userTable
	}

	courseTable struct {
		table map[string]*course.Course
		seq   []string
		mutex sync.RWMutex
	}

	enrollmentTable struct {
		table map[string]*course.Enrollment
		seq   []string
		mutex sync.RWMutex
	}

	userTable struct {
		table map[string]*user.User
		seq   []string
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		course:     &courseTable{table: make(map[string]*course.Course)},
		enrollment: &enrollmentTable{table: make(map[string]*course.Enrollment)},
		user:       &userTable{table: make(map[string]*user.User)},
	}
}

// Reset drops every row.
func (db *DB) Reset() {
	db.course.mutex.Lock()
	db.course.table, db.course.seq = make(map[string]*course.Course), nil
	db.course.mutex.Unlock()

	db.enrollment.mutex.Lock()
	db.enrollment.table, db.enrollment.seq = make(map[string]*course.Enrollment), nil
	db.enrollment.mutex.Unlock()

	db.user.mutex.Lock()
	db.user.table, db.user.seq = make(map[string]*user.User), nil
	db.user.mutex.Unlock()
}

// removeIDs returns seq without the given ids.
func removeIDs(seq []string, ids map[string]struct{}) []string {
	kept := seq[:0]
	for _, id := range seq {
		if _, ok := ids[id]; !ok {
			kept = append(kept, id)
		}
	}
	return kept
}

func copyStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	return append(make([]string, 0, len(ss)), ss...)
}
