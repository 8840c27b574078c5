package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/bochengwang975-blip/campus/core"
	"github.com/bochengwang975-blip/campus/core/course"
	"github.com/bochengwang975-blip/campus/core/user"
	"github.com/bochengwang975-blip/campus/services/logger"
	"github.com/bochengwang975-blip/campus/storage/database"
)

// NewConfig returns a TEST config, backed by the in-memory database unless TEST_DATABASE_INMEMORY=false.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.TestMode = true
	conf.AppName = "Campus Test"
	return conf
}

// NewLogger returns a logger that reports nowhere.
func NewLogger() core.Logger {
	l := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), &core.Config{Env: "TEST"})
	l.Enable(false)
	return l
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	return validate, translator
}

// PrepareDB opens, migrates and empties the TEST postgres database.
// The test is skipped when the config asks for the in-memory database.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conf := NewConfig()
	if conf.Database.InMemory {
		t.Skip("postgres tests disabled (TEST_DATABASE_INMEMORY)")
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		t.Fatalf("database.CreateIfNotExist() failed: %v", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(context.Background(), db.DB, "up"); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	if _, err = db.Exec("TRUNCATE enrollments, courses, users"); err != nil {
		t.Fatalf("truncating tables failed: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, repo user.Repository, name, uname, email string, roles []string, createdAt ...time.Time) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr, err := repo.CreateUser(context.Background(), user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  true,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateCourse saves a course as is, skipping conflict checks.
func CreateCourse(t *testing.T, repo course.Repository, code string, teacherIDs []string, slot *course.TimeSlot, location string) course.Course {
	t.Helper()
	now := time.Now().UTC()
	crs := course.Course{
		Code:       code,
		Name:       code,
		Credits:    2,
		Department: "测试学院",
		Capacity:   50,
		Tags:       []string{},
		TeacherIDs: teacherIDs,
		Time:       slot,
		Location:   location,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	crs, err := repo.CreateCourse(context.Background(), crs)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

// CreateLegacyCourse saves a course predating structured slots and co-teaching.
func CreateLegacyCourse(t *testing.T, repo course.Repository, code, teacherID, schedule string) course.Course {
	t.Helper()
	now := time.Now().UTC()
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Code:       code,
		Name:       code,
		Credits:    2,
		Department: "测试学院",
		Capacity:   50,
		Tags:       []string{},
		TeacherID:  teacherID,
		Schedule:   schedule,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateLegacyCourse() failed: %v", err)
	}
	return crs
}

func Enroll(t *testing.T, repo course.EnrollmentRepository, courseID, studentID string) course.Enrollment {
	t.Helper()
	enr, err := repo.CreateEnrollment(context.Background(), course.Enrollment{
		CourseID:  courseID,
		StudentID: studentID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	return enr
}
