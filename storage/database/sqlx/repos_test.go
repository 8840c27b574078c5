package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bochengwang975-blip/campus/core"
	"github.com/bochengwang975-blip/campus/core/course"
	"github.com/bochengwang975-blip/campus/core/user"
	"github.com/bochengwang975-blip/campus/storage/database/sqlx"
	"github.com/bochengwang975-blip/campus/tests"
)

func codes(courses []course.Course) []string {
	cc := make([]string, 0, len(courses))
	for _, c := range courses {
		cc = append(cc, c.Code)
	}
	return cc
}

func Test_courseRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	ctx := context.Background()
	repo := sqlxrepos.NewCourseRepository(db)

	math := testutil.CreateCourse(t, repo, "MATH101", []string{"t1", "t2"}, &course.TimeSlot{Day: 1, Period: 3}, "A402")
	hist := testutil.CreateLegacyCourse(t, repo, "HIST001", "t1", "周三 5-6 节，B202")
	phys := testutil.CreateCourse(t, repo, "PHYS101", []string{"t3"}, &course.TimeSlot{Day: 2, Period: 1}, "B101")

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetCourse(ctx, math.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"t1", "t2"}, got.TeacherIDs)
		assert.Equal(t, &course.TimeSlot{Day: 1, Period: 3}, got.Time)
		assert.Equal(t, []string{}, got.Tags)
		assert.Nil(t, got.Override)

		got, err = repo.GetCourse(ctx, hist.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Time)
		assert.Nil(t, got.TeacherIDs)
		assert.Equal(t, "t1", got.TeacherID)
		assert.Equal(t, "周三 5-6 节，B202", got.Schedule)

		_, err = repo.GetCourse(ctx, "lol")
		assert.Equal(t, course.ErrNotFound, err)
	})

	t.Run("query", func(t *testing.T) {
		tests := []struct {
			name     string
			filter   *course.QueryFilter
			ordering []core.DBOrdering
			want     []string
		}{
			{name: "all", want: []string{"MATH101", "HIST001", "PHYS101"}},
			{name: "search", filter: &course.QueryFilter{Search: "phys"}, want: []string{"PHYS101"}},
			{name: "search across fields", filter: &course.QueryFilter{Search: "101math"}, want: []string{}},
			{name: "search wildcards are literal", filter: &course.QueryFilter{Search: "M_TH"}, want: []string{}},
			{name: "search percent", filter: &course.QueryFilter{Search: "%"}, want: []string{}},
			{name: "teacher (incl. legacy)", filter: &course.QueryFilter{TeacherID: "t1"}, want: []string{"MATH101", "HIST001"}},
			{name: "co-teacher", filter: &course.QueryFilter{TeacherID: "t2"}, want: []string{"MATH101"}},
			{name: "ordering", ordering: []core.DBOrdering{{Field: "code", Ascending: false}}, want: []string{"PHYS101", "MATH101", "HIST001"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.QueryCourses(ctx, tt.filter, tt.ordering)
				require.NoError(t, err)
				assert.Equal(t, tt.want, codes(got))
			})
		}

		_, err := repo.QueryCourses(ctx, nil, []core.DBOrdering{{Field: "lol; DROP TABLE courses"}})
		assert.Error(t, err)
	})

	t.Run("update", func(t *testing.T) {
		at := time.Now().UTC().Truncate(time.Millisecond)
		phys.Location = "A402"
		phys.Override = &course.Override{By: "admin", At: at, Reasons: []string{"地点冲突"}}
		_, err := repo.UpdateCourse(ctx, phys)
		require.NoError(t, err)

		got, err := repo.GetCourse(ctx, phys.ID)
		require.NoError(t, err)
		assert.Equal(t, "A402", got.Location)
		require.NotNil(t, got.Override)
		assert.Equal(t, "admin", got.Override.By)
		assert.True(t, at.Equal(got.Override.At))
		assert.Equal(t, []string{"地点冲突"}, got.Override.Reasons)

		_, err = repo.UpdateCourse(ctx, course.Course{ID: "lol", Tags: []string{}})
		assert.Equal(t, course.ErrNotFound, err)
	})

	t.Run("delete cascades", func(t *testing.T) {
		enrollRepo := sqlxrepos.NewEnrollmentRepository(db)
		testutil.Enroll(t, enrollRepo, hist.ID, "s1")

		n, err := repo.DeleteCoursesByID(ctx, []string{hist.ID, "lol"})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		enrollments, err := enrollRepo.QueryEnrollments(ctx, course.EnrollmentFilter{StudentID: "s1"})
		require.NoError(t, err)
		assert.Empty(t, enrollments)
	})
}

func Test_enrollmentRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	ctx := context.Background()
	crsRepo := sqlxrepos.NewCourseRepository(db)
	repo := sqlxrepos.NewEnrollmentRepository(db)

	math := testutil.CreateCourse(t, crsRepo, "MATH101", []string{"t1"}, &course.TimeSlot{Day: 1, Period: 3}, "A402")
	phys := testutil.CreateCourse(t, crsRepo, "PHYS101", []string{"t1"}, &course.TimeSlot{Day: 2, Period: 3}, "A402")

	first := testutil.Enroll(t, repo, math.ID, "s1")
	again := testutil.Enroll(t, repo, math.ID, "s1")
	assert.Equal(t, first.ID, again.ID)
	testutil.Enroll(t, repo, phys.ID, "s1")
	testutil.Enroll(t, repo, math.ID, "s2")

	got, err := repo.QueryEnrollments(ctx, course.EnrollmentFilter{StudentID: "s1"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repo.QueryEnrollments(ctx, course.EnrollmentFilter{CourseID: math.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	n, err := repo.DeleteEnrollments(ctx, course.EnrollmentFilter{CourseID: math.ID, StudentID: "s2"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.DeleteEnrollments(ctx, course.EnrollmentFilter{CourseID: math.ID, StudentID: "s2"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func Test_userRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	ctx := context.Background()
	repo := sqlxrepos.NewUserRepository(db)

	wang := testutil.CreateUser(t, repo, "王老师", "wang", "wang@campus.test", []string{user.RoleTeacher})
	owner := testutil.CreateUser(t, repo, "Owner", "owner", "", []string{user.RoleAdminOwner})
	nobody := testutil.CreateUser(t, repo, "Nobody", "nobody", "", nil)

	_, err := repo.CreateUser(ctx, user.User{Name: "x", Username: "wang"})
	assert.Equal(t, user.ErrUsernameExists, errors.Cause(err))

	got, err := repo.GetUser(ctx, user.GetFilter{Username: "wang"})
	require.NoError(t, err)
	assert.Equal(t, wang.ID, got.ID)
	assert.Equal(t, []string{user.RoleTeacher}, got.Roles)

	got, err = repo.GetUser(ctx, user.GetFilter{ID: nobody.ID})
	require.NoError(t, err)
	assert.Empty(t, got.Roles)

	_, err = repo.GetUser(ctx, user.GetFilter{ID: "lol"})
	assert.Equal(t, user.ErrNotFound, err)

	users, err := repo.QueryUsers(ctx, &user.QueryFilter{Roles: []string{user.RoleAdmin}})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, owner.ID, users[0].ID)

	users, err = repo.QueryUsers(ctx, &user.QueryFilter{IDs: []string{wang.ID, nobody.ID}})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
