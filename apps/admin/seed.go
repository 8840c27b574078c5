package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/bochengwang975-blip/campus/core/course"
	"github.com/bochengwang975-blip/campus/core/user"
)

var errAlreadySeeded = errors.New("demo data already present (user \"admin\" exists)")

type seedCourse struct {
	code, name, department string
	teachers               []string // usernames
	day, period            int
	location               string
}

type legacyCourse struct {
	code, name, department string
	teacher                string // username
	schedule               string
}

var (
	seedUsers = []user.NewUser{
		{Name: "系统管理员", Username: "admin", Email: "admin@campus.test", Roles: []string{user.RoleAdminOwner}},
		{Name: "王老师", Username: "wang", Email: "wang@campus.test", Roles: []string{user.RoleTeacher}},
		{Name: "李老师", Username: "lili", Email: "lili@campus.test", Roles: []string{user.RoleTeacher}},
		{Name: "张三", Username: "zhangsan", Roles: []string{user.RoleStudent}},
		{Name: "陈四", Username: "chensi", Roles: []string{user.RoleStudent}},
	}

	seedCourses = []seedCourse{
		{"MATH201", "高等数学", "数学学院", []string{"wang"}, course.Tuesday, course.Morning1, "A101"},
		{"PHYS101", "大学物理", "物理学院", []string{"lili"}, course.Tuesday, course.Morning1, "B101"},
		{"CS101", "程序设计基础", "计算机学院", []string{"wang", "lili"}, course.Thursday, course.Afternoon1, "C301"},
	}

	legacyCourses = []legacyCourse{
		{"HIST101", "中国近代史", "历史学院", "lili", "周一 3-4 节，A402"},
		{"CHEM101", "基础化学", "化学学院", "wang", "周三 5-6 节，B202"},
	}

	seedEnrollments = map[string][]string{
		"zhangsan": {"MATH201", "HIST101", "CS101"},
		"chensi":   {"PHYS101", "CHEM101"},
	}
)

func (cli *commandLine) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, courses (including two legacy ones) and enrollments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cli.seed(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d courses\n", len(seedUsers), len(seedCourses)+len(legacyCourses))
			return nil
		},
	}
}

func (cli *commandLine) seed(ctx context.Context) error {
	if _, err := cli.usrSvc.GetByUsername(ctx, "admin"); err == nil {
		return errAlreadySeeded
	} else if errors.Cause(err) != user.ErrNotFound {
		return err
	}

	userIDs := make(map[string]string, len(seedUsers))
	for _, nu := range seedUsers {
		usr, err := cli.usrSvc.Create(ctx, nu, cli.validate)
		if err != nil {
			return errors.Wrapf(err, "creating user %s", nu.Username)
		}
		userIDs[usr.Username] = usr.ID
	}

	courseIDs := make(map[string]string, len(seedCourses)+len(legacyCourses))
	for _, sc := range seedCourses {
		teacherIDs := make([]string, 0, len(sc.teachers))
		for _, uname := range sc.teachers {
			teacherIDs = append(teacherIDs, userIDs[uname])
		}
		crs, _, err := cli.courseSvc.Create(ctx, course.NewCourse{
			Code:       sc.code,
			Name:       sc.name,
			Department: sc.department,
			TeacherIDs: teacherIDs,
			Time:       &course.TimeSlot{Day: sc.day, Period: sc.period},
			Location:   sc.location,
			ActorID:    userIDs["admin"],
		})
		if err != nil {
			return errors.Wrapf(err, "creating course %s", sc.code)
		}
		courseIDs[crs.Code] = crs.ID
	}

	// legacy rows bypass the service: they only exist as imports from the old system
	now := time.Now().UTC()
	for _, lc := range legacyCourses {
		crs, err := cli.repos.courses.CreateCourse(ctx, course.Course{
			Code:       lc.code,
			Name:       lc.name,
			Credits:    2,
			Department: lc.department,
			Capacity:   50,
			Tags:       []string{"legacy"},
			TeacherID:  userIDs[lc.teacher],
			Schedule:   lc.schedule,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return errors.Wrapf(err, "creating legacy course %s", lc.code)
		}
		courseIDs[crs.Code] = crs.ID
	}

	for uname, codes := range seedEnrollments {
		for _, code := range codes {
			if _, err := cli.courseSvc.Enroll(ctx, courseIDs[code], userIDs[uname]); err != nil {
				return errors.Wrapf(err, "enrolling %s in %s", uname, code)
			}
		}
	}
	return nil
}
