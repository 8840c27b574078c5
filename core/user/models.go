package user

import (
	"strings"
	"time"

	"github.com/bochengwang975-blip/campus/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Teacher
	RoleTeacher = "teacher:"

	// Student
	RoleStudent = "student:"
)

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminOwner}
	TeacherRoles = []string{RoleTeacher}
	StudentRoles = []string{RoleStudent}
	AllRoles     = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner: 30,
		RoleAdmin:      21,

		// Teachers: 20 - 11
		RoleTeacher: 11,

		// Students: 10 - 1
		RoleStudent: 1,
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 4)
	all = append(all, AdminRoles...)
	all = append(all, TeacherRoles...)
	all = append(all, StudentRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u *User) IsTeacher() bool {
	return u.RoleStartsWith(RoleTeacher)
}

func (u *User) IsStudent() bool {
	return u.RoleStartsWith(RoleStudent)
}

// TimetableView names the timetable a user gets by default: the one of their highest role.
// It returns "" for users without any role.
func (u *User) TimetableView() string {
	switch {
	case u.IsAdmin():
		return "admin"
	case u.IsTeacher():
		return "teacher"
	case u.IsStudent():
		return "student"
	default:
		return ""
	}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name     string   `json:"name" validate:"notblank"`
	Username string   `json:"username" validate:"required,min=3"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Roles    []string `json:"roles" validate:"omitempty,dive,oneof=admin: admin:owner teacher: student:"`
}

func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
}

type GetFilter struct {
	ID       string
	Username string
}

type QueryFilter struct {
	IDs   []string `query:"id"`
	Roles []string `query:"role"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf == nil || (qf.IDs == nil && qf.Roles == nil)
}

// Directory maps user IDs to users. It resolves teacher display names for timetables.
type Directory map[string]User

func NewDirectory(users []User) Directory {
	dir := make(Directory, len(users))
	for _, usr := range users {
		dir[usr.ID] = usr
	}
	return dir
}

func (dir Directory) TeacherName(id string) (string, bool) {
	usr, ok := dir[id]
	if !ok {
		return "", false
	}
	if usr.Name != "" {
		return usr.Name, true
	}
	return usr.Username, true
}
