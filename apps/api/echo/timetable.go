package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bochengwang975-blip/campus/core/course"
	"github.com/bochengwang975-blip/campus/core/user"
)

type timetableApi struct {
	courseSvc *course.Service
	usrSvc    *user.Service
}

func registerTimetableAPI(g *echo.Group, courseSvc *course.Service, usrSvc *user.Service) {
	api := timetableApi{courseSvc: courseSvc, usrSvc: usrSvc}

	g.GET("/timetable", api.timetable)
	g.GET("/users/:id/timetable", api.userTimetable)
}

type TimetableRequest struct {
	ViewerID string `query:"viewer"`
	Role     string `query:"role"`
}

// timetable renders the week of ?viewer= as ?role=.
// Without a viewer, the acting user is used.
func (api *timetableApi) timetable(ctx echo.Context) error {
	var data TimetableRequest
	if err := bindQuery(ctx, &data); err != nil {
		return err
	}
	if data.ViewerID == "" {
		if usr, ok := getContextUser(ctx); ok {
			data.ViewerID = usr.ID
			if data.Role == "" {
				data.Role = usr.TimetableView()
			}
		}
	}

	week, err := api.courseSvc.Timetable(ctx.Request().Context(), data.ViewerID, course.Role(data.Role))
	if err != nil {
		return errors.Wrap(err, "projecting timetable")
	}
	return ctx.JSON(http.StatusOK, week)
}

// userTimetable renders the week of a user as seen from their highest role.
func (api *timetableApi) userTimetable(ctx echo.Context) error {
	usr, err := api.usrSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	role := course.Role(usr.TimetableView())
	if role == course.RoleNone {
		// users without any role only see an empty week
		role = course.RoleStudent
	}

	week, err := api.courseSvc.Timetable(ctx.Request().Context(), usr.ID, role)
	if err != nil {
		return errors.Wrap(err, "projecting timetable")
	}
	return ctx.JSON(http.StatusOK, week)
}
