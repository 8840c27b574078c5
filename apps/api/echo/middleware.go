package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bochengwang975-blip/campus/core"
	"github.com/bochengwang975-blip/campus/core/course"
	"github.com/bochengwang975-blip/campus/core/user"
)

const (
	actorHeader    = "X-User-ID"
	contextUserKey = "user"
	contextObjKey  = "object"
)

// actorMiddleware loads the acting user named by the X-User-ID header, if any.
// The header is trusted as is; authentication happens upstream.
func actorMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id := core.CleanString(ctx.Request().Header.Get(actorHeader))
			if id == "" {
				return next(ctx)
			}
			usr, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return errHttpUnauthorized
				}
				return errors.Wrap(err, "finding acting user")
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

func getContextUser(ctx echo.Context) (user.User, bool) {
	usr, ok := ctx.Get(contextUserKey).(user.User)
	return usr, ok
}

func getContextUserID(ctx echo.Context) string {
	usr, _ := getContextUser(ctx)
	return usr.ID
}

// courseMiddleware loads the course named by the :id path param.
func courseMiddleware(svc *course.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			crs, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == course.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding course by ID")
			}
			ctx.Set(contextObjKey, crs)
			return next(ctx)
		}
	}
}
