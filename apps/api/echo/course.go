package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bochengwang975-blip/campus/core/course"
)

var errCrsNotFoundInCtx = errors.New("course object not found in echo.Context")

type courseApi struct {
	svc *course.Service
}

func registerCourseAPI(g *echo.Group, svc *course.Service) {
	api := courseApi{svc: svc}

	cg := g.Group("/courses")
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.POST("/conflicts", api.checkConflict)

	// detail endpoints
	dg := cg.Group("/:id", courseMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/enrollments", api.queryEnrollments)
	dg.POST("/enrollments", api.enroll)
	dg.DELETE("/enrollments/:student_id", api.drop)
}

type (
	// SavedCourse is the response to a course creation or edit.
	// Report lists the conflicts that were overridden, if any, and room hints.
	SavedCourse struct {
		Course course.Course         `json:"course"`
		Report course.ConflictReport `json:"report"`
	}

	EnrollRequest struct {
		StudentID string `json:"student_id"`
	}
)

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	filter := new(course.QueryFilter)
	if err := bindQuery(ctx, filter); err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	courses, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	data.ActorID = getContextUserID(ctx)

	crs, report, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, SavedCourse{Course: crs, Report: report})
}

func (api *courseApi) checkConflict(ctx echo.Context) error {
	var cand course.Candidate
	if err := ctx.Bind(&cand); err != nil {
		return err
	}
	report, err := api.svc.CheckConflict(ctx.Request().Context(), cand)
	if err != nil {
		return errors.Wrap(err, "checking conflicts")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, ok := ctx.Get(contextObjKey).(course.Course)
	if !ok {
		return errors.Wrap(errCrsNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	crs, ok := ctx.Get(contextObjKey).(course.Course)
	if !ok {
		return errors.Wrap(errCrsNotFoundInCtx, "retrieving object from context")
	}
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	data.ActorID = getContextUserID(ctx)

	crs, report, err := api.svc.Update(ctx.Request().Context(), crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, SavedCourse{Course: crs, Report: report})
}

func (api *courseApi) destroy(ctx echo.Context) error {
	crs, ok := ctx.Get(contextObjKey).(course.Course)
	if !ok {
		return errors.Wrap(errCrsNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), crs.ID); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) queryEnrollments(ctx echo.Context) error {
	enrs, err := api.svc.CourseEnrollments(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return ctx.JSON(http.StatusOK, enrs)
}

// enroll registers the student of the body, or the acting user.
func (api *courseApi) enroll(ctx echo.Context) error {
	var data EnrollRequest
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if data.StudentID == "" {
		data.StudentID = getContextUserID(ctx)
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), ctx.Param("id"), data.StudentID)
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *courseApi) drop(ctx echo.Context) error {
	if err := api.svc.Drop(ctx.Request().Context(), ctx.Param("id"), ctx.Param("student_id")); err != nil {
		return errors.Wrap(err, "dropping enrollment")
	}
	return ctx.NoContent(http.StatusNoContent)
}
