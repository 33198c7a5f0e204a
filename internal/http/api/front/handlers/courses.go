package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CourseMarket/internal/catalog"
	"github.com/router-for-me/CourseMarket/internal/http/api/middleware"
)

// CourseFrontHandler serves course browsing endpoints.
type CourseFrontHandler struct {
	catalog *catalog.Service
}

// NewCourseFrontHandler constructs a CourseFrontHandler.
func NewCourseFrontHandler(svc *catalog.Service) *CourseFrontHandler {
	return &CourseFrontHandler{catalog: svc}
}

// List returns every course with its statistics, optionally filtered by the
// search query parameter.
func (h *CourseFrontHandler) List(c *gin.Context) {
	views, errList := h.catalog.SearchCourses(c.Request.Context(), c.Query("search"))
	if errList != nil {
		middleware.RespondError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(views))
	for _, view := range views {
		out = append(out, formatCourseView(view))
	}
	c.JSON(http.StatusOK, gin.H{"courses": out})
}

// Available returns courses that are active or not yet bought by the caller.
func (h *CourseFrontHandler) Available(c *gin.Context) {
	views, errList := h.catalog.ListAvailable(c.Request.Context(), middleware.UserID(c))
	if errList != nil {
		middleware.RespondError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(views))
	for _, view := range views {
		out = append(out, gin.H{
			"id":            view.Course.ID,
			"author":        view.Course.Author,
			"title":         view.Course.Title,
			"start_date":    view.Course.StartDate,
			"price":         view.Course.Price.StringFixed(2),
			"is_active":     view.Course.IsActive,
			"lessons":       view.Lessons,
			"lessons_count": view.LessonsCount,
		})
	}
	c.JSON(http.StatusOK, gin.H{"courses": out})
}

// Get returns one course with its statistics.
func (h *CourseFrontHandler) Get(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	view, errGet := h.catalog.GetCourse(c.Request.Context(), id)
	if errGet != nil {
		middleware.RespondError(c, errGet)
		return
	}
	c.JSON(http.StatusOK, formatCourseView(*view))
}

// Lessons returns the lessons of a course.
func (h *CourseFrontHandler) Lessons(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	lessons, errList := h.catalog.ListLessons(c.Request.Context(), id)
	if errList != nil {
		middleware.RespondError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, gin.H{
			"id":     lesson.ID,
			"title":  lesson.Title,
			"link":   lesson.Link,
			"course": lesson.CourseTitle,
		})
	}
	c.JSON(http.StatusOK, gin.H{"lessons": out})
}

// Groups returns the groups of a course with member counts.
func (h *CourseFrontHandler) Groups(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	groups, errList := h.catalog.ListGroups(c.Request.Context(), id)
	if errList != nil {
		middleware.RespondError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(groups))
	for _, group := range groups {
		out = append(out, gin.H{
			"id":           group.ID,
			"group_number": group.GroupNumber,
			"members":      group.Members,
		})
	}
	c.JSON(http.StatusOK, gin.H{"groups": out})
}

// Students returns the users subscribed to a course.
func (h *CourseFrontHandler) Students(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	students, errList := h.catalog.ListStudents(c.Request.Context(), id)
	if errList != nil {
		middleware.RespondError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(students))
	for _, student := range students {
		out = append(out, gin.H{
			"first_name": student.FirstName,
			"last_name":  student.LastName,
			"email":      student.Email,
		})
	}
	c.JSON(http.StatusOK, gin.H{"students": out})
}

// formatCourseView formats a course and its statistics into response JSON.
func formatCourseView(view catalog.CourseView) gin.H {
	return gin.H{
		"id":                    view.Course.ID,
		"author":                view.Course.Author,
		"title":                 view.Course.Title,
		"start_date":            view.Course.StartDate,
		"price":                 view.Course.Price.StringFixed(2),
		"is_active":             view.Course.IsActive,
		"lessons":               view.Lessons,
		"lessons_count":         view.Stats.LessonsCount,
		"students_count":        view.Stats.StudentsCount,
		"groups_filled_percent": view.Stats.GroupsFilledPercent,
		"demand_course_percent": view.Stats.DemandCoursePercent,
	}
}
