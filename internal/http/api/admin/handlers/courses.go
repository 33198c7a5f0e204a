package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CourseMarket/internal/catalog"
	"github.com/router-for-me/CourseMarket/internal/http/api/middleware"
	"github.com/router-for-me/CourseMarket/internal/models"
	"github.com/shopspring/decimal"
)

// CourseHandler manages courses and lessons.
type CourseHandler struct {
	catalog *catalog.Service
}

// NewCourseHandler constructs a CourseHandler.
func NewCourseHandler(svc *catalog.Service) *CourseHandler {
	return &CourseHandler{catalog: svc}
}

// courseRequest defines the request body for course create and update.
type courseRequest struct {
	Author    string          `json:"author" binding:"required,max=250"`
	Title     string          `json:"title" binding:"required,max=250"`
	StartDate time.Time       `json:"start_date" binding:"required"`
	Price     decimal.Decimal `json:"price"`
	IsActive  bool            `json:"is_active"`
}

func (r courseRequest) input() catalog.CourseInput {
	return catalog.CourseInput{
		Author:    r.Author,
		Title:     r.Title,
		StartDate: r.StartDate,
		Price:     r.Price,
		IsActive:  r.IsActive,
	}
}

// Create creates a course and provisions its groups.
func (h *CourseHandler) Create(c *gin.Context) {
	var body courseRequest
	if !middleware.BindJSON(c, &body) {
		return
	}
	course, errCreate := h.catalog.CreateCourse(c.Request.Context(), body.input())
	if errCreate != nil {
		middleware.RespondError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, formatCourse(course))
}

// Update replaces a course's editable fields.
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	var body courseRequest
	if !middleware.BindJSON(c, &body) {
		return
	}
	course, errUpdate := h.catalog.UpdateCourse(c.Request.Context(), id, body.input())
	if errUpdate != nil {
		middleware.RespondError(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, formatCourse(course))
}

// Delete removes a course and everything attached to it.
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	if errDelete := h.catalog.DeleteCourse(c.Request.Context(), id); errDelete != nil {
		middleware.RespondError(c, errDelete)
		return
	}
	c.Status(http.StatusNoContent)
}

// lessonRequest defines the request body for lesson creation.
type lessonRequest struct {
	Title string `json:"title" binding:"required,max=250"`
	Link  string `json:"link" binding:"required,url,max=250"`
}

// CreateLesson adds a lesson to a course.
func (h *CourseHandler) CreateLesson(c *gin.Context) {
	id, ok := middleware.ParseID(c, "id")
	if !ok {
		return
	}
	var body lessonRequest
	if !middleware.BindJSON(c, &body) {
		return
	}
	lesson, errCreate := h.catalog.CreateLesson(c.Request.Context(), id, catalog.LessonInput{
		Title: body.Title,
		Link:  body.Link,
	})
	if errCreate != nil {
		middleware.RespondError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":        lesson.ID,
		"course_id": lesson.CourseID,
		"title":     lesson.Title,
		"link":      lesson.Link,
	})
}

// formatCourse formats a course row into response JSON.
func formatCourse(course *models.Course) gin.H {
	return gin.H{
		"id":         course.ID,
		"author":     course.Author,
		"title":      course.Title,
		"start_date": course.StartDate,
		"price":      course.Price.StringFixed(2),
		"is_active":  course.IsActive,
		"created_at": course.CreatedAt,
		"updated_at": course.UpdatedAt,
	}
}
