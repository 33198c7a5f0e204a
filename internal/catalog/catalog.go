// Package catalog manages courses and lessons and derives their read-only
// statistics.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/router-for-me/CourseMarket/internal/groups"
	"github.com/router-for-me/CourseMarket/internal/market"
	"github.com/router-for-me/CourseMarket/internal/models"
	"github.com/router-for-me/CourseMarket/internal/store"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// CourseInput holds the editable fields of a course.
type CourseInput struct {
	Author    string          `json:"author" validate:"notblank,max=250"`
	Title     string          `json:"title" validate:"notblank,max=250"`
	StartDate time.Time       `json:"start_date" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
	IsActive  bool            `json:"is_active"`
}

// LessonInput holds the fields of a new lesson.
type LessonInput struct {
	Title string `json:"title" validate:"notblank,max=250"`
	Link  string `json:"link" validate:"required,max=250,http_url"`
}

// CourseView is a course with its lesson titles and statistics.
type CourseView struct {
	Course  models.Course
	Lessons []string
	Stats   CourseStats
}

// AvailableView is a course listed as available to a viewer.
type AvailableView struct {
	Course       models.Course
	Lessons      []string
	LessonsCount int64
}

// LessonView is a lesson with the title of its course.
type LessonView struct {
	ID          uint64
	Title       string
	Link        string
	CourseTitle string
}

// GroupView is a course group with its current member count.
type GroupView struct {
	ID          uint64
	GroupNumber int
	Members     int64
}

// Service implements the course and lesson use cases.
type Service struct {
	store     store.Store
	allocator *groups.Allocator
}

// NewService constructs a Service.
func NewService(st store.Store, allocator *groups.Allocator) *Service {
	return &Service{store: st, allocator: allocator}
}

func validateCourse(in CourseInput) error {
	in.Author = strings.TrimSpace(in.Author)
	in.Title = strings.TrimSpace(in.Title)
	return market.ValidateStruct(in)
}

func validateLesson(in LessonInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Link = strings.TrimSpace(in.Link)
	return market.ValidateStruct(in)
}

// CreateCourse stores a new course together with its groups.
func (s *Service) CreateCourse(ctx context.Context, in CourseInput) (*models.Course, error) {
	if errValidate := validateCourse(in); errValidate != nil {
		return nil, errValidate
	}
	course := &models.Course{
		Author:    strings.TrimSpace(in.Author),
		Title:     strings.TrimSpace(in.Title),
		StartDate: in.StartDate.UTC(),
		Price:     in.Price.Round(2),
		IsActive:  in.IsActive,
	}
	errTx := s.store.Transaction(ctx, func(tx store.Store) error {
		if errCreate := tx.Courses().Create(ctx, course); errCreate != nil {
			return errCreate
		}
		_, errProvision := s.allocator.Provision(ctx, tx, course.ID)
		return errProvision
	})
	if errTx != nil {
		return nil, market.WrapTx("create course", errTx)
	}
	log.WithField("course_id", course.ID).Info("catalog: course created")
	return course, nil
}

// UpdateCourse replaces the editable fields of a course. Groups are untouched.
func (s *Service) UpdateCourse(ctx context.Context, id uint64, in CourseInput) (*models.Course, error) {
	if errValidate := validateCourse(in); errValidate != nil {
		return nil, errValidate
	}
	course := &models.Course{
		ID:        id,
		Author:    strings.TrimSpace(in.Author),
		Title:     strings.TrimSpace(in.Title),
		StartDate: in.StartDate.UTC(),
		Price:     in.Price.Round(2),
		IsActive:  in.IsActive,
	}
	if errUpdate := s.store.Courses().Update(ctx, course); errUpdate != nil {
		return nil, errUpdate
	}
	return s.store.Courses().Get(ctx, id)
}

// DeleteCourse removes a course with its lessons, groups and subscriptions.
func (s *Service) DeleteCourse(ctx context.Context, id uint64) error {
	errTx := s.store.Transaction(ctx, func(tx store.Store) error {
		return tx.Courses().Delete(ctx, id)
	})
	if errTx != nil {
		return market.WrapTx("delete course", errTx)
	}
	log.WithField("course_id", id).Info("catalog: course deleted")
	return nil
}

// GetCourse returns a single course with its statistics.
func (s *Service) GetCourse(ctx context.Context, id uint64) (*CourseView, error) {
	course, errGet := s.store.Courses().Get(ctx, id)
	if errGet != nil {
		return nil, errGet
	}
	totalUsers, errCount := s.store.Users().Count(ctx)
	if errCount != nil {
		return nil, errCount
	}
	view, errView := s.courseView(ctx, *course, totalUsers)
	if errView != nil {
		return nil, errView
	}
	return &view, nil
}

// ListCourses returns every course, newest first, with statistics.
func (s *Service) ListCourses(ctx context.Context) ([]CourseView, error) {
	rows, errList := s.store.Courses().List(ctx)
	if errList != nil {
		return nil, errList
	}
	return s.courseViews(ctx, rows)
}

// SearchCourses returns the courses whose title or author matches query.
func (s *Service) SearchCourses(ctx context.Context, query string) ([]CourseView, error) {
	if strings.TrimSpace(query) == "" {
		return s.ListCourses(ctx)
	}
	rows, errSearch := s.store.Courses().Search(ctx, query)
	if errSearch != nil {
		return nil, errSearch
	}
	return s.courseViews(ctx, rows)
}

func (s *Service) courseViews(ctx context.Context, rows []models.Course) ([]CourseView, error) {
	totalUsers, errCount := s.store.Users().Count(ctx)
	if errCount != nil {
		return nil, errCount
	}
	out := make([]CourseView, 0, len(rows))
	for _, row := range rows {
		view, errView := s.courseView(ctx, row, totalUsers)
		if errView != nil {
			return nil, errView
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *Service) courseView(ctx context.Context, course models.Course, totalUsers int64) (CourseView, error) {
	lessons, errLessons := s.store.Lessons().ListByCourse(ctx, course.ID)
	if errLessons != nil {
		return CourseView{}, errLessons
	}
	students, errStudents := s.store.Subscriptions().CountByCourse(ctx, course.ID)
	if errStudents != nil {
		return CourseView{}, errStudents
	}
	counts, errCounts := s.store.Groups().MemberCounts(ctx, course.ID)
	if errCounts != nil {
		return CourseView{}, errCounts
	}
	members := make([]int64, 0, len(counts))
	for _, n := range counts {
		members = append(members, n)
	}
	return CourseView{
		Course:  course,
		Lessons: lessonTitles(lessons),
		Stats: Project(CourseSnapshot{
			Course:        course,
			LessonsCount:  int64(len(lessons)),
			StudentsCount: students,
			GroupMembers:  members,
			TotalUsers:    totalUsers,
		}),
	}, nil
}

// ListAvailable returns the courses available to viewerID: active courses and
// courses the viewer has not subscribed to.
func (s *Service) ListAvailable(ctx context.Context, viewerID uint64) ([]AvailableView, error) {
	rows, errList := s.store.Courses().ListAvailable(ctx, viewerID)
	if errList != nil {
		return nil, errList
	}
	out := make([]AvailableView, 0, len(rows))
	for _, row := range rows {
		lessons, errLessons := s.store.Lessons().ListByCourse(ctx, row.ID)
		if errLessons != nil {
			return nil, errLessons
		}
		out = append(out, AvailableView{
			Course:       row,
			Lessons:      lessonTitles(lessons),
			LessonsCount: int64(len(lessons)),
		})
	}
	return out, nil
}

// CreateLesson adds a lesson to an existing course.
func (s *Service) CreateLesson(ctx context.Context, courseID uint64, in LessonInput) (*models.Lesson, error) {
	if errValidate := validateLesson(in); errValidate != nil {
		return nil, errValidate
	}
	if _, errGet := s.store.Courses().Get(ctx, courseID); errGet != nil {
		return nil, errGet
	}
	lesson := &models.Lesson{
		CourseID: courseID,
		Title:    strings.TrimSpace(in.Title),
		Link:     strings.TrimSpace(in.Link),
	}
	if errCreate := s.store.Lessons().Create(ctx, lesson); errCreate != nil {
		return nil, errCreate
	}
	return lesson, nil
}

// ListLessons returns the lessons of a course in creation order.
func (s *Service) ListLessons(ctx context.Context, courseID uint64) ([]LessonView, error) {
	course, errGet := s.store.Courses().Get(ctx, courseID)
	if errGet != nil {
		return nil, errGet
	}
	rows, errList := s.store.Lessons().ListByCourse(ctx, courseID)
	if errList != nil {
		return nil, errList
	}
	out := make([]LessonView, 0, len(rows))
	for _, row := range rows {
		out = append(out, LessonView{ID: row.ID, Title: row.Title, Link: row.Link, CourseTitle: course.Title})
	}
	return out, nil
}

// ListGroups returns the groups of a course ordered by number.
func (s *Service) ListGroups(ctx context.Context, courseID uint64) ([]GroupView, error) {
	if _, errGet := s.store.Courses().Get(ctx, courseID); errGet != nil {
		return nil, errGet
	}
	rows, errList := s.store.Groups().ListByCourse(ctx, courseID)
	if errList != nil {
		return nil, errList
	}
	counts, errCounts := s.store.Groups().MemberCounts(ctx, courseID)
	if errCounts != nil {
		return nil, errCounts
	}
	out := make([]GroupView, 0, len(rows))
	for _, row := range rows {
		out = append(out, GroupView{ID: row.ID, GroupNumber: row.GroupNumber, Members: counts[row.ID]})
	}
	return out, nil
}

// ListStudents returns the users subscribed to a course.
func (s *Service) ListStudents(ctx context.Context, courseID uint64) ([]models.User, error) {
	if _, errGet := s.store.Courses().Get(ctx, courseID); errGet != nil {
		return nil, errGet
	}
	return s.store.Subscriptions().ListStudents(ctx, courseID)
}

func lessonTitles(rows []models.Lesson) []string {
	titles := make([]string, 0, len(rows))
	for _, row := range rows {
		titles = append(titles, row.Title)
	}
	return titles
}
