package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/router-for-me/CourseMarket/internal/groups"
	"github.com/router-for-me/CourseMarket/internal/market"
	"github.com/router-for-me/CourseMarket/internal/models"
	"github.com/router-for-me/CourseMarket/internal/store/memory"
	"github.com/shopspring/decimal"
)

func newService() (*Service, *memory.Store) {
	st := memory.New()
	return NewService(st, groups.NewAllocator(groups.DefaultGroupCount)), st
}

func courseInput(title string, active bool) CourseInput {
	return CourseInput{
		Author:    "Jane Doe",
		Title:     title,
		StartDate: time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC),
		Price:     decimal.RequireFromString("150.00"),
		IsActive:  active,
	}
}

func TestCreateCourse_ProvisionsTenGroups(t *testing.T) {
	svc, st := newService()
	ctx := context.Background()

	course, err := svc.CreateCourse(ctx, courseInput("Go", false))
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	rows, err := st.Groups().ListByCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(rows) != 10 {
		t.Fatalf("expected 10 groups, got %d", len(rows))
	}
	for i, row := range rows {
		if row.GroupNumber != i+1 {
			t.Fatalf("expected group %d, got %d", i+1, row.GroupNumber)
		}
	}

	// Updating a course must not provision again.
	if _, errUpdate := svc.UpdateCourse(ctx, course.ID, courseInput("Go 2", true)); errUpdate != nil {
		t.Fatalf("update course: %v", errUpdate)
	}
	views, err := svc.ListGroups(ctx, course.ID)
	if err != nil {
		t.Fatalf("list group views: %v", err)
	}
	if len(views) != 10 {
		t.Fatalf("expected 10 groups after update, got %d", len(views))
	}
}

func TestCreateCourse_Validation(t *testing.T) {
	svc, _ := newService()
	in := courseInput("", true)
	if _, err := svc.CreateCourse(context.Background(), in); !errors.Is(err, market.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty title, got %v", err)
	}
	in = courseInput("Go", true)
	in.Price = decimal.NewFromInt(-5)
	if _, err := svc.CreateCourse(context.Background(), in); !errors.Is(err, market.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative price, got %v", err)
	}
}

func TestCreateLesson_ValidatesLink(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	course, err := svc.CreateCourse(ctx, courseInput("Go", true))
	if err != nil {
		t.Fatalf("create course: %v", err)
	}

	_, errCreate := svc.CreateLesson(ctx, course.ID, LessonInput{Title: "Intro", Link: "ftp://example.com"})
	var validationErr *market.ValidationError
	if !errors.As(errCreate, &validationErr) || validationErr.Field != "link" {
		t.Fatalf("expected link validation error for ftp link, got %v", errCreate)
	}
	if validationErr.Message != "must be an http or https URL" {
		t.Fatalf("unexpected message %q", validationErr.Message)
	}
	if _, errCreate := svc.CreateLesson(ctx, 999, LessonInput{Title: "Intro", Link: "https://example.com/1"}); !errors.Is(errCreate, market.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing course, got %v", errCreate)
	}
	if _, errCreate := svc.CreateLesson(ctx, course.ID, LessonInput{Title: "Intro", Link: "https://example.com/1"}); errCreate != nil {
		t.Fatalf("create lesson: %v", errCreate)
	}

	lessons, err := svc.ListLessons(ctx, course.ID)
	if err != nil {
		t.Fatalf("list lessons: %v", err)
	}
	if len(lessons) != 1 || lessons[0].CourseTitle != "Go" {
		t.Fatalf("unexpected lessons %+v", lessons)
	}
}

func TestListCourses_Stats(t *testing.T) {
	svc, st := newService()
	ctx := context.Background()
	course, err := svc.CreateCourse(ctx, courseInput("Go", true))
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if _, errCreate := svc.CreateLesson(ctx, course.ID, LessonInput{Title: "Intro", Link: "https://example.com/1"}); errCreate != nil {
		t.Fatalf("create lesson: %v", errCreate)
	}

	for i := 0; i < 12; i++ {
		user := &models.User{Email: string(rune('a'+i)) + "@example.com"}
		if errCreate := st.Users().Create(ctx, user); errCreate != nil {
			t.Fatalf("create user: %v", errCreate)
		}
		if i < 3 {
			if errSub := st.Subscriptions().Create(ctx, &models.Subscription{StudentID: user.ID, CourseID: course.ID}); errSub != nil {
				t.Fatalf("create subscription: %v", errSub)
			}
		}
	}

	views, err := svc.ListCourses(ctx)
	if err != nil {
		t.Fatalf("list courses: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 course, got %d", len(views))
	}
	stats := views[0].Stats
	if stats.LessonsCount != 1 || stats.StudentsCount != 3 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if stats.DemandCoursePercent == nil || *stats.DemandCoursePercent != 0.25 {
		t.Fatalf("expected demand 0.25, got %v", stats.DemandCoursePercent)
	}
	if len(views[0].Lessons) != 1 || views[0].Lessons[0] != "Intro" {
		t.Fatalf("unexpected lesson titles %+v", views[0].Lessons)
	}

	students, err := svc.ListStudents(ctx, course.ID)
	if err != nil {
		t.Fatalf("list students: %v", err)
	}
	if len(students) != 3 {
		t.Fatalf("expected 3 students, got %d", len(students))
	}
}

func TestListAvailable_PreservesFilter(t *testing.T) {
	svc, st := newService()
	ctx := context.Background()
	viewer := &models.User{Email: "viewer@example.com"}
	if err := st.Users().Create(ctx, viewer); err != nil {
		t.Fatalf("create viewer: %v", err)
	}

	a, _ := svc.CreateCourse(ctx, courseInput("A", true))
	b, _ := svc.CreateCourse(ctx, courseInput("B", false))
	_, _ = svc.CreateCourse(ctx, courseInput("C", false))
	for _, course := range []*models.Course{a, b} {
		if err := st.Subscriptions().Create(ctx, &models.Subscription{StudentID: viewer.ID, CourseID: course.ID}); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}

	views, err := svc.ListAvailable(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	got := map[string]bool{}
	for _, view := range views {
		got[view.Course.Title] = true
	}
	if len(got) != 2 || !got["A"] || !got["C"] {
		t.Fatalf("expected {A, C}, got %+v", got)
	}
}

func TestDeleteCourse_Cascades(t *testing.T) {
	svc, st := newService()
	ctx := context.Background()
	course, err := svc.CreateCourse(ctx, courseInput("Go", true))
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if _, errCreate := svc.CreateLesson(ctx, course.ID, LessonInput{Title: "Intro", Link: "https://example.com/1"}); errCreate != nil {
		t.Fatalf("create lesson: %v", errCreate)
	}

	if errDelete := svc.DeleteCourse(ctx, course.ID); errDelete != nil {
		t.Fatalf("delete course: %v", errDelete)
	}
	if rows, _ := st.Groups().ListByCourse(ctx, course.ID); len(rows) != 0 {
		t.Fatalf("expected groups removed, got %d", len(rows))
	}
	if n, _ := st.Lessons().CountByCourse(ctx, course.ID); n != 0 {
		t.Fatalf("expected lessons removed, got %d", n)
	}
	if errDelete := svc.DeleteCourse(ctx, course.ID); !errors.Is(errDelete, market.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", errDelete)
	}
}
