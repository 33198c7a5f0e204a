package catalog

import (
	"testing"

	"github.com/router-for-me/CourseMarket/internal/models"
)

func TestProject_Demand(t *testing.T) {
	stats := Project(CourseSnapshot{StudentsCount: 3, TotalUsers: 12})
	if stats.DemandCoursePercent == nil {
		t.Fatalf("expected demand to be set")
	}
	if *stats.DemandCoursePercent != 0.25 {
		t.Fatalf("expected demand 0.25, got %v", *stats.DemandCoursePercent)
	}
}

func TestProject_DemandRoundsToTwoPlaces(t *testing.T) {
	stats := Project(CourseSnapshot{StudentsCount: 1, TotalUsers: 3})
	if stats.DemandCoursePercent == nil || *stats.DemandCoursePercent != 0.33 {
		t.Fatalf("expected demand 0.33, got %v", stats.DemandCoursePercent)
	}
}

func TestProject_DemandRoundsFromFloatValue(t *testing.T) {
	cases := []struct {
		students, users int64
		want            float64
	}{
		{students: 1, users: 40, want: 0.03},
		{students: 1, users: 8, want: 0.12},
		{students: 3, users: 8, want: 0.38},
	}
	for _, tc := range cases {
		stats := Project(CourseSnapshot{StudentsCount: tc.students, TotalUsers: tc.users})
		if stats.DemandCoursePercent == nil || *stats.DemandCoursePercent != tc.want {
			t.Fatalf("%d/%d: expected demand %v, got %v", tc.students, tc.users, tc.want, stats.DemandCoursePercent)
		}
	}
}

func TestProject_NoUsersLeavesDemandUnset(t *testing.T) {
	stats := Project(CourseSnapshot{})
	if stats.DemandCoursePercent != nil {
		t.Fatalf("expected nil demand without users, got %v", *stats.DemandCoursePercent)
	}
	if stats.GroupsFilledPercent != 0 {
		t.Fatalf("expected zero fill without groups, got %v", stats.GroupsFilledPercent)
	}
}

func TestProject_GroupsFilled(t *testing.T) {
	// 60 members over 10 groups: 6 per group out of 30 seats.
	members := []int64{6, 6, 6, 6, 6, 6, 6, 6, 6, 6}
	stats := Project(CourseSnapshot{GroupMembers: members, StudentsCount: 60, TotalUsers: 100, LessonsCount: 4})
	if stats.GroupsFilledPercent != 0.2 {
		t.Fatalf("expected fill 0.2, got %v", stats.GroupsFilledPercent)
	}
	if stats.LessonsCount != 4 || stats.StudentsCount != 60 {
		t.Fatalf("unexpected counts %+v", stats)
	}
}

func TestIsAvailable(t *testing.T) {
	cases := []struct {
		name       string
		active     bool
		subscribed bool
		want       bool
	}{
		{name: "active subscribed", active: true, subscribed: true, want: true},
		{name: "inactive subscribed", active: false, subscribed: true, want: false},
		{name: "inactive not subscribed", active: false, subscribed: false, want: true},
	}
	for _, tc := range cases {
		if got := IsAvailable(models.Course{IsActive: tc.active}, tc.subscribed); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
