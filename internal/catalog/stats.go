package catalog

import (
	"math/big"

	"github.com/router-for-me/CourseMarket/internal/models"
	"github.com/shopspring/decimal"
)

// GroupCapacity is the nominal number of seats in one group.
const GroupCapacity = 30

// CourseSnapshot carries the counts needed to derive CourseStats.
type CourseSnapshot struct {
	Course        models.Course
	LessonsCount  int64
	StudentsCount int64
	GroupMembers  []int64 // member count per group
	TotalUsers    int64
}

// CourseStats are the read-only metrics exposed with a course.
type CourseStats struct {
	LessonsCount        int64    `json:"lessons_count"`
	StudentsCount       int64    `json:"students_count"`
	GroupsFilledPercent float64  `json:"groups_filled_percent"`
	DemandCoursePercent *float64 `json:"demand_course_percent"` // nil when there are no users
}

// Project computes CourseStats from a snapshot.
func Project(snapshot CourseSnapshot) CourseStats {
	stats := CourseStats{
		LessonsCount:  snapshot.LessonsCount,
		StudentsCount: snapshot.StudentsCount,
	}

	if len(snapshot.GroupMembers) > 0 {
		var members int64
		for _, n := range snapshot.GroupMembers {
			members += n
		}
		avg := decimal.NewFromInt(members).Div(decimal.NewFromInt(int64(len(snapshot.GroupMembers))))
		stats.GroupsFilledPercent = avg.Div(decimal.NewFromInt(GroupCapacity)).InexactFloat64()
	}

	if snapshot.TotalUsers > 0 {
		demand := roundRatio(float64(snapshot.StudentsCount)/float64(snapshot.TotalUsers), 2)
		stats.DemandCoursePercent = &demand
	}
	return stats
}

// roundRatio rounds the float64 ratio to places decimals using its exact
// binary value, half to even on exact ties. 1/40 is stored slightly above
// 0.025 and rounds up; 1/8 is an exact tie and rounds to 0.12.
func roundRatio(ratio float64, places int32) float64 {
	exact, errParse := decimal.NewFromString(new(big.Float).SetFloat64(ratio).Text('f', 64))
	if errParse != nil {
		return decimal.NewFromFloat(ratio).RoundBank(places).InexactFloat64()
	}
	return exact.RoundBank(places).InexactFloat64()
}

// IsAvailable reports whether a course is listed as available to a viewer.
func IsAvailable(course models.Course, subscribed bool) bool {
	return course.IsActive || !subscribed
}
