// Package groups provisions the fixed study groups of a course and balances
// new students across them.
package groups

import (
	"context"
	"fmt"

	"github.com/router-for-me/CourseMarket/internal/market"
	"github.com/router-for-me/CourseMarket/internal/models"
	"github.com/router-for-me/CourseMarket/internal/store"
)

// DefaultGroupCount is the number of groups created for every course.
const DefaultGroupCount = 10

// Allocator provisions and fills course groups.
type Allocator struct {
	count int
}

// NewAllocator returns an Allocator creating count groups per course; values
// below one fall back to DefaultGroupCount.
func NewAllocator(count int) *Allocator {
	if count < 1 {
		count = DefaultGroupCount
	}
	return &Allocator{count: count}
}

// Provision creates groups 1..N for a newly created course.
func (a *Allocator) Provision(ctx context.Context, tx store.Store, courseID uint64) ([]models.Group, error) {
	batch := make([]models.Group, 0, a.count)
	for number := 1; number <= a.count; number++ {
		batch = append(batch, models.Group{CourseID: courseID, GroupNumber: number})
	}
	if errCreate := tx.Groups().CreateBatch(ctx, batch); errCreate != nil {
		return nil, fmt.Errorf("groups: provision course %d: %w", courseID, errCreate)
	}
	return batch, nil
}

// Assign places studentID into the least populated group of the course.
func (a *Allocator) Assign(ctx context.Context, tx store.Store, courseID, studentID uint64) (*models.Group, error) {
	rows, errLock := tx.Groups().LockByCourse(ctx, courseID)
	if errLock != nil {
		return nil, fmt.Errorf("groups: lock course %d: %w", courseID, errLock)
	}
	counts, errCounts := tx.Groups().MemberCounts(ctx, courseID)
	if errCounts != nil {
		return nil, fmt.Errorf("groups: member counts: %w", errCounts)
	}
	group, ok := PickLeastPopulated(rows, counts)
	if !ok {
		return nil, market.ErrNoGroupAvailable
	}
	enrollment := &models.GroupEnrollment{GroupID: group.ID, StudentID: studentID}
	if errCreate := tx.Enrollments().Create(ctx, enrollment); errCreate != nil {
		return nil, fmt.Errorf("groups: enroll student %d: %w", studentID, errCreate)
	}
	return &group, nil
}

// PickLeastPopulated returns the group with the fewest members; ties go to the
// lowest group number. ok is false when rows is empty.
func PickLeastPopulated(rows []models.Group, counts map[uint64]int64) (models.Group, bool) {
	var (
		best      models.Group
		bestCount int64
		found     bool
	)
	for _, row := range rows {
		members := counts[row.ID]
		if !found || members < bestCount || (members == bestCount && row.GroupNumber < best.GroupNumber) {
			best, bestCount, found = row, members, true
		}
	}
	return best, found
}
