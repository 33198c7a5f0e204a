package store

import (
	"context"

	"github.com/router-for-me/CourseMarket/internal/models"
)

// Store exposes one repository per entity plus an atomic transaction boundary.
type Store interface {
	Users() UserRepository
	Balances() BalanceRepository
	Courses() CourseRepository
	Lessons() LessonRepository
	Groups() GroupRepository
	Subscriptions() SubscriptionRepository
	Enrollments() EnrollmentRepository

	// Transaction runs fn against a transaction-scoped Store. Any error returned by
	// fn rolls back every write made through tx. Calling Transaction on tx joins
	// the outer transaction.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// UserRepository persists user accounts.
type UserRepository interface {
	// Create inserts a user; a duplicate email yields market.ErrEmailTaken.
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id uint64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// BalanceRepository persists balances. Save and Create reject negative amounts
// with market.ErrNegativeBalance.
type BalanceRepository interface {
	Create(ctx context.Context, balance *models.Balance) error
	Get(ctx context.Context, userID uint64) (*models.Balance, error)
	// GetForUpdate reads the balance with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, userID uint64) (*models.Balance, error)
	Save(ctx context.Context, balance *models.Balance) error
}

// CourseRepository persists courses.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	Get(ctx context.Context, id uint64) (*models.Course, error)
	// List returns every course, newest first.
	List(ctx context.Context) ([]models.Course, error)
	// Search returns courses whose title or author contains query, ignoring
	// case, newest first.
	Search(ctx context.Context, query string) ([]models.Course, error)
	// ListAvailable returns courses that are active OR not subscribed by viewerID.
	ListAvailable(ctx context.Context, viewerID uint64) ([]models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	// Delete removes the course with its lessons, groups, group enrollments and
	// subscriptions. Callers wrap it in a transaction.
	Delete(ctx context.Context, id uint64) error
}

// LessonRepository persists lessons.
type LessonRepository interface {
	Create(ctx context.Context, lesson *models.Lesson) error
	// ListByCourse returns lessons in creation order.
	ListByCourse(ctx context.Context, courseID uint64) ([]models.Lesson, error)
	CountByCourse(ctx context.Context, courseID uint64) (int64, error)
}

// GroupRepository persists course groups.
type GroupRepository interface {
	CreateBatch(ctx context.Context, groups []models.Group) error
	// ListByCourse returns groups ordered by group number.
	ListByCourse(ctx context.Context, courseID uint64) ([]models.Group, error)
	// LockByCourse is ListByCourse with row locks held until the transaction ends.
	LockByCourse(ctx context.Context, courseID uint64) ([]models.Group, error)
	// MemberCounts maps every group of the course to its enrollment count.
	MemberCounts(ctx context.Context, courseID uint64) (map[uint64]int64, error)
}

// SubscriptionRepository persists course subscriptions.
type SubscriptionRepository interface {
	// Create inserts a subscription; a duplicate (student, course) pair yields
	// market.ErrAlreadyEnrolled.
	Create(ctx context.Context, sub *models.Subscription) error
	Exists(ctx context.Context, studentID, courseID uint64) (bool, error)
	CountByCourse(ctx context.Context, courseID uint64) (int64, error)
	// ListStudents returns subscribed users in enrollment order.
	ListStudents(ctx context.Context, courseID uint64) ([]models.User, error)
}

// EnrollmentRepository persists group memberships.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.GroupEnrollment) error
	// ListByCourse returns memberships across every group of the course.
	ListByCourse(ctx context.Context, courseID uint64) ([]models.GroupEnrollment, error)
}
