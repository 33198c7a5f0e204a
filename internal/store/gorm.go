package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	dbutil "github.com/router-for-me/CourseMarket/internal/db"
	"github.com/router-for-me/CourseMarket/internal/market"
	"github.com/router-for-me/CourseMarket/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of GORM (PostgreSQL or SQLite).
type GormStore struct {
	db   *gorm.DB
	inTx bool
}

// NewGormStore constructs a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Users returns the user repository.
func (s *GormStore) Users() UserRepository { return gormUsers{db: s.db} }

// Balances returns the balance repository.
func (s *GormStore) Balances() BalanceRepository { return gormBalances{db: s.db} }

// Courses returns the course repository.
func (s *GormStore) Courses() CourseRepository { return gormCourses{db: s.db} }

// Lessons returns the lesson repository.
func (s *GormStore) Lessons() LessonRepository { return gormLessons{db: s.db} }

// Groups returns the group repository.
func (s *GormStore) Groups() GroupRepository { return gormGroups{db: s.db} }

// Subscriptions returns the subscription repository.
func (s *GormStore) Subscriptions() SubscriptionRepository { return gormSubscriptions{db: s.db} }

// Enrollments returns the group enrollment repository.
func (s *GormStore) Enrollments() EnrollmentRepository { return gormEnrollments{db: s.db} }

// Transaction runs fn inside a database transaction.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store: not initialized")
	}
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, inTx: true})
	})
}

// notFound translates gorm.ErrRecordNotFound into a market.NotFoundError.
func notFound(err error, entity string, id uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return market.NewNotFound(entity, id)
	}
	return fmt.Errorf("gorm store: find %s: %w", entity, err)
}

type gormUsers struct{ db *gorm.DB }

func (r gormUsers) Create(ctx context.Context, user *models.User) error {
	if errCreate := r.db.WithContext(ctx).Create(user).Error; errCreate != nil {
		if dbutil.IsUniqueViolation(errCreate) {
			return market.ErrEmailTaken
		}
		return fmt.Errorf("gorm store: create user: %w", errCreate)
	}
	return nil
}

func (r gormUsers) Get(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if errFind := r.db.WithContext(ctx).First(&user, id).Error; errFind != nil {
		return nil, notFound(errFind, "user", id)
	}
	return &user, nil
}

func (r gormUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if errFind := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; errFind != nil {
		return nil, notFound(errFind, "user", 0)
	}
	return &user, nil
}

func (r gormUsers) Count(ctx context.Context) (int64, error) {
	var count int64
	if errCount := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; errCount != nil {
		return 0, fmt.Errorf("gorm store: count users: %w", errCount)
	}
	return count, nil
}

type gormBalances struct{ db *gorm.DB }

func (r gormBalances) Create(ctx context.Context, balance *models.Balance) error {
	if errValidate := balance.Validate(); errValidate != nil {
		return errValidate
	}
	if errCreate := r.db.WithContext(ctx).Create(balance).Error; errCreate != nil {
		if errors.Is(errCreate, market.ErrNegativeBalance) {
			return errCreate
		}
		return fmt.Errorf("gorm store: create balance: %w", errCreate)
	}
	return nil
}

func (r gormBalances) Get(ctx context.Context, userID uint64) (*models.Balance, error) {
	var balance models.Balance
	if errFind := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error; errFind != nil {
		return nil, notFound(errFind, "balance", userID)
	}
	return &balance, nil
}

func (r gormBalances) GetForUpdate(ctx context.Context, userID uint64) (*models.Balance, error) {
	var balance models.Balance
	if errFind := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&balance).Error; errFind != nil {
		return nil, notFound(errFind, "balance", userID)
	}
	return &balance, nil
}

func (r gormBalances) Save(ctx context.Context, balance *models.Balance) error {
	if errValidate := balance.Validate(); errValidate != nil {
		return errValidate
	}
	if errSave := r.db.WithContext(ctx).Save(balance).Error; errSave != nil {
		if errors.Is(errSave, market.ErrNegativeBalance) {
			return errSave
		}
		return fmt.Errorf("gorm store: save balance: %w", errSave)
	}
	return nil
}

type gormCourses struct{ db *gorm.DB }

func (r gormCourses) Create(ctx context.Context, course *models.Course) error {
	if errCreate := r.db.WithContext(ctx).Omit(clause.Associations).Create(course).Error; errCreate != nil {
		return fmt.Errorf("gorm store: create course: %w", errCreate)
	}
	return nil
}

func (r gormCourses) Get(ctx context.Context, id uint64) (*models.Course, error) {
	var course models.Course
	if errFind := r.db.WithContext(ctx).First(&course, id).Error; errFind != nil {
		return nil, notFound(errFind, "course", id)
	}
	return &course, nil
}

func (r gormCourses) List(ctx context.Context) ([]models.Course, error) {
	var rows []models.Course
	if errFind := r.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("gorm store: list courses: %w", errFind)
	}
	return rows, nil
}

func (r gormCourses) Search(ctx context.Context, query string) ([]models.Course, error) {
	pattern := "%" + dbutil.NormalizeLikePattern(r.db, strings.TrimSpace(query)) + "%"
	var rows []models.Course
	if errFind := r.db.WithContext(ctx).
		Where(dbutil.CaseInsensitiveLikeExpr(r.db, "title")+" OR "+dbutil.CaseInsensitiveLikeExpr(r.db, "author"), pattern, pattern).
		Order("id DESC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("gorm store: search courses: %w", errFind)
	}
	return rows, nil
}

func (r gormCourses) ListAvailable(ctx context.Context, viewerID uint64) ([]models.Course, error) {
	subscribed := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Select("course_id").
		Where("student_id = ?", viewerID)

	var rows []models.Course
	if errFind := r.db.WithContext(ctx).
		Where("is_active = ? OR id NOT IN (?)", true, subscribed).
		Order("id DESC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("gorm store: list available courses: %w", errFind)
	}
	return rows, nil
}

func (r gormCourses) Update(ctx context.Context, course *models.Course) error {
	res := r.db.WithContext(ctx).
		Model(course).
		Select("author", "title", "start_date", "price", "is_active", "updated_at").
		Updates(course)
	if res.Error != nil {
		return fmt.Errorf("gorm store: update course: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return market.NewNotFound("course", course.ID)
	}
	return nil
}

func (r gormCourses) Delete(ctx context.Context, id uint64) error {
	tx := r.db.WithContext(ctx)
	groupIDs := tx.Model(&models.Group{}).Select("id").Where("course_id = ?", id)
	if errDelete := tx.Where("group_id IN (?)", groupIDs).Delete(&models.GroupEnrollment{}).Error; errDelete != nil {
		return fmt.Errorf("gorm store: delete group enrollments: %w", errDelete)
	}
	if errDelete := tx.Where("course_id = ?", id).Delete(&models.Group{}).Error; errDelete != nil {
		return fmt.Errorf("gorm store: delete groups: %w", errDelete)
	}
	if errDelete := tx.Where("course_id = ?", id).Delete(&models.Lesson{}).Error; errDelete != nil {
		return fmt.Errorf("gorm store: delete lessons: %w", errDelete)
	}
	if errDelete := tx.Where("course_id = ?", id).Delete(&models.Subscription{}).Error; errDelete != nil {
		return fmt.Errorf("gorm store: delete subscriptions: %w", errDelete)
	}
	res := tx.Delete(&models.Course{}, id)
	if res.Error != nil {
		return fmt.Errorf("gorm store: delete course: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return market.NewNotFound("course", id)
	}
	return nil
}

type gormLessons struct{ db *gorm.DB }

func (r gormLessons) Create(ctx context.Context, lesson *models.Lesson) error {
	if errCreate := r.db.WithContext(ctx).Create(lesson).Error; errCreate != nil {
		return fmt.Errorf("gorm store: create lesson: %w", errCreate)
	}
	return nil
}

func (r gormLessons) ListByCourse(ctx context.Context, courseID uint64) ([]models.Lesson, error) {
	var rows []models.Lesson
	if errFind := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("gorm store: list lessons: %w", errFind)
	}
	return rows, nil
}

func (r gormLessons) CountByCourse(ctx context.Context, courseID uint64) (int64, error) {
	var count int64
	if errCount := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; errCount != nil {
		return 0, fmt.Errorf("gorm store: count lessons: %w", errCount)
	}
	return count, nil
}

type gormGroups struct{ db *gorm.DB }

func (r gormGroups) CreateBatch(ctx context.Context, groups []models.Group) error {
	if len(groups) == 0 {
		return nil
	}
	if errCreate := r.db.WithContext(ctx).Create(&groups).Error; errCreate != nil {
		return fmt.Errorf("gorm store: create groups: %w", errCreate)
	}
	return nil
}

func (r gormGroups) ListByCourse(ctx context.Context, courseID uint64) ([]models.Group, error) {
	var rows []models.Group
	if errFind := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("group_number ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("gorm store: list groups: %w", errFind)
	}
	return rows, nil
}

func (r gormGroups) LockByCourse(ctx context.Context, courseID uint64) ([]models.Group, error) {
	var rows []models.Group
	if errFind := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("course_id = ?", courseID).
		Order("group_number ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("gorm store: lock groups: %w", errFind)
	}
	return rows, nil
}

// groupMembers is the row shape of the member count aggregate.
type groupMembers struct {
	GroupID uint64 `gorm:"column:group_id"`
	Members int64  `gorm:"column:members"`
}

func (r gormGroups) MemberCounts(ctx context.Context, courseID uint64) (map[uint64]int64, error) {
	var rows []groupMembers
	if errScan := r.db.WithContext(ctx).
		Table("course_groups").
		Select("course_groups.id AS group_id, COUNT(group_enrollments.id) AS members").
		Joins("LEFT JOIN group_enrollments ON group_enrollments.group_id = course_groups.id").
		Where("course_groups.course_id = ?", courseID).
		Group("course_groups.id").
		Scan(&rows).Error; errScan != nil {
		return nil, fmt.Errorf("gorm store: count group members: %w", errScan)
	}
	counts := make(map[uint64]int64, len(rows))
	for _, row := range rows {
		counts[row.GroupID] = row.Members
	}
	return counts, nil
}

type gormSubscriptions struct{ db *gorm.DB }

func (r gormSubscriptions) Create(ctx context.Context, sub *models.Subscription) error {
	if errCreate := r.db.WithContext(ctx).Create(sub).Error; errCreate != nil {
		if dbutil.IsUniqueViolation(errCreate) {
			return market.ErrAlreadyEnrolled
		}
		return fmt.Errorf("gorm store: create subscription: %w", errCreate)
	}
	return nil
}

func (r gormSubscriptions) Exists(ctx context.Context, studentID, courseID uint64) (bool, error) {
	var count int64
	if errCount := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error; errCount != nil {
		return false, fmt.Errorf("gorm store: check subscription: %w", errCount)
	}
	return count > 0, nil
}

func (r gormSubscriptions) CountByCourse(ctx context.Context, courseID uint64) (int64, error) {
	var count int64
	if errCount := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; errCount != nil {
		return 0, fmt.Errorf("gorm store: count subscriptions: %w", errCount)
	}
	return count, nil
}

func (r gormSubscriptions) ListStudents(ctx context.Context, courseID uint64) ([]models.User, error) {
	var rows []models.User
	if errFind := r.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.student_id = users.id").
		Where("subscriptions.course_id = ?", courseID).
		Order("subscriptions.id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("gorm store: list students: %w", errFind)
	}
	return rows, nil
}

type gormEnrollments struct{ db *gorm.DB }

func (r gormEnrollments) Create(ctx context.Context, enrollment *models.GroupEnrollment) error {
	if errCreate := r.db.WithContext(ctx).Create(enrollment).Error; errCreate != nil {
		return fmt.Errorf("gorm store: create group enrollment: %w", errCreate)
	}
	return nil
}

func (r gormEnrollments) ListByCourse(ctx context.Context, courseID uint64) ([]models.GroupEnrollment, error) {
	var rows []models.GroupEnrollment
	if errFind := r.db.WithContext(ctx).
		Joins("JOIN course_groups ON course_groups.id = group_enrollments.group_id").
		Where("course_groups.course_id = ?", courseID).
		Order("group_enrollments.id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("gorm store: list group enrollments: %w", errFind)
	}
	return rows, nil
}
