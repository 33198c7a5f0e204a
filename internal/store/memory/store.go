// Package memory provides an in-process store.Store used by tests and local
// tooling. Transactions are serialized and roll back by restoring a snapshot.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/router-for-me/CourseMarket/internal/market"
	"github.com/router-for-me/CourseMarket/internal/models"
	"github.com/router-for-me/CourseMarket/internal/store"
)

type state struct {
	seq uint64

	users         map[uint64]models.User
	balances      map[uint64]models.Balance // keyed by user ID
	courses       map[uint64]models.Course
	lessons       map[uint64]models.Lesson
	groups        map[uint64]models.Group
	subscriptions map[uint64]models.Subscription
	enrollments   map[uint64]models.GroupEnrollment
}

func newState() *state {
	return &state{
		users:         make(map[uint64]models.User),
		balances:      make(map[uint64]models.Balance),
		courses:       make(map[uint64]models.Course),
		lessons:       make(map[uint64]models.Lesson),
		groups:        make(map[uint64]models.Group),
		subscriptions: make(map[uint64]models.Subscription),
		enrollments:   make(map[uint64]models.GroupEnrollment),
	}
}

func (s *state) clone() *state {
	out := newState()
	out.seq = s.seq
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.balances {
		out.balances[k] = v
	}
	for k, v := range s.courses {
		out.courses[k] = v
	}
	for k, v := range s.lessons {
		out.lessons[k] = v
	}
	for k, v := range s.groups {
		out.groups[k] = v
	}
	for k, v := range s.subscriptions {
		out.subscriptions[k] = v
	}
	for k, v := range s.enrollments {
		out.enrollments[k] = v
	}
	return out
}

func (s *state) nextID() uint64 {
	s.seq++
	return s.seq
}

// Store is a goroutine-safe in-memory store.Store. Calls made outside a
// transaction wait for any running transaction, so a rollback never discards
// them.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data *state
	now  func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		data: newState(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the user repository.
func (s *Store) Users() store.UserRepository { return users{scope{Store: s}} }

// Balances returns the balance repository.
func (s *Store) Balances() store.BalanceRepository { return balances{scope{Store: s}} }

// Courses returns the course repository.
func (s *Store) Courses() store.CourseRepository { return courses{scope{Store: s}} }

// Lessons returns the lesson repository.
func (s *Store) Lessons() store.LessonRepository { return lessons{scope{Store: s}} }

// Groups returns the group repository.
func (s *Store) Groups() store.GroupRepository { return groups{scope{Store: s}} }

// Subscriptions returns the subscription repository.
func (s *Store) Subscriptions() store.SubscriptionRepository { return subscriptions{scope{Store: s}} }

// Enrollments returns the group enrollment repository.
func (s *Store) Enrollments() store.EnrollmentRepository { return enrollments{scope{Store: s}} }

// Transaction runs fn while holding the store-wide transaction lock. When fn
// returns an error every write made during the call is discarded.
func (s *Store) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	if errCtx := ctx.Err(); errCtx != nil {
		return errCtx
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if errTx := fn(txScope{s}); errTx != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return errTx
	}
	return nil
}

// txScope is the Store handed to transaction callbacks; nested transactions join.
type txScope struct{ *Store }

func (t txScope) Transaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(t)
}

func (t txScope) Users() store.UserRepository { return users{t.scope()} }

func (t txScope) Balances() store.BalanceRepository { return balances{t.scope()} }

func (t txScope) Courses() store.CourseRepository { return courses{t.scope()} }

func (t txScope) Lessons() store.LessonRepository { return lessons{t.scope()} }

func (t txScope) Groups() store.GroupRepository { return groups{t.scope()} }

func (t txScope) Subscriptions() store.SubscriptionRepository { return subscriptions{t.scope()} }

func (t txScope) Enrollments() store.EnrollmentRepository { return enrollments{t.scope()} }

func (t txScope) scope() scope { return scope{Store: t.Store, inTx: true} }

// scope binds repositories to the store; outside a transaction each call
// holds txMu for its duration.
type scope struct {
	*Store
	inTx bool
}

func (sc scope) locked(fn func(d *state) error) error {
	if !sc.inTx {
		sc.txMu.Lock()
		defer sc.txMu.Unlock()
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return fn(sc.data)
}

type users struct{ s scope }

func (r users) Create(_ context.Context, user *models.User) error {
	return r.s.locked(func(d *state) error {
		for _, existing := range d.users {
			if existing.Email == user.Email {
				return market.ErrEmailTaken
			}
		}
		now := r.s.now()
		user.ID = d.nextID()
		user.CreatedAt = now
		user.UpdatedAt = now
		row := *user
		row.Balance = nil
		d.users[user.ID] = row
		return nil
	})
}

func (r users) Get(_ context.Context, id uint64) (*models.User, error) {
	var out models.User
	err := r.s.locked(func(d *state) error {
		row, ok := d.users[id]
		if !ok {
			return market.NewNotFound("user", id)
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	var out models.User
	err := r.s.locked(func(d *state) error {
		for _, row := range d.users {
			if row.Email == email {
				out = row
				return nil
			}
		}
		return market.NewNotFound("user", 0)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r users) Count(_ context.Context) (int64, error) {
	var n int64
	_ = r.s.locked(func(d *state) error {
		n = int64(len(d.users))
		return nil
	})
	return n, nil
}

type balances struct{ s scope }

func (r balances) Create(_ context.Context, balance *models.Balance) error {
	if errValidate := balance.Validate(); errValidate != nil {
		return errValidate
	}
	return r.s.locked(func(d *state) error {
		if _, ok := d.users[balance.UserID]; !ok {
			return fmt.Errorf("memory store: balance references missing user %d", balance.UserID)
		}
		if _, ok := d.balances[balance.UserID]; ok {
			return fmt.Errorf("memory store: balance for user %d already exists", balance.UserID)
		}
		now := r.s.now()
		balance.ID = d.nextID()
		balance.CreatedAt = now
		balance.UpdatedAt = now
		d.balances[balance.UserID] = *balance
		return nil
	})
}

func (r balances) Get(_ context.Context, userID uint64) (*models.Balance, error) {
	var out models.Balance
	err := r.s.locked(func(d *state) error {
		row, ok := d.balances[userID]
		if !ok {
			return market.NewNotFound("balance", userID)
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate is Get; the transaction lock already excludes other writers.
func (r balances) GetForUpdate(ctx context.Context, userID uint64) (*models.Balance, error) {
	return r.Get(ctx, userID)
}

func (r balances) Save(_ context.Context, balance *models.Balance) error {
	if errValidate := balance.Validate(); errValidate != nil {
		return errValidate
	}
	return r.s.locked(func(d *state) error {
		existing, ok := d.balances[balance.UserID]
		if !ok {
			return market.NewNotFound("balance", balance.UserID)
		}
		balance.ID = existing.ID
		balance.CreatedAt = existing.CreatedAt
		balance.UpdatedAt = r.s.now()
		d.balances[balance.UserID] = *balance
		return nil
	})
}

type courses struct{ s scope }

func (r courses) Create(_ context.Context, course *models.Course) error {
	return r.s.locked(func(d *state) error {
		now := r.s.now()
		course.ID = d.nextID()
		course.CreatedAt = now
		course.UpdatedAt = now
		row := *course
		row.Lessons = nil
		row.Groups = nil
		d.courses[course.ID] = row
		return nil
	})
}

func (r courses) Get(_ context.Context, id uint64) (*models.Course, error) {
	var out models.Course
	err := r.s.locked(func(d *state) error {
		row, ok := d.courses[id]
		if !ok {
			return market.NewNotFound("course", id)
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r courses) List(_ context.Context) ([]models.Course, error) {
	var out []models.Course
	_ = r.s.locked(func(d *state) error {
		for _, row := range d.courses {
			out = append(out, row)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r courses) Search(_ context.Context, query string) ([]models.Course, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	var out []models.Course
	_ = r.s.locked(func(d *state) error {
		for _, row := range d.courses {
			if strings.Contains(strings.ToLower(row.Title), needle) || strings.Contains(strings.ToLower(row.Author), needle) {
				out = append(out, row)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r courses) ListAvailable(_ context.Context, viewerID uint64) ([]models.Course, error) {
	var out []models.Course
	_ = r.s.locked(func(d *state) error {
		subscribed := make(map[uint64]bool)
		for _, sub := range d.subscriptions {
			if sub.StudentID == viewerID {
				subscribed[sub.CourseID] = true
			}
		}
		for _, row := range d.courses {
			if row.IsActive || !subscribed[row.ID] {
				out = append(out, row)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r courses) Update(_ context.Context, course *models.Course) error {
	return r.s.locked(func(d *state) error {
		existing, ok := d.courses[course.ID]
		if !ok {
			return market.NewNotFound("course", course.ID)
		}
		existing.Author = course.Author
		existing.Title = course.Title
		existing.StartDate = course.StartDate
		existing.Price = course.Price
		existing.IsActive = course.IsActive
		existing.UpdatedAt = r.s.now()
		d.courses[course.ID] = existing
		course.CreatedAt = existing.CreatedAt
		course.UpdatedAt = existing.UpdatedAt
		return nil
	})
}

func (r courses) Delete(_ context.Context, id uint64) error {
	return r.s.locked(func(d *state) error {
		if _, ok := d.courses[id]; !ok {
			return market.NewNotFound("course", id)
		}
		for groupID, group := range d.groups {
			if group.CourseID != id {
				continue
			}
			for enrollmentID, enrollment := range d.enrollments {
				if enrollment.GroupID == groupID {
					delete(d.enrollments, enrollmentID)
				}
			}
			delete(d.groups, groupID)
		}
		for lessonID, lesson := range d.lessons {
			if lesson.CourseID == id {
				delete(d.lessons, lessonID)
			}
		}
		for subID, sub := range d.subscriptions {
			if sub.CourseID == id {
				delete(d.subscriptions, subID)
			}
		}
		delete(d.courses, id)
		return nil
	})
}

type lessons struct{ s scope }

func (r lessons) Create(_ context.Context, lesson *models.Lesson) error {
	return r.s.locked(func(d *state) error {
		if _, ok := d.courses[lesson.CourseID]; !ok {
			return market.NewNotFound("course", lesson.CourseID)
		}
		now := r.s.now()
		lesson.ID = d.nextID()
		lesson.CreatedAt = now
		lesson.UpdatedAt = now
		d.lessons[lesson.ID] = *lesson
		return nil
	})
}

func (r lessons) ListByCourse(_ context.Context, courseID uint64) ([]models.Lesson, error) {
	var out []models.Lesson
	_ = r.s.locked(func(d *state) error {
		for _, row := range d.lessons {
			if row.CourseID == courseID {
				out = append(out, row)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r lessons) CountByCourse(ctx context.Context, courseID uint64) (int64, error) {
	rows, err := r.ListByCourse(ctx, courseID)
	return int64(len(rows)), err
}

type groups struct{ s scope }

func (r groups) CreateBatch(_ context.Context, batch []models.Group) error {
	return r.s.locked(func(d *state) error {
		for i := range batch {
			for _, existing := range d.groups {
				if existing.CourseID == batch[i].CourseID && existing.GroupNumber == batch[i].GroupNumber {
					return fmt.Errorf("memory store: group %d already exists for course %d",
						batch[i].GroupNumber, batch[i].CourseID)
				}
			}
			batch[i].ID = d.nextID()
			batch[i].CreatedAt = r.s.now()
			row := batch[i]
			row.Enrollments = nil
			d.groups[row.ID] = row
		}
		return nil
	})
}

func (r groups) ListByCourse(_ context.Context, courseID uint64) ([]models.Group, error) {
	var out []models.Group
	_ = r.s.locked(func(d *state) error {
		for _, row := range d.groups {
			if row.CourseID == courseID {
				out = append(out, row)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].GroupNumber < out[j].GroupNumber })
	return out, nil
}

func (r groups) LockByCourse(ctx context.Context, courseID uint64) ([]models.Group, error) {
	return r.ListByCourse(ctx, courseID)
}

func (r groups) MemberCounts(_ context.Context, courseID uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64)
	_ = r.s.locked(func(d *state) error {
		for id, row := range d.groups {
			if row.CourseID == courseID {
				counts[id] = 0
			}
		}
		for _, enrollment := range d.enrollments {
			if _, ok := counts[enrollment.GroupID]; ok {
				counts[enrollment.GroupID]++
			}
		}
		return nil
	})
	return counts, nil
}

type subscriptions struct{ s scope }

func (r subscriptions) Create(_ context.Context, sub *models.Subscription) error {
	return r.s.locked(func(d *state) error {
		for _, existing := range d.subscriptions {
			if existing.StudentID == sub.StudentID && existing.CourseID == sub.CourseID {
				return market.ErrAlreadyEnrolled
			}
		}
		sub.ID = d.nextID()
		d.subscriptions[sub.ID] = *sub
		return nil
	})
}

func (r subscriptions) Exists(_ context.Context, studentID, courseID uint64) (bool, error) {
	found := false
	_ = r.s.locked(func(d *state) error {
		for _, existing := range d.subscriptions {
			if existing.StudentID == studentID && existing.CourseID == courseID {
				found = true
				break
			}
		}
		return nil
	})
	return found, nil
}

func (r subscriptions) CountByCourse(_ context.Context, courseID uint64) (int64, error) {
	var n int64
	_ = r.s.locked(func(d *state) error {
		for _, sub := range d.subscriptions {
			if sub.CourseID == courseID {
				n++
			}
		}
		return nil
	})
	return n, nil
}

func (r subscriptions) ListStudents(_ context.Context, courseID uint64) ([]models.User, error) {
	var out []models.User
	_ = r.s.locked(func(d *state) error {
		var subs []models.Subscription
		for _, sub := range d.subscriptions {
			if sub.CourseID == courseID {
				subs = append(subs, sub)
			}
		}
		sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
		for _, sub := range subs {
			if user, ok := d.users[sub.StudentID]; ok {
				out = append(out, user)
			}
		}
		return nil
	})
	return out, nil
}

type enrollments struct{ s scope }

func (r enrollments) Create(_ context.Context, enrollment *models.GroupEnrollment) error {
	return r.s.locked(func(d *state) error {
		if _, ok := d.groups[enrollment.GroupID]; !ok {
			return fmt.Errorf("memory store: enrollment references missing group %d", enrollment.GroupID)
		}
		for _, existing := range d.enrollments {
			if existing.GroupID == enrollment.GroupID && existing.StudentID == enrollment.StudentID {
				return fmt.Errorf("memory store: student %d already in group %d",
					enrollment.StudentID, enrollment.GroupID)
			}
		}
		enrollment.ID = d.nextID()
		enrollment.CreatedAt = r.s.now()
		d.enrollments[enrollment.ID] = *enrollment
		return nil
	})
}

func (r enrollments) ListByCourse(_ context.Context, courseID uint64) ([]models.GroupEnrollment, error) {
	var out []models.GroupEnrollment
	_ = r.s.locked(func(d *state) error {
		for _, row := range d.enrollments {
			if group, ok := d.groups[row.GroupID]; ok && group.CourseID == courseID {
				out = append(out, row)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
