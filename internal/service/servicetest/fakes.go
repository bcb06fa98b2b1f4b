// Package servicetest holds in-memory collaborators shared by service tests.
package servicetest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
)

// Users is a map-backed user.UserRepository.
type Users struct {
	mu    sync.Mutex
	byID  map[string]user.User
	seq   int
	Fails error // returned by every call when set
}

func NewUsers(users ...user.User) *Users {
	r := &Users{byID: make(map[string]user.User)}
	for _, u := range users {
		r.byID[u.ID] = u
	}
	return r
}

func (r *Users) Put(u user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = u
}

func (r *Users) Get(id string) user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id]
}

func (r *Users) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fails != nil {
		return user.User{}, r.Fails
	}
	for _, existing := range r.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	r.byID[u.ID] = u
	return u, nil
}

func (r *Users) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fails != nil {
		return user.User{}, r.Fails
	}
	u, ok := r.byID[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fails != nil {
		return user.User{}, r.Fails
	}
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *Users) List(_ context.Context, filter user.UserFilter) ([]user.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]user.User, 0)
	for _, u := range r.byID {
		if u.IsDeleted {
			continue
		}
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b user.User) int { return strings.Compare(a.FullName, b.FullName) })
	return out, int64(len(out)), nil
}

func (r *Users) Update(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return user.User{}, user.ErrUserNotFound
	}
	u.UpdatedAt = time.Now()
	r.byID[u.ID] = u
	return u, nil
}

func (r *Users) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = &passwordHash
	u.OTPSecret, u.OTPExpiresAt = nil, nil
	r.byID[userID] = u
	return nil
}

func (r *Users) SetOTP(_ context.Context, userID string, secret *string, expiresAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.OTPSecret, u.OTPExpiresAt = secret, expiresAt
	r.byID[userID] = u
	return nil
}

func (r *Users) SetDisabled(_ context.Context, userID string, disabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok || u.IsDeleted {
		return user.ErrUserNotFound
	}
	u.IsDisabled = disabled
	r.byID[userID] = u
	return nil
}

func (r *Users) SoftDelete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok || u.IsDeleted {
		return user.ErrUserNotFound
	}
	u.IsDeleted = true
	r.byID[userID] = u
	return nil
}

func (r *Users) ListActiveIDsByRoles(_ context.Context, roles ...user.Role) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0)
	for _, u := range r.byID {
		if u.Active() && (len(roles) == 0 || slices.Contains(roles, u.Role)) {
			ids = append(ids, u.ID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Notifier records every request it receives.
type Notifier struct {
	mu       sync.Mutex
	requests []notification.NotifyRequest
}

func (n *Notifier) Notify(_ context.Context, req notification.NotifyRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests = append(n.requests, req)
}

func (n *Notifier) Requests() []notification.NotifyRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.requests)
}

// Transactor runs fn inline; map-backed fakes need no isolation.
type Transactor struct {
	Calls int
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	return fn(ctx)
}

// Clock returns a fixed time that tests may move.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{t: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func Ptr[T any](v T) *T {
	return &v
}
