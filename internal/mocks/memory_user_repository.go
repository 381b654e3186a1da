package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/ranjith-devop/smart-medication/domain"
)

// MemoryUserRepository is a map-backed domain.UserRepository with the same
// uniqueness and upsert semantics as the Mongo implementation. It backs the
// stateful flow tests the way an in-memory store backs the teacher-style
// repository tests.
type MemoryUserRepository struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*domain.User)}
}

// Count returns the number of stored records.
func (r *MemoryUserRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *MemoryUserRepository) UpsertByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.upsert(func(u *domain.User) bool { return u.PhoneNumber == phone },
		&domain.User{PhoneNumber: phone, Role: domain.RolePatient})
}

func (r *MemoryUserRepository) UpsertByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.upsert(func(u *domain.User) bool { return u.Email == email },
		&domain.User{Email: email, Role: domain.RolePatient})
}

func (r *MemoryUserRepository) upsert(match func(*domain.User) bool, fresh *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	fresh.ID = r.allocID()
	r.users[fresh.ID] = copyUser(fresh)
	return fresh, nil
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkUnique(user, ""); err != nil {
		return err
	}
	user.ID = r.allocID()
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email != "" && u.Email == email })
}

func (r *MemoryUserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.PhoneNumber != "" && u.PhoneNumber == phone })
}

func (r *MemoryUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.GoogleID != "" && u.GoogleID == googleID })
}

func (r *MemoryUserRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool {
		return (u.PhoneNumber != "" && u.PhoneNumber == identifier) || (u.Email != "" && u.Email == identifier)
	})
}

func (r *MemoryUserRepository) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *MemoryUserRepository) SetOTP(ctx context.Context, id string, otp *domain.OTPChallenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	c := *otp
	u.OTP = &c
	return nil
}

func (r *MemoryUserRepository) MarkVerified(ctx context.Context, id string, ch domain.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if ch == domain.ChannelEmail {
		u.IsEmailVerified = true
	} else {
		u.IsPhoneVerified = true
	}
	u.OTP = nil
	return nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	if err := r.checkUnique(user, user.ID); err != nil {
		return err
	}
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *MemoryUserRepository) checkUnique(user *domain.User, selfID string) error {
	for id, u := range r.users {
		if id == selfID {
			continue
		}
		if user.Email != "" && u.Email == user.Email {
			return domain.ErrIdentifierInUse
		}
		if user.PhoneNumber != "" && u.PhoneNumber == user.PhoneNumber {
			return domain.ErrIdentifierInUse
		}
		if user.GoogleID != "" && u.GoogleID == user.GoogleID {
			return domain.ErrIdentifierInUse
		}
	}
	return nil
}

func (r *MemoryUserRepository) allocID() string {
	r.nextID++
	return fmt.Sprintf("%024x", r.nextID)
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	if u.OTP != nil {
		otp := *u.OTP
		c.OTP = &otp
	}
	return &c
}
