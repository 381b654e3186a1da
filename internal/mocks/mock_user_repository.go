package mocks

import (
	"context"

	"github.com/ranjith-devop/smart-medication/domain"
)

// MockUserRepository implements domain.UserRepository for testing
type MockUserRepository struct {
	UpsertByPhoneFunc    func(ctx context.Context, phone string) (*domain.User, error)
	UpsertByEmailFunc    func(ctx context.Context, email string) (*domain.User, error)
	CreateFunc           func(ctx context.Context, user *domain.User) error
	FindByIDFunc         func(ctx context.Context, id string) (*domain.User, error)
	FindByEmailFunc      func(ctx context.Context, email string) (*domain.User, error)
	FindByPhoneFunc      func(ctx context.Context, phone string) (*domain.User, error)
	FindByGoogleIDFunc   func(ctx context.Context, googleID string) (*domain.User, error)
	FindByIdentifierFunc func(ctx context.Context, identifier string) (*domain.User, error)
	SetOTPFunc           func(ctx context.Context, id string, otp *domain.OTPChallenge) error
	MarkVerifiedFunc     func(ctx context.Context, id string, ch domain.Channel) error
	UpdateFunc           func(ctx context.Context, user *domain.User) error
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) UpsertByPhone(ctx context.Context, phone string) (*domain.User, error) {
	if m.UpsertByPhoneFunc != nil {
		return m.UpsertByPhoneFunc(ctx, phone)
	}
	return &domain.User{ID: "000000000000000000000001", PhoneNumber: phone, Role: domain.RolePatient}, nil
}

func (m *MockUserRepository) UpsertByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.UpsertByEmailFunc != nil {
		return m.UpsertByEmailFunc(ctx, email)
	}
	return &domain.User{ID: "000000000000000000000001", Email: email, Role: domain.RolePatient}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	if user.ID == "" {
		user.ID = "000000000000000000000001"
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, phone)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	if m.FindByGoogleIDFunc != nil {
		return m.FindByGoogleIDFunc(ctx, googleID)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	if m.FindByIdentifierFunc != nil {
		return m.FindByIdentifierFunc(ctx, identifier)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) SetOTP(ctx context.Context, id string, otp *domain.OTPChallenge) error {
	if m.SetOTPFunc != nil {
		return m.SetOTPFunc(ctx, id, otp)
	}
	return nil
}

func (m *MockUserRepository) MarkVerified(ctx context.Context, id string, ch domain.Channel) error {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, id, ch)
	}
	return nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}
