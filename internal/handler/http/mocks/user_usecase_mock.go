package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
)

const (
	MockUserID      = "64b7f0c2a1b2c3d4e5f60001"
	MockValidToken  = "valid-token"
	MockAccessToken = "mock_access_token"
)

// MockUserUsecase is a mock implementation of the UserUsecase interface
type MockUserUsecase struct {
	// Control mock behavior
	ShouldFailRegister      bool
	ShouldFailLogin         bool
	ShouldFailAuthenticate  bool
	ShouldFailGetProfile    bool
	ShouldFailSearch        bool
	ShouldFailUpdateProfile bool

	// Return values
	MockUser  entity.User
	MockPosts []*entity.Post

	// Captured arguments
	LastUpdate usecasecontract.ProfileUpdate
}

// Ensure MockUserUsecase implements the correct interface for handler.NewUserHandler
var _ usecasecontract.IUserUseCase = (*MockUserUsecase)(nil)

func NewMockUserUsecase() *MockUserUsecase {
	return &MockUserUsecase{
		MockUser: entity.User{
			ID:        MockUserID,
			Name:      "Test User",
			Email:     "test@example.com",
			Photos:    []string{},
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func (m *MockUserUsecase) Register(ctx context.Context, name, email, password string) (*entity.User, string, error) {
	if m.ShouldFailRegister {
		return nil, "", apperror.Conflict(apperror.CodeAuthEmailTaken, "email is already in use")
	}
	u := m.MockUser
	u.Name, u.Email = name, email
	return &u, MockAccessToken, nil
}

func (m *MockUserUsecase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	if m.ShouldFailLogin {
		return nil, "", apperror.Unauthorized(apperror.CodeAuthInvalidCredentials, "invalid email or password")
	}
	return &m.MockUser, MockAccessToken, nil
}

// Authenticate accepts MockValidToken only.
func (m *MockUserUsecase) Authenticate(ctx context.Context, bearerToken string) (*entity.User, error) {
	if m.ShouldFailAuthenticate {
		return nil, errors.New("identity provider unreachable")
	}
	if bearerToken != MockValidToken {
		return nil, apperror.Unauthorized(apperror.CodeAuthInvalidToken, "invalid or expired token")
	}
	return &m.MockUser, nil
}

func (m *MockUserUsecase) GetProfile(ctx context.Context, userID string) (*usecasecontract.Profile, error) {
	if m.ShouldFailGetProfile {
		return nil, apperror.NotFound(apperror.CodeUserNotFound, "user", userID)
	}
	u := m.MockUser
	u.ID = userID
	return &usecasecontract.Profile{User: &u, Posts: m.MockPosts}, nil
}

func (m *MockUserUsecase) GetUserByID(ctx context.Context, userID string) (*entity.User, error) {
	if m.ShouldFailGetProfile {
		return nil, apperror.NotFound(apperror.CodeUserNotFound, "user", userID)
	}
	return &m.MockUser, nil
}

func (m *MockUserUsecase) SearchUsers(ctx context.Context, query string) ([]*entity.User, error) {
	if m.ShouldFailSearch {
		return nil, apperror.Internal(apperror.CodeUserServerError, errors.New("database is down"))
	}
	if query == "" {
		return nil, apperror.Validation(apperror.CodeSearchInvalidQuery, "query is required")
	}
	return []*entity.User{&m.MockUser}, nil
}

func (m *MockUserUsecase) UpdateProfile(ctx context.Context, userID string, update usecasecontract.ProfileUpdate) (*entity.User, error) {
	m.LastUpdate = update
	if m.ShouldFailUpdateProfile {
		return nil, apperror.Validation(apperror.CodeUserInvalidPhoto, "photo must be one of your profile images")
	}
	u := m.MockUser
	if update.Name != nil {
		u.Name = *update.Name
	}
	return &u, nil
}
