package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/artisanhub/backend/internal/models"
	"github.com/artisanhub/backend/internal/pkg/apperror"
	"github.com/artisanhub/backend/internal/repository"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockAuthRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newAuthService(repo *mockAuthRepo) *AuthService {
	tm := NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 720*time.Hour)
	return NewAuthService(repo, tm)
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ama@example.com").Return(nil, repository.ErrUserNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "ama@example.com",
		Password: "secret123",
		Name:     "Ama Mensah",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.RoleClient, result.User.Role)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ama@example.com").Return(&models.User{ID: uuid.New()}, nil)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "ama@example.com",
		Password: "secret123",
		Name:     "Ama Mensah",
	})
	assert.True(t, apperror.IsConflict(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_ArtisanNeedsServiceType(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "kwame@example.com",
		Password: "secret123",
		Name:     "Kwame Asante",
		Role:     models.RoleArtisan,
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_Register_AdminRoleRejected(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "root@example.com",
		Password: "secret123",
		Name:     "Root",
		Role:     models.RoleAdmin,
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("right-password1"), bcrypt.MinCost)
	repo.On("GetByEmail", ctx, "ama@example.com").Return(&models.User{
		ID:           uuid.New(),
		Email:        "ama@example.com",
		PasswordHash: string(hash),
	}, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "ama@example.com", Password: "wrong-password1"})
	assert.Error(t, err)
	assert.Equal(t, 401, apperror.HTTPStatus(err))
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)
	ctx := context.Background()

	userID := uuid.New()
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	repo.On("GetByEmail", ctx, "ama@example.com").Return(&models.User{
		ID:           userID,
		Email:        "ama@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleClient,
	}, nil)
	repo.On("UpdateLastLoginAt", ctx, userID).Return(nil)

	result, err := svc.Login(ctx, LoginInput{Email: "ama@example.com", Password: "secret123"})
	assert.NoError(t, err)
	assert.Equal(t, userID, result.User.ID)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)

	_, err := svc.Refresh(context.Background(), "garbage")
	assert.Error(t, err)
	assert.Equal(t, 401, apperror.HTTPStatus(err))
}

func TestAuthService_Refresh_RoundTrip(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := newAuthService(repo)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Role: models.RoleClient}
	pair, err := svc.tokenManager.GeneratePair(user)
	assert.NoError(t, err)

	repo.On("GetByID", ctx, user.ID).Return(user, nil)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
}
