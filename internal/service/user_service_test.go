package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blogapp/internal/auth"
	apperrors "blogapp/internal/errors"
	"blogapp/internal/model"
)

func newTestHasher() *auth.BcryptHasher {
	return auth.NewBcryptHasherWithCost(4)
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		email         string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			username: "alice",
			email:    "a@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(nil, nil)
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:     "duplicate username",
			username: "alice",
			email:    "other@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(&model.User{ID: 1, Username: "alice"}, nil)
			},
			expectedError: apperrors.ErrDuplicateUsername,
		},
		{
			name:     "duplicate email",
			username: "bob",
			email:    "a@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "bob").Return(nil, nil)
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{ID: 1, Email: "a@x.com"}, nil)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
		{
			name:     "concurrent registration lost the unique index race",
			username: "carol",
			email:    "c@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "carol").Return(nil, nil)
				m.On("FindByEmail", mock.Anything, "c@x.com").Return(nil, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(apperrors.ErrDuplicateEmail)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewUserService(mockRepo, newTestHasher(), nil, "")
			user, err := svc.Register(context.Background(), tt.username, tt.email, "pw1")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.username, user.Username)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, model.DefaultAvatar, user.AvatarPath)
				assert.NotEqual(t, "pw1", user.PasswordHash)
				assert.True(t, newTestHasher().Verify(user.PasswordHash, "pw1"))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Register_RepositoryFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", mock.Anything, "alice").Return(nil, errors.New("db down"))

	svc := NewUserService(mockRepo, newTestHasher(), nil, "")
	_, err := svc.Register(context.Background(), "alice", "a@x.com", "pw1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrDuplicateUsername)
}

func TestUserService_Register_PasswordTooLong(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", mock.Anything, "alice").Return(nil, nil)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, nil)

	svc := NewUserService(mockRepo, newTestHasher(), nil, "")
	user, err := svc.Register(context.Background(), "alice", "a@x.com", strings.Repeat("p", 73))
	assert.Nil(t, user)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")

	httpErr := apperrors.MapErrorToHTTP(err)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", httpErr.Code)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_FindByEmail_AbsentIsNotError(t *testing.T) {
	email := gofakeit.Email()
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, email).Return(nil, nil)

	svc := NewUserService(mockRepo, newTestHasher(), nil, "")
	user, err := svc.FindByEmail(context.Background(), email)
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(9)).Return(nil, nil)

	svc := NewUserService(mockRepo, newTestHasher(), nil, "")
	_, err := svc.GetUser(context.Background(), 9)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_UpdateProfile(t *testing.T) {
	alice := func() *model.User { return &model.User{ID: 1, Username: "alice", Email: "a@x.com"} }

	tests := []struct {
		name          string
		username      string
		email         string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "no-op keeps own values",
			username: "alice",
			email:    "a@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(alice(), nil)
			},
		},
		{
			name:     "rename to free username",
			username: "alicia",
			email:    "a@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(alice(), nil)
				m.On("FindByUsername", mock.Anything, "alicia").Return(nil, nil)
				m.On("UpdateProfile", mock.Anything, uint(1), "alicia", "a@x.com").Return(nil)
			},
		},
		{
			name:     "username taken by another user",
			username: "bob",
			email:    "a@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(alice(), nil)
				m.On("FindByUsername", mock.Anything, "bob").Return(&model.User{ID: 2, Username: "bob"}, nil)
			},
			expectedError: apperrors.ErrDuplicateUsername,
		},
		{
			name:     "email taken by another user",
			username: "alice",
			email:    "b@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(alice(), nil)
				m.On("FindByEmail", mock.Anything, "b@x.com").Return(&model.User{ID: 2, Email: "b@x.com"}, nil)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
		{
			name:     "unknown user",
			username: "alice",
			email:    "a@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(nil, nil)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewUserService(mockRepo, newTestHasher(), nil, "")
			user, err := svc.UpdateProfile(context.Background(), 1, tt.username, tt.email)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.username, user.Username)
				assert.Equal(t, tt.email, user.Email)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
