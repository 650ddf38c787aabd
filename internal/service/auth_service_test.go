package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
	"github.com/yourusername/mathquiz-api/pkg/auth"
)

func newTestAuthService(t *testing.T, playerRepo *MockPlayerRepository) *AuthService {
	t.Helper()
	jwtService, err := auth.NewJWTService("test-secret", 1)
	require.NoError(t, err)

	svc, err := NewAuthService(playerRepo, jwtService, "admin", "secret")
	require.NoError(t, err)
	return svc
}

func hashedPin(t *testing.T, pin string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	playerRepo := new(MockPlayerRepository)
	playerRepo.On("GetByName", "Петя").Return(nil, apperrors.ErrNotFound)
	playerRepo.On("Create", mock.AnythingOfType("*entity.Player")).Return(nil)

	svc := newTestAuthService(t, playerRepo)

	// Act
	player, err := svc.Register("Петя", 8, "1234")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Петя", player.Name)
	assert.Equal(t, 8, player.Age)
	playerRepo.AssertExpectations(t)
}

func TestAuthService_Register_NameTaken(t *testing.T) {
	// Arrange
	playerRepo := new(MockPlayerRepository)
	playerRepo.On("GetByName", "Петя").Return(&entity.Player{ID: 1, Name: "Петя"}, nil)

	svc := newTestAuthService(t, playerRepo)

	// Act
	player, err := svc.Register("Петя", 8, "1234")

	// Assert
	require.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Nil(t, player)
	playerRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_Register_InvalidPin(t *testing.T) {
	playerRepo := new(MockPlayerRepository)
	svc := newTestAuthService(t, playerRepo)

	tests := []struct {
		name string
		pin  string
	}{
		{"короткий PIN", "123"},
		{"PIN с буквами", "12ab"},
		{"пустой PIN", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player, err := svc.Register("Вася", 8, tt.pin)
			require.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Nil(t, player)
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	// Arrange
	playerRepo := new(MockPlayerRepository)
	playerRepo.On("GetByName", "Петя").Return(&entity.Player{
		ID: 1, Name: "Петя", PinCode: hashedPin(t, "1234"),
	}, nil)

	svc := newTestAuthService(t, playerRepo)

	// Act
	token, player, err := svc.Login("Петя", "1234")

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Петя", player.Name)
}

func TestAuthService_Login_WrongPin(t *testing.T) {
	// Arrange
	playerRepo := new(MockPlayerRepository)
	playerRepo.On("GetByName", "Петя").Return(&entity.Player{
		ID: 1, Name: "Петя", PinCode: hashedPin(t, "1234"),
	}, nil)

	svc := newTestAuthService(t, playerRepo)

	// Act
	token, player, err := svc.Login("Петя", "9999")

	// Assert
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Empty(t, token)
	assert.Nil(t, player)
}

func TestAuthService_Login_UnknownName(t *testing.T) {
	// Arrange
	playerRepo := new(MockPlayerRepository)
	playerRepo.On("GetByName", "Никто").Return(nil, apperrors.ErrNotFound)

	svc := newTestAuthService(t, playerRepo)

	// Act
	token, _, err := svc.Login("Никто", "1234")

	// Assert: неизвестное имя даёт ту же ошибку, что и неверный PIN
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Empty(t, token)
}

func TestAuthService_AdminLogin(t *testing.T) {
	playerRepo := new(MockPlayerRepository)
	svc := newTestAuthService(t, playerRepo)

	// Верные учетные данные
	token, err := svc.AdminLogin("admin", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Неверный пароль
	token, err = svc.AdminLogin("admin", "wrong")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Empty(t, token)
}
