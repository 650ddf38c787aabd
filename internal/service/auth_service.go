package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	"github.com/yourusername/mathquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
	"github.com/yourusername/mathquiz-api/pkg/auth"
)

// minPinLength — минимальная длина PIN-кода
const minPinLength = 4

// AuthService предоставляет методы регистрации и входа игроков,
// а также вход администратора
type AuthService struct {
	playerRepo repository.PlayerRepository
	jwtService *auth.JWTService

	adminUsername string
	adminPassword string
}

// NewAuthService создает новый сервис аутентификации и возвращает ошибку при проблемах
func NewAuthService(
	playerRepo repository.PlayerRepository,
	jwtService *auth.JWTService,
	adminUsername, adminPassword string,
) (*AuthService, error) {
	if playerRepo == nil {
		return nil, fmt.Errorf("PlayerRepository is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}
	return &AuthService{
		playerRepo:    playerRepo,
		jwtService:    jwtService,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
	}, nil
}

// Register создает нового игрока. Имя должно быть уникальным,
// PIN-код состоит минимум из четырёх цифр.
func (s *AuthService) Register(name string, age int, pin string) (*entity.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return nil, fmt.Errorf("%w: name must be 1-50 characters", apperrors.ErrValidation)
	}
	if age < 0 {
		return nil, fmt.Errorf("%w: age cannot be negative", apperrors.ErrValidation)
	}
	if err := validatePin(pin); err != nil {
		return nil, err
	}

	if _, err := s.playerRepo.GetByName(name); err == nil {
		return nil, fmt.Errorf("%w: player name is already taken", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check player name: %w", err)
	}

	player := &entity.Player{
		Name:    name,
		PinCode: pin,
		Age:     age,
	}
	if err := s.playerRepo.Create(player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	log.Printf("[AuthService] Зарегистрирован игрок %d (%s)", player.ID, player.Name)
	return player, nil
}

// Login проверяет имя и PIN-код и выпускает токен доступа.
// Неверное имя и неверный PIN дают одну и ту же ошибку.
func (s *AuthService) Login(name, pin string) (string, *entity.Player, error) {
	player, err := s.playerRepo.GetByName(strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid name or pin", apperrors.ErrUnauthorized)
		}
		return "", nil, err
	}

	if !player.CheckPin(pin) {
		return "", nil, fmt.Errorf("%w: invalid name or pin", apperrors.ErrUnauthorized)
	}

	token, err := s.jwtService.GenerateToken(player.ID, player.Name, auth.RolePlayer)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, player, nil
}

// AdminLogin проверяет учетные данные администратора и выпускает токен
// с ролью admin
func (s *AuthService) AdminLogin(username, password string) (string, error) {
	if s.adminUsername == "" || s.adminPassword == "" {
		return "", fmt.Errorf("%w: admin access is not configured", apperrors.ErrForbidden)
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
	if !userOK || !passOK {
		return "", fmt.Errorf("%w: invalid admin credentials", apperrors.ErrUnauthorized)
	}

	token, err := s.jwtService.GenerateToken(0, username, auth.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("[AuthService] Вход администратора %s", username)
	return token, nil
}

// validatePin проверяет, что PIN состоит минимум из четырёх цифр
func validatePin(pin string) error {
	if len(pin) < minPinLength {
		return fmt.Errorf("%w: pin must be at least %d digits", apperrors.ErrValidation, minPinLength)
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("%w: pin must contain only digits", apperrors.ErrValidation)
		}
	}
	return nil
}
