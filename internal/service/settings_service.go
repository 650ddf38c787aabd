package service

import (
	"errors"
	"fmt"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	"github.com/yourusername/mathquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

// SettingsService управляет игровыми настройками игрока
type SettingsService struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsService создает новый сервис настроек
func NewSettingsService(settingsRepo repository.SettingsRepository) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

// Get возвращает настройки игрока, создавая значения по умолчанию
// при первом обращении
func (s *SettingsService) Get(playerID uint) (*entity.Settings, error) {
	settings, err := s.settingsRepo.GetByPlayer(playerID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	settings = entity.DefaultSettings(playerID)
	if err := s.settingsRepo.Create(settings); err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}
	return settings, nil
}

// Save обновляет настройки игрока. Передаются только изменяемые поля;
// nil оставляет поле без изменений. Выход любого поля за допустимые
// границы отклоняет сохранение целиком.
//
// Изменения применяются со следующей сессии: уже идущая игра продолжает
// использовать значения, зафиксированные при её старте.
func (s *SettingsService) Save(playerID uint, difficulty, winningScore, currentStage *int) (*entity.Settings, error) {
	settings, err := s.Get(playerID)
	if err != nil {
		return nil, err
	}

	if difficulty != nil {
		settings.Difficulty = *difficulty
	}
	if winningScore != nil {
		settings.WinningScore = *winningScore
	}
	if currentStage != nil {
		settings.CurrentStage = *currentStage
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if err := s.settingsRepo.Save(settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}
