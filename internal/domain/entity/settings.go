package entity

import (
	"fmt"
	"time"

	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

// Допустимые границы настроек игры
const (
	MinDifficulty = 1
	MaxDifficulty = 5

	MinWinningScore = 2
	MaxWinningScore = 10

	MinStage = 1
	MaxStage = 5
)

// Settings содержит игровые настройки игрока. Читаются при старте новой
// сессии; изменение CurrentStage не затрагивает уже идущую игру.
type Settings struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	PlayerID     uint `gorm:"not null;uniqueIndex" json:"player_id"`
	Difficulty   int  `gorm:"not null;default:1" json:"difficulty"`
	WinningScore int  `gorm:"not null;default:5" json:"winning_score"`
	CurrentStage int  `gorm:"not null;default:1" json:"current_stage"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Settings) TableName() string {
	return "settings"
}

// DefaultSettings возвращает настройки по умолчанию для нового игрока
func DefaultSettings(playerID uint) *Settings {
	return &Settings{
		PlayerID:     playerID,
		Difficulty:   1,
		WinningScore: 5,
		CurrentStage: 1,
	}
}

// Validate проверяет границы всех полей. В отличие от генератора вопросов,
// который молча ограничивает уровень, сохранение настроек с невалидными
// значениями отклоняется с конкретным нарушенным ограничением.
func (s *Settings) Validate() error {
	if s.Difficulty < MinDifficulty || s.Difficulty > MaxDifficulty {
		return fmt.Errorf("%w: difficulty must be between %d and %d, got %d",
			apperrors.ErrValidation, MinDifficulty, MaxDifficulty, s.Difficulty)
	}
	if s.WinningScore < MinWinningScore || s.WinningScore > MaxWinningScore {
		return fmt.Errorf("%w: winning score must be between %d and %d, got %d",
			apperrors.ErrValidation, MinWinningScore, MaxWinningScore, s.WinningScore)
	}
	if s.CurrentStage < MinStage || s.CurrentStage > MaxStage {
		return fmt.Errorf("%w: current stage must be between %d and %d, got %d",
			apperrors.ErrValidation, MinStage, MaxStage, s.CurrentStage)
	}
	return nil
}
