package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

func TestSettings_Validate_Defaults(t *testing.T) {
	settings := DefaultSettings(1)

	require.NoError(t, settings.Validate())
	assert.Equal(t, 1, settings.Difficulty)
	assert.Equal(t, 5, settings.WinningScore)
	assert.Equal(t, 1, settings.CurrentStage)
}

func TestSettings_Validate_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr bool
	}{
		{"минимальный выигрышный счёт", func(s *Settings) { s.WinningScore = MinWinningScore }, false},
		{"максимальный выигрышный счёт", func(s *Settings) { s.WinningScore = MaxWinningScore }, false},
		{"выигрышный счёт 1 отклоняется", func(s *Settings) { s.WinningScore = 1 }, true},
		{"выигрышный счёт 11 отклоняется", func(s *Settings) { s.WinningScore = 11 }, true},
		{"сложность 0 отклоняется", func(s *Settings) { s.Difficulty = 0 }, true},
		{"сложность 6 отклоняется", func(s *Settings) { s.Difficulty = 6 }, true},
		{"уровень 0 отклоняется", func(s *Settings) { s.CurrentStage = 0 }, true},
		{"уровень 6 отклоняется", func(s *Settings) { s.CurrentStage = 6 }, true},
		{"максимальный уровень", func(s *Settings) { s.CurrentStage = MaxStage }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings(1)
			tt.modify(settings)

			err := settings.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrValidation),
					"ошибка должна оборачивать ErrValidation")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
