package repository

import (
	"gorm.io/gorm"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
)

// SettingsRepository определяет методы для работы с настройками игрока
type SettingsRepository interface {
	// GetByPlayer возвращает настройки игрока; ErrNotFound, если их ещё нет
	GetByPlayer(playerID uint) (*entity.Settings, error)
	Create(settings *entity.Settings) error
	// Save обновляет настройки под блокировкой строки: конкурентные сохранения
	// одного игрока сериализуются, частичного перемешивания полей не происходит
	Save(settings *entity.Settings) error
	// SaveTx делает то же самое внутри переданной транзакции
	SaveTx(tx *gorm.DB, settings *entity.Settings) error
}
