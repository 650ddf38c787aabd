package repository

import (
	"github.com/yourusername/mathquiz-api/internal/domain/entity"
)

// CollectibleRepository определяет методы для работы с каталогом предметов
// коллекции и фактами их открытия игроками
type CollectibleRepository interface {
	ListAll() ([]entity.Collectible, error)
	GetByID(id uint) (*entity.Collectible, error)
	// GetOwnedByPlayer возвращает предметы, уже открытые игроком
	GetOwnedByPlayer(playerID uint) ([]entity.Collectible, error)
	// GetOwnership возвращает запись об открытии; ErrNotFound, если предмет не открыт
	GetOwnership(playerID, collectibleID uint) (*entity.PlayerCollectible, error)
	// CreateOwnership создаёт запись об открытии; при нарушении уникальности
	// возвращает ErrAlreadyUnlocked
	CreateOwnership(ownership *entity.PlayerCollectible) error
}
