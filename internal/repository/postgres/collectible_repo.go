package postgres

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

// CollectibleRepo реализует хранение коллекционных фигурок в PostgreSQL
type CollectibleRepo struct {
	db *gorm.DB
}

// NewCollectibleRepo создает новый репозиторий фигурок
func NewCollectibleRepo(db *gorm.DB) *CollectibleRepo {
	return &CollectibleRepo{db: db}
}

// ListAll возвращает все фигурки, упорядоченные по уровню открытия
func (r *CollectibleRepo) ListAll() ([]entity.Collectible, error) {
	var collectibles []entity.Collectible
	err := r.db.Order("level ASC, id ASC").Find(&collectibles).Error
	if err != nil {
		return nil, err
	}
	return collectibles, nil
}

// GetByID возвращает фигурку по ID
func (r *CollectibleRepo) GetByID(id uint) (*entity.Collectible, error) {
	var collectible entity.Collectible
	err := r.db.First(&collectible, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &collectible, nil
}

// GetOwnedByPlayer возвращает фигурки, уже открытые игроком
func (r *CollectibleRepo) GetOwnedByPlayer(playerID uint) ([]entity.Collectible, error) {
	var collectibles []entity.Collectible
	err := r.db.
		Joins("JOIN player_collectibles pc ON pc.collectible_id = collectibles.id").
		Where("pc.player_id = ?", playerID).
		Order("collectibles.level ASC, collectibles.id ASC").
		Find(&collectibles).Error
	if err != nil {
		return nil, err
	}
	return collectibles, nil
}

// GetOwnership возвращает запись об открытии фигурки игроком
func (r *CollectibleRepo) GetOwnership(playerID, collectibleID uint) (*entity.PlayerCollectible, error) {
	var ownership entity.PlayerCollectible
	err := r.db.
		Where("player_id = ? AND collectible_id = ?", playerID, collectibleID).
		First(&ownership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &ownership, nil
}

// CreateOwnership фиксирует открытие фигурки. Повторное открытие
// определяется по уникальному индексу (player_id, collectible_id).
func (r *CollectibleRepo) CreateOwnership(ownership *entity.PlayerCollectible) error {
	err := r.db.Create(ownership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return apperrors.ErrAlreadyUnlocked
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key value") ||
		strings.Contains(err.Error(), "idx_player_collectible")
}
