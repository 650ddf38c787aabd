package postgres

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

// PlayerRepo реализует repository.PlayerRepository
type PlayerRepo struct {
	db *gorm.DB
}

// NewPlayerRepo создает новый репозиторий игроков
func NewPlayerRepo(db *gorm.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// Create создает нового игрока
func (r *PlayerRepo) Create(player *entity.Player) error {
	return r.db.Create(player).Error
}

// GetByID возвращает игрока по ID
func (r *PlayerRepo) GetByID(id uint) (*entity.Player, error) {
	var player entity.Player
	err := r.db.First(&player, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}

// GetByName возвращает игрока по имени
func (r *PlayerRepo) GetByName(name string) (*entity.Player, error) {
	var player entity.Player
	err := r.db.Where("name = ?", name).First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}

// Update обновляет информацию об игроке
func (r *PlayerRepo) Update(player *entity.Player) error {
	return r.db.Save(player).Error
}

// List возвращает игроков с пагинацией и поиском по имени, вместе с общим количеством
func (r *PlayerRepo) List(search string, limit, offset int) ([]entity.Player, int64, error) {
	var players []entity.Player
	var total int64

	query := r.db.Model(&entity.Player{})
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&players).Error
	if err != nil {
		return nil, 0, err
	}

	return players, total, nil
}

// SetLeaderboardExclusion включает или выключает скрытие игрока из таблицы лидеров
func (r *PlayerRepo) SetLeaderboardExclusion(playerID uint, excluded bool) error {
	result := r.db.Model(&entity.Player{}).
		Where("id = ?", playerID).
		Update("excluded_from_leaderboard", excluded)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет игрока вместе со всеми связанными данными.
// Выполняется в транзакции: либо удаляется всё, либо ничего.
func (r *PlayerRepo) Delete(playerID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var player entity.Player
		if err := tx.First(&player, playerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		// Ответы удаляются по сессиям игрока
		if err := tx.Where("session_id IN (?)",
			tx.Model(&entity.GameSession{}).Select("id").Where("player_id = ?", playerID),
		).Delete(&entity.SessionAnswer{}).Error; err != nil {
			return fmt.Errorf("failed to delete session answers: %w", err)
		}

		if err := tx.Where("player_id = ?", playerID).Delete(&entity.GameSession{}).Error; err != nil {
			return fmt.Errorf("failed to delete sessions: %w", err)
		}
		if err := tx.Where("player_id = ?", playerID).Delete(&entity.PlayerCollectible{}).Error; err != nil {
			return fmt.Errorf("failed to delete collectible ownership: %w", err)
		}
		if err := tx.Where("player_id = ?", playerID).Delete(&entity.Settings{}).Error; err != nil {
			return fmt.Errorf("failed to delete settings: %w", err)
		}
		if err := tx.Delete(&player).Error; err != nil {
			return fmt.Errorf("failed to delete player: %w", err)
		}

		log.Printf("[PlayerRepo] Игрок #%d (%s) удалён вместе со связанными данными", playerID, player.Name)
		return nil
	})
}
