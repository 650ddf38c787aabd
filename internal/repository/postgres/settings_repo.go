package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

// SettingsRepo реализует хранение игровых настроек в PostgreSQL
type SettingsRepo struct {
	db *gorm.DB
}

// NewSettingsRepo создает новый репозиторий настроек
func NewSettingsRepo(db *gorm.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// GetByPlayer возвращает настройки игрока
func (r *SettingsRepo) GetByPlayer(playerID uint) (*entity.Settings, error) {
	var settings entity.Settings
	err := r.db.Where("player_id = ?", playerID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &settings, nil
}

// Create создает запись настроек для игрока
func (r *SettingsRepo) Create(settings *entity.Settings) error {
	return r.db.Create(settings).Error
}

// Save обновляет настройки игрока. Запись блокируется на время
// транзакции, чтобы параллельные обновления не затирали друг друга.
func (r *SettingsRepo) Save(settings *entity.Settings) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return r.SaveTx(tx, settings)
	})
}

// SaveTx обновляет настройки игрока внутри переданной транзакции
func (r *SettingsRepo) SaveTx(tx *gorm.DB, settings *entity.Settings) error {
	var current entity.Settings
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("player_id = ?", settings.PlayerID).
		First(&current).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return err
	}
	settings.ID = current.ID
	return tx.Save(settings).Error
}
