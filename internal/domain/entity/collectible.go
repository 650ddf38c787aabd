package entity

import (
	"time"
)

// Collectible представляет предмет коллекции (награду за прохождение уровней).
// Каталог статичен и заполняется миграцией.
type Collectible struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Description string `gorm:"size:255;not null;default:''" json:"description"`
	ImagePath   string `gorm:"size:255;not null;default:''" json:"image_path"`
	Rarity      string `gorm:"size:20;not null;default:'common'" json:"rarity"` // common, uncommon, rare, epic, legendary

	// Level — минимальный уровень игрока, необходимый для открытия (1-5)
	Level int `gorm:"not null;default:1" json:"level"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Collectible) TableName() string {
	return "collectibles"
}

// IsUnlockableAt проверяет, доступен ли предмет на указанном уровне
func (c *Collectible) IsUnlockableAt(stage int) bool {
	return stage >= c.Level
}

// PlayerCollectible представляет факт открытия предмета игроком.
// Записи не удаляются в ходе обычной игры.
type PlayerCollectible struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PlayerID      uint      `gorm:"not null;index;uniqueIndex:idx_player_collectible" json:"player_id"`
	CollectibleID uint      `gorm:"not null;uniqueIndex:idx_player_collectible" json:"collectible_id"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlocked_at"`
}

// TableName определяет имя таблицы для GORM
func (PlayerCollectible) TableName() string {
	return "player_collectibles"
}
