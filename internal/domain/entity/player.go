package entity

import (
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Player представляет игрока в системе
type Player struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:50;not null;uniqueIndex" json:"name"`
	PinCode string `gorm:"size:100;not null" json:"-"`
	Age     int    `gorm:"not null;default:0" json:"age"`

	// ExcludedFromLeaderboard скрывает игрока из таблицы лидеров.
	// Его сессии при этом продолжают сохраняться для личной статистики.
	ExcludedFromLeaderboard bool `gorm:"not null;default:false" json:"excluded_from_leaderboard"`

	// SelectedCollectibleID — активный предмет коллекции игрока
	SelectedCollectibleID *uint `gorm:"index" json:"selected_collectible_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Player) TableName() string {
	return "players"
}

// BeforeSave хеширует PIN-код перед сохранением, только если он не является bcrypt-хешем
func (p *Player) BeforeSave(tx *gorm.DB) error {
	if len(p.PinCode) > 0 && !strings.HasPrefix(p.PinCode, "$2a$") &&
		!strings.HasPrefix(p.PinCode, "$2b$") && !strings.HasPrefix(p.PinCode, "$2y$") {
		hashed, err := bcrypt.GenerateFromPassword([]byte(p.PinCode), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[Player.BeforeSave] Ошибка при хешировании PIN для игрока %q: %v", p.Name, err)
			return err
		}
		p.PinCode = string(hashed)
	}
	return nil
}

// CheckPin проверяет, соответствует ли переданный PIN-код хешу
func (p *Player) CheckPin(pin string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(p.PinCode), []byte(pin))
	return err == nil
}
