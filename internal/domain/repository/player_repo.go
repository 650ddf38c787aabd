package repository

import (
	"github.com/yourusername/mathquiz-api/internal/domain/entity"
)

// PlayerRepository определяет методы для работы с игроками
type PlayerRepository interface {
	Create(player *entity.Player) error
	GetByID(id uint) (*entity.Player, error)
	GetByName(name string) (*entity.Player, error)
	Update(player *entity.Player) error
	// List возвращает игроков с пагинацией и поиском по имени, вместе с общим количеством
	List(search string, limit, offset int) ([]entity.Player, int64, error)
	// SetLeaderboardExclusion включает или выключает скрытие игрока из таблицы лидеров
	SetLeaderboardExclusion(playerID uint, excluded bool) error
	// Delete удаляет игрока вместе со всеми его сессиями, ответами и коллекцией
	Delete(playerID uint) error
}
