package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
)

// SessionRepository определяет методы для работы с игровыми сессиями
// и производной от них таблицей лидеров
type SessionRepository interface {
	// CreateTx создает сессию внутри переданной транзакции
	CreateTx(tx *gorm.DB, session *entity.GameSession) error
	// GetLatestByPlayer возвращает последнюю сессию игрока (активную или завершённую)
	GetLatestByPlayer(playerID uint) (*entity.GameSession, error)
	// GetActiveByPlayer возвращает незавершённую сессию игрока
	GetActiveByPlayer(playerID uint) (*entity.GameSession, error)
	// GetActiveByPlayerForUpdate делает то же самое внутри транзакции tx
	// с блокировкой строки (SELECT ... FOR UPDATE). Используется при приёме
	// ответа: два конкурентных ответа на один вопрос не должны пройти оба.
	GetActiveByPlayerForUpdate(tx *gorm.DB, playerID uint) (*entity.GameSession, error)
	// UpdateTx сохраняет сессию внутри переданной транзакции
	UpdateTx(tx *gorm.DB, session *entity.GameSession) error

	SaveAnswer(tx *gorm.DB, answer *entity.SessionAnswer) error
	GetSessionAnswers(sessionID uint) ([]entity.SessionAnswer, error)

	// GetCompletedByPlayer возвращает последние завершённые сессии игрока
	GetCompletedByPlayer(playerID uint, limit int) ([]entity.GameSession, error)
	// GetCompletedByPlayerBetween возвращает завершённые сессии игрока за период
	GetCompletedByPlayerBetween(playerID uint, from, to time.Time) ([]entity.GameSession, error)

	// GetTopScores возвращает лучшие результаты завершённых сессий игроков,
	// не исключённых из таблицы лидеров: score DESC, ended_at ASC, id ASC
	GetTopScores(limit int) ([]entity.LeaderboardEntry, error)
	// GetBestScore возвращает лучший результат игрока среди завершённых сессий
	GetBestScore(playerID uint) (*entity.LeaderboardEntry, error)
	// CountBetterScores возвращает количество записей лидерборда, стоящих
	// выше данной: больший счёт, тот же счёт достигнутый раньше, либо полный
	// паритет при меньшем id игрока — в том же порядке, что и GetTopScores
	CountBetterScores(score int, achievedAt time.Time, playerID uint) (int64, error)
}
