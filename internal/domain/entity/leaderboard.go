package entity

import (
	"time"
)

// LeaderboardEntry — производная запись таблицы лидеров: лучший результат
// игрока среди завершённых сессий. Не хранится как отдельная таблица,
// вычисляется запросом по game_sessions.
//
// Порядок сортировки: score DESC, achieved_at ASC, session_id ASC —
// при равном счёте выигрывает тот, кто достиг его раньше.
type LeaderboardEntry struct {
	PlayerID   uint      `json:"player_id"`
	Name       string    `json:"name"`
	Score      int       `json:"score"`
	AchievedAt time.Time `json:"achieved_at"`
}
