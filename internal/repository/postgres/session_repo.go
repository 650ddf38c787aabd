package postgres

import (
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

// SessionRepo реализует repository.SessionRepository
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo создает новый репозиторий игровых сессий
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// CreateTx создает новую сессию внутри переданной транзакции
func (r *SessionRepo) CreateTx(tx *gorm.DB, session *entity.GameSession) error {
	return tx.Create(session).Error
}

// GetLatestByPlayer возвращает последнюю сессию игрока (активную или завершённую)
func (r *SessionRepo) GetLatestByPlayer(playerID uint) (*entity.GameSession, error) {
	var session entity.GameSession
	err := r.db.Where("player_id = ?", playerID).
		Order("id DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetActiveByPlayer возвращает незавершённую сессию игрока
func (r *SessionRepo) GetActiveByPlayer(playerID uint) (*entity.GameSession, error) {
	return r.getActive(r.db, playerID, false)
}

// GetActiveByPlayerForUpdate возвращает незавершённую сессию игрока внутри
// транзакции tx с блокировкой строки. Конкурентный SubmitAnswer на ту же
// сессию дождётся коммита первого и увидит уже сменившийся вопрос.
func (r *SessionRepo) GetActiveByPlayerForUpdate(tx *gorm.DB, playerID uint) (*entity.GameSession, error) {
	return r.getActive(tx, playerID, true)
}

func (r *SessionRepo) getActive(db *gorm.DB, playerID uint, forUpdate bool) (*entity.GameSession, error) {
	var session entity.GameSession
	query := db.Where("player_id = ? AND ended_at IS NULL", playerID).Order("id DESC")
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// UpdateTx сохраняет изменения сессии внутри переданной транзакции
func (r *SessionRepo) UpdateTx(tx *gorm.DB, session *entity.GameSession) error {
	return tx.Save(session).Error
}

// SaveAnswer сохраняет ответ игрока внутри переданной транзакции
func (r *SessionRepo) SaveAnswer(tx *gorm.DB, answer *entity.SessionAnswer) error {
	return tx.Create(answer).Error
}

// GetSessionAnswers возвращает все ответы сессии в порядке их поступления
func (r *SessionRepo) GetSessionAnswers(sessionID uint) ([]entity.SessionAnswer, error) {
	var answers []entity.SessionAnswer
	err := r.db.Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&answers).Error
	return answers, err
}

// GetCompletedByPlayer возвращает последние завершённые сессии игрока
func (r *SessionRepo) GetCompletedByPlayer(playerID uint, limit int) ([]entity.GameSession, error) {
	var sessions []entity.GameSession
	err := r.db.Where("player_id = ? AND ended_at IS NOT NULL", playerID).
		Order("ended_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

// GetCompletedByPlayerBetween возвращает завершённые сессии игрока за период
func (r *SessionRepo) GetCompletedByPlayerBetween(playerID uint, from, to time.Time) ([]entity.GameSession, error) {
	var sessions []entity.GameSession
	err := r.db.Where("player_id = ? AND ended_at IS NOT NULL AND ended_at >= ? AND ended_at < ?",
		playerID, from, to).
		Order("ended_at ASC").
		Find(&sessions).Error
	return sessions, err
}

// GetTopScores возвращает лучшие результаты завершённых сессий игроков,
// не исключённых из таблицы лидеров. Берётся лучшая сессия каждого игрока;
// при равном счёте выше тот, кто достиг его раньше.
func (r *SessionRepo) GetTopScores(limit int) ([]entity.LeaderboardEntry, error) {
	var entries []entity.LeaderboardEntry
	err := r.db.Raw(`
		SELECT DISTINCT ON (p.id)
		       p.id AS player_id, p.name, s.score, s.ended_at AS achieved_at
		FROM game_sessions s
		JOIN players p ON p.id = s.player_id
		WHERE s.ended_at IS NOT NULL AND p.excluded_from_leaderboard = false
		ORDER BY p.id, s.score DESC, s.ended_at ASC, s.id ASC
	`).Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	// DISTINCT ON отдаёт по одной строке на игрока; итоговый порядок
	// лидерборда добирается сортировкой in-memory
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.AchievedAt.Equal(b.AchievedAt) {
			return a.AchievedAt.Before(b.AchievedAt)
		}
		return a.PlayerID < b.PlayerID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// GetBestScore возвращает лучший результат игрока среди завершённых сессий
func (r *SessionRepo) GetBestScore(playerID uint) (*entity.LeaderboardEntry, error) {
	var entry entity.LeaderboardEntry
	err := r.db.Raw(`
		SELECT p.id AS player_id, p.name, s.score, s.ended_at AS achieved_at
		FROM game_sessions s
		JOIN players p ON p.id = s.player_id
		WHERE s.player_id = ? AND s.ended_at IS NOT NULL
		ORDER BY s.score DESC, s.ended_at ASC, s.id ASC
		LIMIT 1
	`, playerID).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.PlayerID == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &entry, nil
}

// CountBetterScores возвращает количество игроков (не исключённых из
// таблицы лидеров), стоящих в таблице выше данного результата. Условия
// повторяют порядок сортировки GetTopScores вплоть до паритета по id,
// поэтому место игрока всегда совпадает с его строкой в таблице
func (r *SessionRepo) CountBetterScores(score int, achievedAt time.Time, playerID uint) (int64, error) {
	var count int64
	err := r.db.Raw(`
		SELECT COUNT(*) FROM (
			SELECT DISTINCT ON (p.id) p.id, s.score, s.ended_at
			FROM game_sessions s
			JOIN players p ON p.id = s.player_id
			WHERE s.ended_at IS NOT NULL AND p.excluded_from_leaderboard = false
			ORDER BY p.id, s.score DESC, s.ended_at ASC, s.id ASC
		) best
		WHERE best.score > ?
		   OR (best.score = ? AND best.ended_at < ?)
		   OR (best.score = ? AND best.ended_at = ? AND best.id < ?)
	`, score, score, achievedAt, score, achievedAt, playerID).Scan(&count).Error
	return count, err
}
