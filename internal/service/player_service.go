package service

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	"github.com/yourusername/mathquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

// statsSessionLimit ограничивает количество сессий в детальной статистике
const statsSessionLimit = 20

// PlayerService предоставляет административные операции над игроками
// и персональную статистику прохождений
type PlayerService struct {
	playerRepo  repository.PlayerRepository
	sessionRepo repository.SessionRepository
	leaderboard *LeaderboardService
}

// NewPlayerService создает новый сервис игроков
func NewPlayerService(
	playerRepo repository.PlayerRepository,
	sessionRepo repository.SessionRepository,
	leaderboard *LeaderboardService,
) *PlayerService {
	return &PlayerService{
		playerRepo:  playerRepo,
		sessionRepo: sessionRepo,
		leaderboard: leaderboard,
	}
}

// PlayerList — страница списка игроков
type PlayerList struct {
	Players  []entity.Player `json:"players"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// SessionStats — итоги одной завершённой сессии
type SessionStats struct {
	SessionID      uint       `json:"session_id"`
	Score          int        `json:"score"`
	Stage          int        `json:"stage"`
	ReachedTarget  bool       `json:"reached_target"`
	CorrectCount   int        `json:"correct_count"`
	IncorrectCount int        `json:"incorrect_count"`
	WrongAnswers   []string   `json:"wrong_answers"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at"`
}

// PlayerStats — статистика игрока по последним завершённым сессиям
type PlayerStats struct {
	PlayerID   uint           `json:"player_id"`
	PlayerName string         `json:"player_name"`
	TotalGames int            `json:"total_games"`
	BestScore  int            `json:"best_score"`
	Sessions   []SessionStats `json:"sessions"`
}

// TrendStats — сводка прохождений за период
type TrendStats struct {
	Period       string    `json:"period"`
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	TotalGames   int       `json:"total_games"`
	AverageScore float64   `json:"average_score"`
	// SuccessRate — доля сессий, завершившихся достижением выигрышного счёта
	SuccessRate float64 `json:"success_rate"`
}

// PeriodComparison — сравнение текущего периода с предыдущим
type PeriodComparison struct {
	Current       TrendStats `json:"current"`
	Previous      TrendStats `json:"previous"`
	GamesDelta    int        `json:"games_delta"`
	AvgScoreDelta float64    `json:"avg_score_delta"`
	SuccessDelta  float64    `json:"success_delta"`
}

// List возвращает страницу списка игроков с поиском по имени
func (s *PlayerService) List(search string, page, pageSize int) (*PlayerList, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	players, total, err := s.playerRepo.List(search, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	return &PlayerList{
		Players:  players,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetStats возвращает статистику игрока по последним завершённым сессиям,
// включая количество правильных и неправильных ответов в каждой
func (s *PlayerService) GetStats(playerID uint) (*PlayerStats, error) {
	player, err := s.playerRepo.GetByID(playerID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.GetCompletedByPlayer(playerID, statsSessionLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	stats := &PlayerStats{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		TotalGames: len(sessions),
		Sessions:   make([]SessionStats, 0, len(sessions)),
	}

	for _, session := range sessions {
		if session.Score > stats.BestScore {
			stats.BestScore = session.Score
		}

		correct, incorrect := 0, 0
		answers, err := s.sessionRepo.GetSessionAnswers(session.ID)
		if err != nil {
			log.Printf("[PlayerService] Не удалось получить ответы сессии %d: %v", session.ID, err)
		} else {
			for _, a := range answers {
				if a.IsCorrect {
					correct++
				} else {
					incorrect++
				}
			}
		}

		wrong := session.WrongAnswers
		if wrong == nil {
			wrong = entity.StringArray{}
		}

		stats.Sessions = append(stats.Sessions, SessionStats{
			SessionID:      session.ID,
			Score:          session.Score,
			Stage:          session.Stage,
			ReachedTarget:  session.ReachedTarget,
			CorrectCount:   correct,
			IncorrectCount: incorrect,
			WrongAnswers:   wrong,
			StartedAt:      session.StartedAt,
			EndedAt:        session.EndedAt,
		})
	}

	return stats, nil
}

// GetTrends возвращает сводку прохождений игрока за последнюю неделю
// или месяц
func (s *PlayerService) GetTrends(playerID uint, period string) (*TrendStats, error) {
	duration, err := periodDuration(period)
	if err != nil {
		return nil, err
	}
	if _, err := s.playerRepo.GetByID(playerID); err != nil {
		return nil, err
	}

	to := time.Now()
	from := to.Add(-duration)
	trend, err := s.trendBetween(playerID, period, from, to)
	if err != nil {
		return nil, err
	}
	return trend, nil
}

// ComparePeriods сравнивает прохождения игрока за текущий период
// с предыдущим периодом той же длины
func (s *PlayerService) ComparePeriods(playerID uint, period string) (*PeriodComparison, error) {
	duration, err := periodDuration(period)
	if err != nil {
		return nil, err
	}
	if _, err := s.playerRepo.GetByID(playerID); err != nil {
		return nil, err
	}

	now := time.Now()
	current, err := s.trendBetween(playerID, period, now.Add(-duration), now)
	if err != nil {
		return nil, err
	}
	previous, err := s.trendBetween(playerID, period, now.Add(-2*duration), now.Add(-duration))
	if err != nil {
		return nil, err
	}

	return &PeriodComparison{
		Current:       *current,
		Previous:      *previous,
		GamesDelta:    current.TotalGames - previous.TotalGames,
		AvgScoreDelta: current.AverageScore - previous.AverageScore,
		SuccessDelta:  current.SuccessRate - previous.SuccessRate,
	}, nil
}

// SetExclusion включает или выключает скрытие игрока из таблицы лидеров.
// Завершённые сессии игрока при этом сохраняются для личной статистики.
func (s *PlayerService) SetExclusion(playerID uint, excluded bool) error {
	if err := s.playerRepo.SetLeaderboardExclusion(playerID, excluded); err != nil {
		return err
	}
	s.leaderboard.Invalidate()
	log.Printf("[PlayerService] Видимость игрока %d в таблице лидеров: excluded=%v", playerID, excluded)
	return nil
}

// Delete удаляет игрока со всеми его сессиями, ответами и коллекцией
func (s *PlayerService) Delete(playerID uint) error {
	if err := s.playerRepo.Delete(playerID); err != nil {
		return err
	}
	s.leaderboard.Invalidate()
	log.Printf("[PlayerService] Игрок %d удалён", playerID)
	return nil
}

func (s *PlayerService) trendBetween(playerID uint, period string, from, to time.Time) (*TrendStats, error) {
	sessions, err := s.sessionRepo.GetCompletedByPlayerBetween(playerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions for period: %w", err)
	}

	trend := &TrendStats{Period: period, From: from, To: to, TotalGames: len(sessions)}
	if len(sessions) == 0 {
		return trend, nil
	}

	totalScore, reached := 0, 0
	for _, session := range sessions {
		totalScore += session.Score
		if session.ReachedTarget {
			reached++
		}
	}
	trend.AverageScore = float64(totalScore) / float64(len(sessions))
	trend.SuccessRate = float64(reached) / float64(len(sessions))
	return trend, nil
}

func periodDuration(period string) (time.Duration, error) {
	switch period {
	case "week":
		return 7 * 24 * time.Hour, nil
	case "month":
		return 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("%w: period must be week or month", apperrors.ErrValidation)
	}
}
