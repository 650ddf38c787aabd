package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	"github.com/yourusername/mathquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

// DefaultLeaderboardLimit — размер таблицы лидеров по умолчанию
const DefaultLeaderboardLimit = 10

// leaderboardCacheTTL ограничивает жизнь кешированной таблицы: даже без
// явной инвалидации устаревшие данные живут не дольше пяти минут
const leaderboardCacheTTL = 5 * time.Minute

// leaderboardCacheLimits — размеры выборок, которые кешируются и
// инвалидируются при завершении сессии
var leaderboardCacheLimits = []int{10, 20, 50, 100}

// LeaderboardService отдаёт таблицу лидеров и место игрока в ней.
// Таблица производна от завершённых сессий; лучший результат каждого
// не исключённого игрока, отсортированный по score DESC, ended_at ASC.
type LeaderboardService struct {
	sessionRepo repository.SessionRepository
	playerRepo  repository.PlayerRepository
	cacheRepo   repository.CacheRepository
}

// NewLeaderboardService создает новый сервис таблицы лидеров
func NewLeaderboardService(
	sessionRepo repository.SessionRepository,
	playerRepo repository.PlayerRepository,
	cacheRepo repository.CacheRepository,
) *LeaderboardService {
	return &LeaderboardService{
		sessionRepo: sessionRepo,
		playerRepo:  playerRepo,
		cacheRepo:   cacheRepo,
	}
}

func leaderboardCacheKey(limit int) string {
	return fmt.Sprintf("leaderboard:top:%d", limit)
}

// GetTopPlayers возвращает первые limit записей таблицы лидеров.
// Результат кешируется в Redis; промах или любая ошибка кеша приводят
// к запросу в базу, игра при недоступном Redis продолжает работать.
func (s *LeaderboardService) GetTopPlayers(limit int) ([]entity.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	key := leaderboardCacheKey(limit)
	var cached []entity.LeaderboardEntry
	if err := s.cacheRepo.GetJSON(key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[LeaderboardService] Ошибка чтения кеша %s: %v", key, err)
	}

	entries, err := s.sessionRepo.GetTopScores(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top scores: %w", err)
	}
	if entries == nil {
		entries = []entity.LeaderboardEntry{}
	}

	if err := s.cacheRepo.SetJSON(key, entries, leaderboardCacheTTL); err != nil {
		log.Printf("[LeaderboardService] Ошибка записи кеша %s: %v", key, err)
	}

	return entries, nil
}

// GetRank возвращает место игрока в таблице лидеров (с единицы).
// Для игрока, исключённого из таблицы, и для игрока без завершённых
// сессий возвращается nil.
func (s *LeaderboardService) GetRank(playerID uint) (*int, error) {
	player, err := s.playerRepo.GetByID(playerID)
	if err != nil {
		return nil, err
	}
	if player.ExcludedFromLeaderboard {
		return nil, nil
	}

	best, err := s.sessionRepo.GetBestScore(playerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load best score: %w", err)
	}

	better, err := s.sessionRepo.CountBetterScores(best.Score, best.AchievedAt, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count better scores: %w", err)
	}

	rank := int(better) + 1
	return &rank, nil
}

// Invalidate сбрасывает кешированные выборки таблицы лидеров.
// Вызывается при завершении сессии и при изменении видимости игрока.
func (s *LeaderboardService) Invalidate() {
	for _, limit := range leaderboardCacheLimits {
		if err := s.cacheRepo.Delete(leaderboardCacheKey(limit)); err != nil {
			log.Printf("[LeaderboardService] Ошибка сброса кеша top:%d: %v", limit, err)
		}
	}
}
