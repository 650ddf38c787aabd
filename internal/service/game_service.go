package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	"github.com/yourusername/mathquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
	"github.com/yourusername/mathquiz-api/internal/service/questiongen"
)

// answerOnceTTL — время жизни ключа-замка повторной отправки ответа.
// Покрывает окно между повторными кликами; дальше повтор отсекает
// проверка идентификатора вопроса под блокировкой строки.
const answerOnceTTL = time.Minute

// GameService управляет жизненным циклом игровой сессии: старт игры,
// приём ответов, смена вопросов, завершение по достижении выигрышного
// счёта и переход на следующий уровень.
type GameService struct {
	sessionRepo  repository.SessionRepository
	settingsRepo repository.SettingsRepository
	playerRepo   repository.PlayerRepository
	leaderboard  *LeaderboardService
	cacheRepo    repository.CacheRepository
	generator    *questiongen.Generator
	db           *gorm.DB
}

// NewGameService создает новый игровой сервис
func NewGameService(
	sessionRepo repository.SessionRepository,
	settingsRepo repository.SettingsRepository,
	playerRepo repository.PlayerRepository,
	leaderboard *LeaderboardService,
	cacheRepo repository.CacheRepository,
	generator *questiongen.Generator,
	db *gorm.DB,
) *GameService {
	return &GameService{
		sessionRepo:  sessionRepo,
		settingsRepo: settingsRepo,
		playerRepo:   playerRepo,
		leaderboard:  leaderboard,
		cacheRepo:    cacheRepo,
		generator:    generator,
		db:           db,
	}
}

// QuestionView — вопрос в том виде, в котором он отдается клиенту:
// без правильного ответа
type QuestionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// StartGameResult — результат старта игры. Либо Question заполнен и игра
// идёт, либо ReadyToAdvance=true и клиент должен спросить игрока о переходе
// на следующий уровень.
type StartGameResult struct {
	SessionID      uint          `json:"session_id"`
	Score          int           `json:"score"`
	Stage          int           `json:"stage"`
	WinningScore   int           `json:"winning_score"`
	ReadyToAdvance bool          `json:"ready_to_advance"`
	Question       *QuestionView `json:"question,omitempty"`
}

// AnswerResult — результат обработки одного ответа. WrongAnswers —
// текущий журнал ошибок сессии, клиент показывает его прямо во время игры.
type AnswerResult struct {
	Correct       bool          `json:"correct"`
	CorrectAnswer int           `json:"correct_answer"`
	Score         int           `json:"score"`
	Stage         int           `json:"stage"`
	SessionEnded  bool          `json:"session_ended"`
	ReachedTarget bool          `json:"reached_target"`
	WrongAnswers  []string      `json:"wrong_answers"`
	NextQuestion  *QuestionView `json:"next_question,omitempty"`
}

// GameEndResult — итоги последней завершённой сессии игрока
type GameEndResult struct {
	PlayerName    string                    `json:"player_name"`
	Score         int                       `json:"score"`
	Stage         int                       `json:"stage"`
	ReachedTarget bool                      `json:"reached_target"`
	WrongAnswers  []string                  `json:"wrong_answers"`
	Leaderboard   []entity.LeaderboardEntry `json:"leaderboard"`
	// Rank == nil, если игрок исключён из таблицы лидеров
	Rank *int `json:"rank,omitempty"`
}

// StartGame начинает или возобновляет игру.
//
// Незавершённая сессия возобновляется: клиент получает её текущий вопрос
// (путь восстановления после обрыва соединения). Если последняя сессия
// завершилась достижением выигрышного счёта и игрок ещё не ответил на
// предложение перейти выше, advance==nil возвращает приглашение без вопроса;
// advance=true начинает новую сессию уровнем выше (до максимума) и сохраняет
// новый уровень в настройках, advance=false — на том же уровне. В обоих
// случаях счёт новой сессии равен нулю.
//
// Все записи (погашение приглашения, новый уровень в настройках, создание
// сессии) идут в одной транзакции: либо переход фиксируется целиком, либо
// приглашение остаётся непогашенным.
func (s *GameService) StartGame(playerID uint, playerAge int, advance *bool) (*StartGameResult, error) {
	var result *StartGameResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.startSession(tx, playerID, playerAge, advance)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// startSession выполняет логику StartGame внутри транзакции tx
func (s *GameService) startSession(tx *gorm.DB, playerID uint, playerAge int, advance *bool) (*StartGameResult, error) {
	active, err := s.sessionRepo.GetActiveByPlayer(playerID)
	if err == nil {
		return &StartGameResult{
			SessionID:    active.ID,
			Score:        active.Score,
			Stage:        active.Stage,
			WinningScore: active.WinningScore,
			Question: &QuestionView{
				ID:   active.CurrentQuestionID,
				Text: active.CurrentQuestionText,
			},
		}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check active session: %w", err)
	}

	settings, err := s.getOrCreateSettings(playerID)
	if err != nil {
		return nil, err
	}

	stage := settings.CurrentStage
	latest, err := s.sessionRepo.GetLatestByPlayer(playerID)
	switch {
	case err == nil && latest.ReachedTarget && !latest.AdvanceResolved:
		if advance == nil {
			return &StartGameResult{
				SessionID:      latest.ID,
				Score:          latest.Score,
				Stage:          latest.Stage,
				WinningScore:   latest.WinningScore,
				ReadyToAdvance: true,
			}, nil
		}
		latest.AdvanceResolved = true
		if upErr := s.sessionRepo.UpdateTx(tx, latest); upErr != nil {
			return nil, fmt.Errorf("failed to resolve stage advance: %w", upErr)
		}
		stage = latest.Stage
		if *advance && stage < entity.MaxStage {
			stage++
		}
		if stage != settings.CurrentStage {
			settings.CurrentStage = stage
			if saveErr := s.settingsRepo.SaveTx(tx, settings); saveErr != nil {
				return nil, fmt.Errorf("failed to persist new stage: %w", saveErr)
			}
		}
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("failed to load latest session: %w", err)
	}

	age := s.resolveAge(playerID, playerAge)
	question := s.generator.Generate(stage, age, nil)

	session := &entity.GameSession{
		PlayerID:     playerID,
		Score:        0,
		Stage:        stage,
		Difficulty:   settings.Difficulty,
		WinningScore: settings.WinningScore,
		WrongAnswers: entity.StringArray{},
		SolvedTexts:  entity.StringArray{},
		StartedAt:    time.Now(),
	}
	session.SetQuestion(question.ID, question.Text, question.Answer)

	if err := s.sessionRepo.CreateTx(tx, session); err != nil {
		return nil, fmt.Errorf("failed to create game session: %w", err)
	}

	log.Printf("[GameService] Игрок %d начал сессию %d (уровень %d, цель %d)",
		playerID, session.ID, session.Stage, session.WinningScore)

	return &StartGameResult{
		SessionID:    session.ID,
		Score:        session.Score,
		Stage:        session.Stage,
		WinningScore: session.WinningScore,
		Question:     &QuestionView{ID: question.ID, Text: question.Text},
	}, nil
}

// SubmitAnswer обрабатывает ответ на текущий вопрос активной сессии.
//
// Повторная отправка того же вопроса сначала отсекается замком в Redis
// (SetNX на пару игрок+вопрос), затем — проверкой идентификатора вопроса
// в транзакции с блокировкой строки сессии: из двух конкурентных ответов
// второй получит ErrStaleQuestion, счёт не изменится дважды.
// answer == nil засчитывается как неправильный ответ (клиентский таймаут).
func (s *GameService) SubmitAnswer(playerID uint, questionID string, answer *int) (*AnswerResult, error) {
	if questionID == "" {
		return nil, fmt.Errorf("%w: question id is required", apperrors.ErrValidation)
	}

	lockKey := fmt.Sprintf("game:answer:once:%d:%s", playerID, questionID)
	acquired, err := s.cacheRepo.SetNX(lockKey, 1, answerOnceTTL)
	if err != nil {
		// Недоступный Redis не блокирует игру: повтор всё равно отсечёт
		// проверка вопроса под блокировкой строки
		log.Printf("[GameService] Ошибка замка повторной отправки %s: %v", lockKey, err)
	} else if !acquired {
		return nil, fmt.Errorf("%w: answer already submitted", apperrors.ErrStaleQuestion)
	}

	age := s.resolveAge(playerID, 0)

	var result *AnswerResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.processAnswer(tx, playerID, questionID, answer, age)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	// Кеш таблицы лидеров сбрасывается после коммита: откатившаяся
	// транзакция не должна трогать кеш
	if result.SessionEnded {
		s.leaderboard.Invalidate()
		log.Printf("[GameService] Игрок %d завершил сессию со счётом %d (уровень %d)",
			playerID, result.Score, result.Stage)
	}

	return result, nil
}

// processAnswer выполняет всю обработку ответа внутри транзакции tx:
// проверка актуальности вопроса, изменение счёта, запись ответа и либо
// завершение сессии, либо выдача следующего вопроса
func (s *GameService) processAnswer(tx *gorm.DB, playerID uint, questionID string, answer *int, age int) (*AnswerResult, error) {
	session, err := s.sessionRepo.GetActiveByPlayerForUpdate(tx, playerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Активной сессии нет: либо её не было вовсе, либо её только что
			// завершил конкурентный ответ. Оба случая клиент обрабатывает
			// одинаково — пересинхронизацией через StartGame/GetGameEnd
			return nil, fmt.Errorf("%w: no active game session", apperrors.ErrStaleQuestion)
		}
		return nil, err
	}

	if !session.IsCurrentQuestion(questionID) {
		return nil, apperrors.ErrStaleQuestion
	}

	now := time.Now()
	correct := answer != nil && *answer == session.CurrentAnswer
	record := &entity.SessionAnswer{
		SessionID:     session.ID,
		QuestionText:  session.CurrentQuestionText,
		PlayerAnswer:  answer,
		CorrectAnswer: session.CurrentAnswer,
		IsCorrect:     correct,
		AnsweredAt:    now,
	}

	if correct {
		session.ApplyCorrect()
	} else {
		session.ApplyIncorrect()
	}

	result := &AnswerResult{
		Correct:       correct,
		CorrectAnswer: record.CorrectAnswer,
		Stage:         session.Stage,
	}

	if session.HasReachedTarget() {
		session.End(now, true)
		result.SessionEnded = true
		result.ReachedTarget = true
	} else {
		exclude := make(map[string]struct{}, len(session.SolvedTexts))
		for _, text := range session.SolvedTexts {
			exclude[text] = struct{}{}
		}
		next := s.generator.Generate(session.Stage, age, exclude)
		session.SetQuestion(next.ID, next.Text, next.Answer)
		result.NextQuestion = &QuestionView{ID: next.ID, Text: next.Text}
	}
	result.Score = session.Score
	result.WrongAnswers = session.WrongAnswers
	if result.WrongAnswers == nil {
		result.WrongAnswers = []string{}
	}

	if err := s.sessionRepo.SaveAnswer(tx, record); err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}
	if err := s.sessionRepo.UpdateTx(tx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return result, nil
}

// GetGameEnd возвращает итоги последней завершённой сессии игрока вместе
// с таблицей лидеров и местом игрока в ней. Для исключённых из таблицы
// игроков место не вычисляется.
func (s *GameService) GetGameEnd(playerID uint) (*GameEndResult, error) {
	completed, err := s.sessionRepo.GetCompletedByPlayer(playerID, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed sessions: %w", err)
	}
	if len(completed) == 0 {
		return nil, fmt.Errorf("%w: no completed game session", apperrors.ErrNotFound)
	}
	session := completed[0]

	player, err := s.playerRepo.GetByID(playerID)
	if err != nil {
		return nil, err
	}

	top, err := s.leaderboard.GetTopPlayers(DefaultLeaderboardLimit)
	if err != nil {
		log.Printf("[GameService] Не удалось получить таблицу лидеров: %v", err)
		top = []entity.LeaderboardEntry{}
	}

	rank, err := s.leaderboard.GetRank(playerID)
	if err != nil {
		log.Printf("[GameService] Не удалось вычислить место игрока %d: %v", playerID, err)
		rank = nil
	}

	wrong := session.WrongAnswers
	if wrong == nil {
		wrong = entity.StringArray{}
	}

	return &GameEndResult{
		PlayerName:    player.Name,
		Score:         session.Score,
		Stage:         session.Stage,
		ReachedTarget: session.ReachedTarget,
		WrongAnswers:  wrong,
		Leaderboard:   top,
		Rank:          rank,
	}, nil
}

// getOrCreateSettings возвращает настройки игрока, создавая значения
// по умолчанию при первом обращении
func (s *GameService) getOrCreateSettings(playerID uint) (*entity.Settings, error) {
	settings, err := s.settingsRepo.GetByPlayer(playerID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	settings = entity.DefaultSettings(playerID)
	if err := s.settingsRepo.Create(settings); err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}
	return settings, nil
}

// resolveAge возвращает возраст игрока: значение из запроса, а при его
// отсутствии возраст из профиля. Возраст влияет только на генерацию вопросов.
func (s *GameService) resolveAge(playerID uint, requestAge int) int {
	if requestAge > 0 {
		return requestAge
	}
	player, err := s.playerRepo.GetByID(playerID)
	if err != nil {
		log.Printf("[GameService] Не удалось получить возраст игрока %d: %v", playerID, err)
		return 0
	}
	return player.Age
}
