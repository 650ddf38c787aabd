package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
	"github.com/yourusername/mathquiz-api/internal/service/questiongen"
)

// ============================================================================
// Общие моки репозиториев для тестов сервисов этого пакета
// ============================================================================

// MockSessionRepository реализует repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) CreateTx(tx *gorm.DB, session *entity.GameSession) error {
	args := m.Called(tx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetLatestByPlayer(playerID uint) (*entity.GameSession, error) {
	args := m.Called(playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GameSession), args.Error(1)
}

func (m *MockSessionRepository) GetActiveByPlayer(playerID uint) (*entity.GameSession, error) {
	args := m.Called(playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GameSession), args.Error(1)
}

func (m *MockSessionRepository) GetActiveByPlayerForUpdate(tx *gorm.DB, playerID uint) (*entity.GameSession, error) {
	args := m.Called(tx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GameSession), args.Error(1)
}

func (m *MockSessionRepository) UpdateTx(tx *gorm.DB, session *entity.GameSession) error {
	args := m.Called(tx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) SaveAnswer(tx *gorm.DB, answer *entity.SessionAnswer) error {
	args := m.Called(tx, answer)
	return args.Error(0)
}

func (m *MockSessionRepository) GetSessionAnswers(sessionID uint) ([]entity.SessionAnswer, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.SessionAnswer), args.Error(1)
}

func (m *MockSessionRepository) GetCompletedByPlayer(playerID uint, limit int) ([]entity.GameSession, error) {
	args := m.Called(playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.GameSession), args.Error(1)
}

func (m *MockSessionRepository) GetCompletedByPlayerBetween(playerID uint, from, to time.Time) ([]entity.GameSession, error) {
	args := m.Called(playerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.GameSession), args.Error(1)
}

func (m *MockSessionRepository) GetTopScores(limit int) ([]entity.LeaderboardEntry, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LeaderboardEntry), args.Error(1)
}

func (m *MockSessionRepository) GetBestScore(playerID uint) (*entity.LeaderboardEntry, error) {
	args := m.Called(playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LeaderboardEntry), args.Error(1)
}

func (m *MockSessionRepository) CountBetterScores(score int, achievedAt time.Time, playerID uint) (int64, error) {
	args := m.Called(score, achievedAt, playerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockSettingsRepository реализует repository.SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetByPlayer(playerID uint) (*entity.Settings, error) {
	args := m.Called(playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Settings), args.Error(1)
}

func (m *MockSettingsRepository) Create(settings *entity.Settings) error {
	args := m.Called(settings)
	return args.Error(0)
}

func (m *MockSettingsRepository) Save(settings *entity.Settings) error {
	args := m.Called(settings)
	return args.Error(0)
}

func (m *MockSettingsRepository) SaveTx(tx *gorm.DB, settings *entity.Settings) error {
	args := m.Called(tx, settings)
	return args.Error(0)
}

// MockPlayerRepository реализует repository.PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) Create(player *entity.Player) error {
	args := m.Called(player)
	return args.Error(0)
}

func (m *MockPlayerRepository) GetByID(id uint) (*entity.Player, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetByName(name string) (*entity.Player, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Player), args.Error(1)
}

func (m *MockPlayerRepository) Update(player *entity.Player) error {
	args := m.Called(player)
	return args.Error(0)
}

func (m *MockPlayerRepository) List(search string, limit, offset int) ([]entity.Player, int64, error) {
	args := m.Called(search, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.Player), args.Get(1).(int64), args.Error(2)
}

func (m *MockPlayerRepository) SetLeaderboardExclusion(playerID uint, excluded bool) error {
	args := m.Called(playerID, excluded)
	return args.Error(0)
}

func (m *MockPlayerRepository) Delete(playerID uint) error {
	args := m.Called(playerID)
	return args.Error(0)
}

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepository) Increment(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepository) Expire(key string, expiration time.Duration) error {
	args := m.Called(key, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) TTL(key string) (time.Duration, error) {
	args := m.Called(key)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *MockCacheRepository) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

// ============================================================================
// Хелперы
// ============================================================================

func newTestGameService(
	sessionRepo *MockSessionRepository,
	settingsRepo *MockSettingsRepository,
	playerRepo *MockPlayerRepository,
	cacheRepo *MockCacheRepository,
) *GameService {
	leaderboard := NewLeaderboardService(sessionRepo, playerRepo, cacheRepo)
	// db == nil: транзакционные пути тестируются через startSession и
	// processAnswer, которые принимают tx напрямую
	return NewGameService(sessionRepo, settingsRepo, playerRepo, leaderboard,
		cacheRepo, questiongen.NewGeneratorWithSeed(42), nil)
}

func activeTestSession(playerID uint) *entity.GameSession {
	s := &entity.GameSession{
		ID:           10,
		PlayerID:     playerID,
		Score:        0,
		Stage:        1,
		Difficulty:   1,
		WinningScore: 5,
		WrongAnswers: entity.StringArray{},
		SolvedTexts:  entity.StringArray{},
		StartedAt:    time.Now(),
	}
	s.SetQuestion("q-current", "2 + 3 =", 5)
	return s
}

func endedTargetSession(playerID uint, stage int) *entity.GameSession {
	s := &entity.GameSession{
		ID:            11,
		PlayerID:      playerID,
		Score:         5,
		Stage:         stage,
		WinningScore:  5,
		WrongAnswers:  entity.StringArray{},
		SolvedTexts:   entity.StringArray{},
		StartedAt:     time.Now().Add(-time.Hour),
		ReachedTarget: true,
	}
	endedAt := time.Now().Add(-time.Minute)
	s.EndedAt = &endedAt
	return s
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

// ============================================================================
// startSession (тело транзакции StartGame)
// ============================================================================

func TestGameService_StartGame_NewPlayer(t *testing.T) {
	// Arrange
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	sessionRepo.On("GetActiveByPlayer", uint(1)).Return(nil, apperrors.ErrNotFound)
	settingsRepo.On("GetByPlayer", uint(1)).Return(nil, apperrors.ErrNotFound)
	settingsRepo.On("Create", mock.AnythingOfType("*entity.Settings")).Return(nil)
	sessionRepo.On("GetLatestByPlayer", uint(1)).Return(nil, apperrors.ErrNotFound)
	sessionRepo.On("CreateTx", mock.Anything, mock.AnythingOfType("*entity.GameSession")).Return(nil)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	result, err := svc.startSession(nil, 1, 8, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 1, result.Stage)
	assert.Equal(t, 5, result.WinningScore)
	assert.False(t, result.ReadyToAdvance)
	require.NotNil(t, result.Question, "новая сессия должна начинаться с вопроса")
	assert.NotEmpty(t, result.Question.ID)
	assert.NotEmpty(t, result.Question.Text)
	sessionRepo.AssertExpectations(t)
	settingsRepo.AssertExpectations(t)
}

func TestGameService_StartGame_ResumesActiveSession(t *testing.T) {
	// Arrange
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	active := activeTestSession(1)
	active.Score = 3
	sessionRepo.On("GetActiveByPlayer", uint(1)).Return(active, nil)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	result, err := svc.startSession(nil, 1, 8, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.Score)
	require.NotNil(t, result.Question)
	assert.Equal(t, "q-current", result.Question.ID, "возобновление возвращает тот же вопрос")
	sessionRepo.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything)
}

func TestGameService_StartGame_ReadyToAdvancePrompt(t *testing.T) {
	// Arrange
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	sessionRepo.On("GetActiveByPlayer", uint(1)).Return(nil, apperrors.ErrNotFound)
	settingsRepo.On("GetByPlayer", uint(1)).Return(&entity.Settings{PlayerID: 1, Difficulty: 1, WinningScore: 5, CurrentStage: 2}, nil)
	sessionRepo.On("GetLatestByPlayer", uint(1)).Return(endedTargetSession(1, 2), nil)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	result, err := svc.startSession(nil, 1, 8, nil)

	// Assert
	require.NoError(t, err)
	assert.True(t, result.ReadyToAdvance, "после победы без решения должно вернуться приглашение")
	assert.Nil(t, result.Question, "вместе с приглашением вопрос не выдаётся")
	sessionRepo.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything)
}

func TestGameService_StartGame_AdvanceTrue(t *testing.T) {
	// Arrange
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	latest := endedTargetSession(1, 2)
	settings := &entity.Settings{PlayerID: 1, Difficulty: 1, WinningScore: 5, CurrentStage: 2}

	sessionRepo.On("GetActiveByPlayer", uint(1)).Return(nil, apperrors.ErrNotFound)
	settingsRepo.On("GetByPlayer", uint(1)).Return(settings, nil)
	sessionRepo.On("GetLatestByPlayer", uint(1)).Return(latest, nil)
	sessionRepo.On("UpdateTx", mock.Anything, latest).Return(nil)
	settingsRepo.On("SaveTx", mock.Anything, settings).Return(nil)
	sessionRepo.On("CreateTx", mock.Anything, mock.AnythingOfType("*entity.GameSession")).Return(nil)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	result, err := svc.startSession(nil, 1, 8, boolPtr(true))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.Stage, "переход поднимает уровень на единицу")
	assert.Equal(t, 0, result.Score, "новая сессия начинается с нулевого счёта")
	require.NotNil(t, result.Question)
	assert.True(t, latest.AdvanceResolved, "предложение перехода должно быть помечено решённым")
	assert.Equal(t, 3, settings.CurrentStage, "новый уровень сохраняется в настройках")
	sessionRepo.AssertExpectations(t)
	settingsRepo.AssertExpectations(t)
}

func TestGameService_StartGame_AdvanceFalse(t *testing.T) {
	// Arrange
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	latest := endedTargetSession(1, 2)
	settings := &entity.Settings{PlayerID: 1, Difficulty: 1, WinningScore: 5, CurrentStage: 2}

	sessionRepo.On("GetActiveByPlayer", uint(1)).Return(nil, apperrors.ErrNotFound)
	settingsRepo.On("GetByPlayer", uint(1)).Return(settings, nil)
	sessionRepo.On("GetLatestByPlayer", uint(1)).Return(latest, nil)
	sessionRepo.On("UpdateTx", mock.Anything, latest).Return(nil)
	sessionRepo.On("CreateTx", mock.Anything, mock.AnythingOfType("*entity.GameSession")).Return(nil)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	result, err := svc.startSession(nil, 1, 8, boolPtr(false))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stage, "отказ от перехода оставляет прежний уровень")
	assert.Equal(t, 0, result.Score)
	require.NotNil(t, result.Question)
	settingsRepo.AssertNotCalled(t, "SaveTx", mock.Anything, mock.Anything)
	sessionRepo.AssertExpectations(t)
}

func TestGameService_StartGame_AdvanceCapsAtMaxStage(t *testing.T) {
	// Arrange
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	latest := endedTargetSession(1, entity.MaxStage)
	settings := &entity.Settings{PlayerID: 1, Difficulty: 1, WinningScore: 5, CurrentStage: entity.MaxStage}

	sessionRepo.On("GetActiveByPlayer", uint(1)).Return(nil, apperrors.ErrNotFound)
	settingsRepo.On("GetByPlayer", uint(1)).Return(settings, nil)
	sessionRepo.On("GetLatestByPlayer", uint(1)).Return(latest, nil)
	sessionRepo.On("UpdateTx", mock.Anything, latest).Return(nil)
	sessionRepo.On("CreateTx", mock.Anything, mock.AnythingOfType("*entity.GameSession")).Return(nil)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	result, err := svc.startSession(nil, 1, 8, boolPtr(true))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.MaxStage, result.Stage, "выше максимального уровня подняться нельзя")
	settingsRepo.AssertNotCalled(t, "SaveTx", mock.Anything, mock.Anything)
}

func TestGameService_StartGame_AdvanceSaveFailureAborts(t *testing.T) {
	// Arrange: сохранение нового уровня падает — создания сессии быть не должно,
	// транзакция StartGame откатит и погашение приглашения
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	latest := endedTargetSession(1, 2)
	settings := &entity.Settings{PlayerID: 1, Difficulty: 1, WinningScore: 5, CurrentStage: 2}

	sessionRepo.On("GetActiveByPlayer", uint(1)).Return(nil, apperrors.ErrNotFound)
	settingsRepo.On("GetByPlayer", uint(1)).Return(settings, nil)
	sessionRepo.On("GetLatestByPlayer", uint(1)).Return(latest, nil)
	sessionRepo.On("UpdateTx", mock.Anything, latest).Return(nil)
	settingsRepo.On("SaveTx", mock.Anything, settings).Return(assert.AnError)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	result, err := svc.startSession(nil, 1, 8, boolPtr(true))

	// Assert
	require.Error(t, err)
	assert.Nil(t, result)
	sessionRepo.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything)
}

// ============================================================================
// processAnswer (тело транзакции SubmitAnswer)
// ============================================================================

func TestGameService_ProcessAnswer_Correct(t *testing.T) {
	// Arrange
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	session := activeTestSession(1)
	sessionRepo.On("GetActiveByPlayerForUpdate", mock.Anything, uint(1)).Return(session, nil)
	sessionRepo.On("SaveAnswer", mock.Anything, mock.AnythingOfType("*entity.SessionAnswer")).Return(nil)
	sessionRepo.On("UpdateTx", mock.Anything, session).Return(nil)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	result, err := svc.processAnswer(nil, 1, "q-current", intPtr(5), 8)

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 5, result.CorrectAnswer)
	assert.False(t, result.SessionEnded)
	require.NotNil(t, result.NextQuestion)
	assert.NotEqual(t, "q-current", result.NextQuestion.ID, "после ответа выдается новый вопрос")
	assert.Equal(t, result.NextQuestion.ID, session.CurrentQuestionID)
	sessionRepo.AssertExpectations(t)
}

func TestGameService_ProcessAnswer_StaleQuestion(t *testing.T) {
	// Arrange
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	session := activeTestSession(1)
	sessionRepo.On("GetActiveByPlayerForUpdate", mock.Anything, uint(1)).Return(session, nil)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	result, err := svc.processAnswer(nil, 1, "q-old", intPtr(5), 8)

	// Assert
	require.ErrorIs(t, err, apperrors.ErrStaleQuestion)
	assert.Nil(t, result)
	assert.Equal(t, 0, session.Score, "счёт не должен меняться при устаревшем вопросе")
	sessionRepo.AssertNotCalled(t, "SaveAnswer", mock.Anything, mock.Anything)
	sessionRepo.AssertNotCalled(t, "UpdateTx", mock.Anything, mock.Anything)
}

func TestGameService_ProcessAnswer_NilAnswerIncorrect(t *testing.T) {
	// Arrange
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	session := activeTestSession(1)
	sessionRepo.On("GetActiveByPlayerForUpdate", mock.Anything, uint(1)).Return(session, nil)
	sessionRepo.On("SaveAnswer", mock.Anything, mock.AnythingOfType("*entity.SessionAnswer")).Return(nil)
	sessionRepo.On("UpdateTx", mock.Anything, session).Return(nil)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act: ответ не дан (таймаут на клиенте)
	result, err := svc.processAnswer(nil, 1, "q-current", nil, 8)

	// Assert
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Equal(t, 0, result.Score, "счёт не уходит ниже нуля")
	require.Len(t, session.WrongAnswers, 1)
	assert.Equal(t, "2 + 3 =", session.WrongAnswers[0])
}

func TestGameService_ProcessAnswer_ReturnsWrongAnswerLog(t *testing.T) {
	// Arrange
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	session := activeTestSession(1)
	sessionRepo.On("GetActiveByPlayerForUpdate", mock.Anything, uint(1)).Return(session, nil)
	sessionRepo.On("SaveAnswer", mock.Anything, mock.AnythingOfType("*entity.SessionAnswer")).Return(nil)
	sessionRepo.On("UpdateTx", mock.Anything, session).Return(nil)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act: неправильный ответ
	result, err := svc.processAnswer(nil, 1, "q-current", intPtr(99), 8)

	// Assert: журнал ошибок возвращается вместе с ответом, клиент
	// показывает его прямо во время игры
	require.NoError(t, err)
	assert.False(t, result.Correct)
	require.Len(t, result.WrongAnswers, 1)
	assert.Equal(t, "2 + 3 =", result.WrongAnswers[0])

	// Правильный ответ не пополняет журнал, но журнал по-прежнему в ответе
	result, err = svc.processAnswer(nil, 1, session.CurrentQuestionID, intPtr(session.CurrentAnswer), 8)
	require.NoError(t, err)
	assert.True(t, result.Correct)
	require.NotNil(t, result.WrongAnswers)
	assert.Len(t, result.WrongAnswers, 1)
}

func TestGameService_ProcessAnswer_NoActiveSession(t *testing.T) {
	// Arrange: активной сессии нет — например, её только что завершил
	// конкурентный ответ
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	sessionRepo.On("GetActiveByPlayerForUpdate", mock.Anything, uint(1)).Return(nil, apperrors.ErrNotFound)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	result, err := svc.processAnswer(nil, 1, "q-current", intPtr(5), 8)

	// Assert: клиент получает тот же сигнал пересинхронизации, что и при
	// устаревшем вопросе
	require.ErrorIs(t, err, apperrors.ErrStaleQuestion)
	assert.Nil(t, result)
}

func TestGameService_ProcessAnswer_ReachesTarget(t *testing.T) {
	// Arrange
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	session := activeTestSession(1)
	session.Score = 4
	sessionRepo.On("GetActiveByPlayerForUpdate", mock.Anything, uint(1)).Return(session, nil)
	sessionRepo.On("SaveAnswer", mock.Anything, mock.AnythingOfType("*entity.SessionAnswer")).Return(nil)
	sessionRepo.On("UpdateTx", mock.Anything, session).Return(nil)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	result, err := svc.processAnswer(nil, 1, "q-current", intPtr(5), 8)

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 5, result.Score)
	assert.True(t, result.SessionEnded, "достижение цели немедленно завершает сессию")
	assert.True(t, result.ReachedTarget)
	assert.Nil(t, result.NextQuestion, "после завершения новый вопрос не выдаётся")
	assert.False(t, session.IsActive())
}

func TestGameService_ProcessAnswer_FiveCorrectScenario(t *testing.T) {
	// Arrange: сессия с выигрышным счётом 5, пять правильных ответов подряд
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	session := activeTestSession(1)
	sessionRepo.On("GetActiveByPlayerForUpdate", mock.Anything, uint(1)).Return(session, nil)
	sessionRepo.On("SaveAnswer", mock.Anything, mock.AnythingOfType("*entity.SessionAnswer")).Return(nil)
	sessionRepo.On("UpdateTx", mock.Anything, session).Return(nil)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	var last *AnswerResult
	for i := 0; i < 5; i++ {
		answer := session.CurrentAnswer
		result, err := svc.processAnswer(nil, 1, session.CurrentQuestionID, &answer, 8)
		require.NoError(t, err, "ответ %d должен обработаться", i+1)
		require.True(t, result.Correct)
		last = result
	}

	// Assert
	assert.Equal(t, 5, last.Score)
	assert.True(t, last.SessionEnded)
	assert.True(t, last.ReachedTarget)
	assert.Len(t, session.SolvedTexts, 5, "каждый решённый вопрос запоминается")
}

func TestGameService_SubmitAnswer_EmptyQuestionID(t *testing.T) {
	// Arrange
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	result, err := svc.SubmitAnswer(1, "", intPtr(5))

	// Assert
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Nil(t, result)
}

func TestGameService_SubmitAnswer_DuplicateSubmission(t *testing.T) {
	// Arrange: замок на пару игрок+вопрос уже стоит — повторный клик
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	cacheRepo.On("SetNX", "game:answer:once:1:q-current", mock.Anything, mock.Anything).
		Return(false, nil)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	result, err := svc.SubmitAnswer(1, "q-current", intPtr(5))

	// Assert: повтор отсекается до обращения к базе
	require.ErrorIs(t, err, apperrors.ErrStaleQuestion)
	assert.Nil(t, result)
	sessionRepo.AssertNotCalled(t, "GetActiveByPlayerForUpdate", mock.Anything, mock.Anything)
}

// ============================================================================
// GetGameEnd
// ============================================================================

func TestGameService_GetGameEnd(t *testing.T) {
	// Arrange
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	ended := endedTargetSession(1, 2)
	ended.WrongAnswers = entity.StringArray{"7 - 3 ="}
	top := []entity.LeaderboardEntry{
		{PlayerID: 2, Name: "Маша", Score: 8, AchievedAt: time.Now().Add(-2 * time.Hour)},
		{PlayerID: 1, Name: "Петя", Score: 5, AchievedAt: *ended.EndedAt},
	}

	sessionRepo.On("GetCompletedByPlayer", uint(1), 1).Return([]entity.GameSession{*ended}, nil)
	playerRepo.On("GetByID", uint(1)).Return(&entity.Player{ID: 1, Name: "Петя"}, nil)
	cacheRepo.On("GetJSON", "leaderboard:top:10", mock.Anything).Return(apperrors.ErrNotFound)
	sessionRepo.On("GetTopScores", 10).Return(top, nil)
	cacheRepo.On("SetJSON", "leaderboard:top:10", top, mock.Anything).Return(nil)
	sessionRepo.On("GetBestScore", uint(1)).Return(&top[1], nil)
	sessionRepo.On("CountBetterScores", 5, *ended.EndedAt, uint(1)).Return(int64(1), nil)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	result, err := svc.GetGameEnd(1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Петя", result.PlayerName)
	assert.Equal(t, 5, result.Score)
	assert.True(t, result.ReachedTarget)
	assert.Equal(t, []string{"7 - 3 ="}, result.WrongAnswers)
	assert.Len(t, result.Leaderboard, 2)
	require.NotNil(t, result.Rank)
	assert.Equal(t, 2, *result.Rank)
}

func TestGameService_GetGameEnd_NoCompletedSessions(t *testing.T) {
	// Arrange
	sessionRepo := new(MockSessionRepository)
	settingsRepo := new(MockSettingsRepository)
	playerRepo := new(MockPlayerRepository)
	cacheRepo := new(MockCacheRepository)

	sessionRepo.On("GetCompletedByPlayer", uint(1), 1).Return([]entity.GameSession{}, nil)

	svc := newTestGameService(sessionRepo, settingsRepo, playerRepo, cacheRepo)

	// Act
	result, err := svc.GetGameEnd(1)

	// Assert
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Nil(t, result)
}
