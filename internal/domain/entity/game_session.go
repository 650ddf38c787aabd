package entity

import (
	"time"
)

// MaxWrongAnswersLogged ограничивает журнал неправильных ответов сессии:
// клиенту показываются только последние записи, память сессии не растёт
// бесконечно при длинной серии ошибок.
const MaxWrongAnswersLogged = 10

// GameSession представляет одно прохождение игры от старта до завершения.
// После установки EndedAt сессия становится неизменяемой и используется
// только как завершённая запись для статистики и таблицы лидеров.
type GameSession struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	PlayerID uint `gorm:"not null;index" json:"player_id"`

	Score        int `gorm:"not null;default:0" json:"score"`
	Stage        int `gorm:"not null;default:1" json:"stage"`
	Difficulty   int `gorm:"not null;default:1" json:"difficulty"`
	WinningScore int `gorm:"not null;default:5" json:"winning_score"`

	// Текущий (не отвеченный) вопрос. В сессии всегда ровно один такой вопрос.
	CurrentQuestionID   string `gorm:"size:36;not null;default:''" json:"-"`
	CurrentQuestionText string `gorm:"size:100;not null;default:''" json:"-"`
	CurrentAnswer       int    `gorm:"not null;default:0" json:"-"`

	// WrongAnswers — журнал текстов неправильно отвеченных вопросов (последние 10)
	WrongAnswers StringArray `gorm:"type:jsonb;not null;default:'[]'" json:"wrong_answers"`

	// SolvedTexts — тексты правильно решённых вопросов; такие вопросы
	// не выдаются в этой сессии повторно
	SolvedTexts StringArray `gorm:"type:jsonb;not null;default:'[]'" json:"-"`

	// ReachedTarget показывает, что сессия завершилась достижением
	// выигрышного счёта (а не сбросом настроек или новой игрой)
	ReachedTarget bool `gorm:"not null;default:false" json:"reached_target"`

	// AdvanceResolved показывает, что игрок уже ответил на предложение
	// перейти на следующий уровень после этой сессии
	AdvanceResolved bool `gorm:"not null;default:false" json:"-"`

	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time `gorm:"index" json:"ended_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (GameSession) TableName() string {
	return "game_sessions"
}

// IsActive возвращает true, если сессия ещё не завершена
func (s *GameSession) IsActive() bool {
	return s.EndedAt == nil
}

// HasReachedTarget возвращает true, если счёт достиг выигрышного порога
func (s *GameSession) HasReachedTarget() bool {
	return s.Score >= s.WinningScore
}

// IsCurrentQuestion проверяет, совпадает ли идентификатор с текущим вопросом сессии
func (s *GameSession) IsCurrentQuestion(questionID string) bool {
	return questionID != "" && questionID == s.CurrentQuestionID
}

// SetQuestion назначает сессии новый текущий вопрос
func (s *GameSession) SetQuestion(id, text string, answer int) {
	s.CurrentQuestionID = id
	s.CurrentQuestionText = text
	s.CurrentAnswer = answer
}

// ApplyCorrect засчитывает правильный ответ: счёт +1, текст вопроса
// запоминается, чтобы не выдавать его повторно
func (s *GameSession) ApplyCorrect() {
	s.Score++
	s.SolvedTexts = append(s.SolvedTexts, s.CurrentQuestionText)
}

// ApplyIncorrect засчитывает неправильный ответ: счёт -1 с нижней границей 0,
// текст вопроса добавляется в журнал ошибок (хранятся последние записи)
func (s *GameSession) ApplyIncorrect() {
	if s.Score > 0 {
		s.Score--
	}
	s.WrongAnswers = append(s.WrongAnswers, s.CurrentQuestionText)
	if len(s.WrongAnswers) > MaxWrongAnswersLogged {
		s.WrongAnswers = s.WrongAnswers[len(s.WrongAnswers)-MaxWrongAnswersLogged:]
	}
}

// End завершает сессию. reachedTarget=true означает победу (достигнут
// выигрышный счёт), после которой игроку предлагается переход на уровень выше.
func (s *GameSession) End(at time.Time, reachedTarget bool) {
	s.EndedAt = &at
	s.ReachedTarget = reachedTarget
	s.CurrentQuestionID = ""
	s.CurrentQuestionText = ""
	s.CurrentAnswer = 0
}
