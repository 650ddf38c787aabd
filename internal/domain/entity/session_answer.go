package entity

import (
	"time"
)

// SessionAnswer представляет один ответ игрока в рамках сессии.
// PlayerAnswer == nil означает, что ответ не был дан (таймаут на клиенте);
// такой ответ всегда засчитывается как неправильный.
type SessionAnswer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SessionID     uint      `gorm:"not null;index" json:"session_id"`
	QuestionText  string    `gorm:"size:100;not null" json:"question_text"`
	PlayerAnswer  *int      `json:"player_answer,omitempty"`
	CorrectAnswer int       `gorm:"not null" json:"correct_answer"`
	IsCorrect     bool      `gorm:"not null" json:"is_correct"`
	AnsweredAt    time.Time `gorm:"not null" json:"answered_at"`
}

// TableName определяет имя таблицы для GORM
func (SessionAnswer) TableName() string {
	return "session_answers"
}
