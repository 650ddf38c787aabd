package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/mathquiz-api/internal/middleware"
	"github.com/yourusername/mathquiz-api/internal/service"
)

// GameHandler обрабатывает игровые запросы: старт, ответы, итоги
type GameHandler struct {
	gameService *service.GameService
}

// NewGameHandler создает новый игровой обработчик
func NewGameHandler(gameService *service.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

// StartGameRequest представляет запрос на старт игры.
// AdvanceStage передаётся только в ответ на приглашение перейти
// на следующий уровень.
type StartGameRequest struct {
	PlayerAge    int   `json:"player_age" binding:"omitempty,min=1,max=17"`
	AdvanceStage *bool `json:"advance_stage,omitempty"`
}

// SubmitAnswerRequest представляет ответ на текущий вопрос.
// Answer == nil означает, что время на ответ истекло.
type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Answer     *int   `json:"answer,omitempty"`
}

// StartGame обрабатывает запрос на старт или возобновление игры
func (h *GameHandler) StartGame(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Тело может отсутствовать: обычный старт без параметров
	var req StartGameRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.gameService.StartGame(playerID, req.PlayerAge, req.AdvanceStage)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitAnswer обрабатывает ответ на текущий вопрос
func (h *GameHandler) SubmitAnswer(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.gameService.SubmitAnswer(playerID, req.QuestionID, req.Answer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetGameEnd возвращает итоги последней завершённой сессии
func (h *GameHandler) GetGameEnd(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.gameService.GetGameEnd(playerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
