package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/mathquiz-api/internal/middleware"
	"github.com/yourusername/mathquiz-api/internal/service"
)

// SettingsHandler обрабатывает запросы игровых настроек
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler создает новый обработчик настроек
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// UpdateSettingsRequest представляет запрос на изменение настроек.
// Не переданные поля остаются без изменений.
type UpdateSettingsRequest struct {
	Difficulty   *int `json:"difficulty,omitempty"`
	WinningScore *int `json:"winning_score,omitempty"`
	CurrentStage *int `json:"current_stage,omitempty"`
}

// GetSettings возвращает настройки игрока
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	settings, err := h.settingsService.Get(playerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings обновляет настройки игрока
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.settingsService.Save(playerID, req.Difficulty, req.WinningScore, req.CurrentStage)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}
