package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/mathquiz-api/internal/middleware"
	"github.com/yourusername/mathquiz-api/internal/service"
)

// CollectibleHandler обрабатывает запросы коллекции игрока
type CollectibleHandler struct {
	collectibleService *service.CollectibleService
}

// NewCollectibleHandler создает новый обработчик коллекции
func NewCollectibleHandler(collectibleService *service.CollectibleService) *CollectibleHandler {
	return &CollectibleHandler{collectibleService: collectibleService}
}

// CollectibleRequest представляет запрос с идентификатором предмета
type CollectibleRequest struct {
	CollectibleID uint `json:"collectible_id" binding:"required"`
}

// GetAvailable возвращает весь каталог предметов
func (h *CollectibleHandler) GetAvailable(c *gin.Context) {
	collectibles, err := h.collectibleService.GetAvailable()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collectibles": collectibles})
}

// GetMyCollection возвращает предметы, открытые игроком
func (h *CollectibleHandler) GetMyCollection(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	collectibles, err := h.collectibleService.GetPlayerCollection(playerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collectibles": collectibles})
}

// GetUnlockable возвращает предметы, доступные игроку для открытия
func (h *CollectibleHandler) GetUnlockable(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	collectibles, err := h.collectibleService.GetUnlockable(playerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collectibles": collectibles})
}

// GetSelected возвращает выбранный игроком предмет
func (h *CollectibleHandler) GetSelected(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	collectible, err := h.collectibleService.GetSelected(playerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collectible": collectible})
}

// Unlock открывает предмет для игрока. Повторное открытие не ошибка:
// клиент получает already_owned=true.
func (h *CollectibleHandler) Unlock(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CollectibleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.collectibleService.Unlock(playerID, req.CollectibleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Select делает открытый предмет активным
func (h *CollectibleHandler) Select(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CollectibleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collectible, err := h.collectibleService.Select(playerID, req.CollectibleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collectible": collectible})
}
