package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/mathquiz-api/internal/handler/dto"
	"github.com/yourusername/mathquiz-api/internal/service"
)

// AdminHandler обрабатывает административные запросы: список игроков,
// статистика, управление видимостью в таблице лидеров, экспорт
type AdminHandler struct {
	playerService *service.PlayerService
}

// NewAdminHandler создает новый административный обработчик
func NewAdminHandler(playerService *service.PlayerService) *AdminHandler {
	return &AdminHandler{playerService: playerService}
}

// SetExclusionRequest представляет запрос на изменение видимости игрока
type SetExclusionRequest struct {
	Excluded *bool `json:"excluded" binding:"required"`
}

// ListPlayers возвращает страницу списка игроков с поиском по имени
func (h *AdminHandler) ListPlayers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	search := c.Query("search")

	list, err := h.playerService.List(search, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"players":   dto.NewPlayerListResponse(list.Players),
		"total":     list.Total,
		"page":      list.Page,
		"page_size": list.PageSize,
	})
}

// GetPlayerStats возвращает статистику игрока по завершённым сессиям
func (h *AdminHandler) GetPlayerStats(c *gin.Context) {
	playerID := c.MustGet("playerID").(uint)

	stats, err := h.playerService.GetStats(playerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetPlayerTrends возвращает сводку прохождений игрока за неделю или месяц
func (h *AdminHandler) GetPlayerTrends(c *gin.Context) {
	playerID := c.MustGet("playerID").(uint)
	period := c.DefaultQuery("period", "week")

	trends, err := h.playerService.GetTrends(playerID, period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, trends)
}

// ComparePlayerPeriods сравнивает прохождения игрока за текущий
// и предыдущий период
func (h *AdminHandler) ComparePlayerPeriods(c *gin.Context) {
	playerID := c.MustGet("playerID").(uint)
	period := c.DefaultQuery("period", "week")

	comparison, err := h.playerService.ComparePeriods(playerID, period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comparison)
}

// SetPlayerExclusion включает или выключает скрытие игрока из таблицы лидеров
func (h *AdminHandler) SetPlayerExclusion(c *gin.Context) {
	playerID := c.MustGet("playerID").(uint)

	var req SetExclusionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.playerService.SetExclusion(playerID, *req.Excluded); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"player_id": playerID, "excluded": *req.Excluded})
}

// DeletePlayer удаляет игрока со всеми его данными
func (h *AdminHandler) DeletePlayer(c *gin.Context) {
	playerID := c.MustGet("playerID").(uint)

	if err := h.playerService.Delete(playerID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Player deleted"})
}

// ExportPlayers выгружает список игроков со статистикой в формате xlsx
func (h *AdminHandler) ExportPlayers(c *gin.Context) {
	list, err := h.playerService.List("", 1, 100)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("players_%s", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Игроки"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[AdminHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"ID", "Имя", "Возраст", "Игр сыграно", "Лучший счёт", "Скрыт из лидеров", "Зарегистрирован"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[AdminHandler] Ошибка записи заголовков: %v", err)
	}

	for i := range list.Players {
		player := &list.Players[i]

		games, best := 0, 0
		stats, statsErr := h.playerService.GetStats(player.ID)
		if statsErr != nil {
			log.Printf("[AdminHandler] Не удалось получить статистику игрока %d: %v", player.ID, statsErr)
		} else {
			games = stats.TotalGames
			best = stats.BestScore
		}

		row := []interface{}{
			player.ID,
			player.Name,
			player.Age,
			games,
			best,
			player.ExcludedFromLeaderboard,
			player.CreatedAt.Format("2006-01-02 15:04"),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[AdminHandler] Ошибка записи строки %s: %v", cell, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[AdminHandler] Ошибка завершения записи: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
		return
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[AdminHandler] Ошибка отправки файла: %v", err)
	}
}
