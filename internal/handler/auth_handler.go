package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/mathquiz-api/internal/handler/dto"
	"github.com/yourusername/mathquiz-api/internal/service"
)

// AuthHandler обрабатывает запросы регистрации и входа
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest представляет запрос на регистрацию игрока
type RegisterRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
	Age  int    `json:"age" binding:"omitempty,min=1,max=17"`
	Pin  string `json:"pin" binding:"required,min=4,max=10"`
}

// LoginRequest представляет запрос на вход игрока
type LoginRequest struct {
	Name string `json:"name" binding:"required"`
	Pin  string `json:"pin" binding:"required"`
}

// AdminLoginRequest представляет запрос на вход администратора
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register обрабатывает запрос на регистрацию игрока
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := h.authService.Register(req.Name, req.Age, req.Pin)
	if err != nil {
		respondError(c, err)
		return
	}

	response := dto.NewPlayerResponse(player)
	c.JSON(http.StatusCreated, response)
}

// Login обрабатывает запрос на вход игрока
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, player, err := h.authService.Login(req.Name, req.Pin)
	if err != nil {
		respondError(c, err)
		return
	}

	playerResponse := dto.NewPlayerResponse(player)
	c.JSON(http.StatusOK, dto.AuthResponse{
		AccessToken: token,
		Player:      &playerResponse,
	})
}

// AdminLogin обрабатывает запрос на вход администратора
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.AdminLogin(req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{AccessToken: token})
}
