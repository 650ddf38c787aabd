package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/mathquiz-api/pkg/auth"
)

// Ключи контекста Gin, заполняемые после успешной аутентификации
const (
	ContextPlayerID   = "player_id"
	ContextPlayerName = "player_name"
	ContextRole       = "role"
)

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware создает новый middleware аутентификации
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// RequireAuth проверяет токен из заголовка Authorization и кладёт
// player_id, player_name и role в контекст запроса
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "error_type": "token_missing"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_format"})
			c.Abort()
			return
		}

		claims, err := m.jwtService.ParseToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": "token_invalid"})
			c.Abort()
			return
		}

		c.Set(ContextPlayerID, claims.PlayerID)
		c.Set(ContextPlayerName, claims.Name)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// AdminOnly пропускает только запросы с ролью admin.
// Используется после RequireAuth.
func (m *AuthMiddleware) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists || role != auth.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required", "error_type": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// PlayerID возвращает идентификатор аутентифицированного игрока из контекста
func PlayerID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextPlayerID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
