package dto

import (
	"time"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
)

// PlayerResponse представляет игрока в формате для ответа клиенту.
// PIN-код никогда не попадает в ответ.
type PlayerResponse struct {
	ID                      uint      `json:"id"`
	Name                    string    `json:"name"`
	Age                     int       `json:"age"`
	ExcludedFromLeaderboard bool      `json:"excluded_from_leaderboard"`
	SelectedCollectibleID   *uint     `json:"selected_collectible_id,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
}

// NewPlayerResponse создает DTO из сущности игрока
func NewPlayerResponse(player *entity.Player) PlayerResponse {
	return PlayerResponse{
		ID:                      player.ID,
		Name:                    player.Name,
		Age:                     player.Age,
		ExcludedFromLeaderboard: player.ExcludedFromLeaderboard,
		SelectedCollectibleID:   player.SelectedCollectibleID,
		CreatedAt:               player.CreatedAt,
	}
}

// NewPlayerListResponse создает список DTO из сущностей игроков
func NewPlayerListResponse(players []entity.Player) []PlayerResponse {
	responses := make([]PlayerResponse, 0, len(players))
	for i := range players {
		responses = append(responses, NewPlayerResponse(&players[i]))
	}
	return responses
}

// AuthResponse представляет ответ на успешный вход
type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	Player      *PlayerResponse `json:"player,omitempty"`
}
