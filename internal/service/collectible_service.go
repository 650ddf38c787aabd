package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/mathquiz-api/internal/domain/entity"
	"github.com/yourusername/mathquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/mathquiz-api/internal/pkg/errors"
)

// CollectibleService управляет коллекцией игрока: каталог предметов,
// открытие наград за уровни и выбор активного предмета.
type CollectibleService struct {
	collectibleRepo repository.CollectibleRepository
	playerRepo      repository.PlayerRepository
	settingsRepo    repository.SettingsRepository
}

// NewCollectibleService создает новый сервис коллекции
func NewCollectibleService(
	collectibleRepo repository.CollectibleRepository,
	playerRepo repository.PlayerRepository,
	settingsRepo repository.SettingsRepository,
) *CollectibleService {
	return &CollectibleService{
		collectibleRepo: collectibleRepo,
		playerRepo:      playerRepo,
		settingsRepo:    settingsRepo,
	}
}

// UnlockResult — результат открытия предмета. AlreadyOwned=true означает,
// что предмет был открыт ранее; повторное открытие не считается ошибкой.
type UnlockResult struct {
	Collectible  *entity.Collectible `json:"collectible"`
	AlreadyOwned bool                `json:"already_owned"`
}

// GetAvailable возвращает весь каталог предметов
func (s *CollectibleService) GetAvailable() ([]entity.Collectible, error) {
	return s.collectibleRepo.ListAll()
}

// GetPlayerCollection возвращает предметы, открытые игроком
func (s *CollectibleService) GetPlayerCollection(playerID uint) ([]entity.Collectible, error) {
	return s.collectibleRepo.GetOwnedByPlayer(playerID)
}

// GetSelected возвращает выбранный игроком предмет; nil, если ничего не выбрано
func (s *CollectibleService) GetSelected(playerID uint) (*entity.Collectible, error) {
	player, err := s.playerRepo.GetByID(playerID)
	if err != nil {
		return nil, err
	}
	if player.SelectedCollectibleID == nil {
		return nil, nil
	}
	return s.collectibleRepo.GetByID(*player.SelectedCollectibleID)
}

// GetUnlockable возвращает предметы, доступные игроку для открытия:
// ещё не открытые и с уровнем не выше текущего уровня игрока
func (s *CollectibleService) GetUnlockable(playerID uint) ([]entity.Collectible, error) {
	stage, err := s.currentStage(playerID)
	if err != nil {
		return nil, err
	}

	all, err := s.collectibleRepo.ListAll()
	if err != nil {
		return nil, err
	}
	owned, err := s.collectibleRepo.GetOwnedByPlayer(playerID)
	if err != nil {
		return nil, err
	}

	ownedIDs := make(map[uint]struct{}, len(owned))
	for _, c := range owned {
		ownedIDs[c.ID] = struct{}{}
	}

	unlockable := make([]entity.Collectible, 0)
	for _, c := range all {
		if _, has := ownedIDs[c.ID]; has {
			continue
		}
		if c.IsUnlockableAt(stage) {
			unlockable = append(unlockable, c)
		}
	}
	return unlockable, nil
}

// Unlock открывает предмет для игрока. Операция идемпотентна: уже открытый
// предмет возвращается с AlreadyOwned=true. Предмет с уровнем выше текущего
// уровня игрока открыть нельзя.
func (s *CollectibleService) Unlock(playerID, collectibleID uint) (*UnlockResult, error) {
	collectible, err := s.collectibleRepo.GetByID(collectibleID)
	if err != nil {
		return nil, err
	}

	stage, err := s.currentStage(playerID)
	if err != nil {
		return nil, err
	}
	if !collectible.IsUnlockableAt(stage) {
		return nil, fmt.Errorf("%w: collectible requires stage %d, player is at stage %d",
			apperrors.ErrForbidden, collectible.Level, stage)
	}

	ownership := &entity.PlayerCollectible{
		PlayerID:      playerID,
		CollectibleID: collectibleID,
		UnlockedAt:    time.Now(),
	}
	if err := s.collectibleRepo.CreateOwnership(ownership); err != nil {
		// Гонка двух одновременных открытий схлопывается уникальным
		// индексом; оба запроса получают один и тот же ответ
		if errors.Is(err, apperrors.ErrAlreadyUnlocked) {
			return &UnlockResult{Collectible: collectible, AlreadyOwned: true}, nil
		}
		return nil, fmt.Errorf("failed to unlock collectible: %w", err)
	}

	log.Printf("[CollectibleService] Игрок %d открыл предмет %d (%s)",
		playerID, collectible.ID, collectible.Name)

	return &UnlockResult{Collectible: collectible, AlreadyOwned: false}, nil
}

// Select делает предмет активным. Требует, чтобы предмет был открыт игроком.
// Повторный выбор уже активного предмета просто подтверждается.
func (s *CollectibleService) Select(playerID, collectibleID uint) (*entity.Collectible, error) {
	collectible, err := s.collectibleRepo.GetByID(collectibleID)
	if err != nil {
		return nil, err
	}

	if _, err := s.collectibleRepo.GetOwnership(playerID, collectibleID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: collectible is not unlocked", apperrors.ErrForbidden)
		}
		return nil, err
	}

	player, err := s.playerRepo.GetByID(playerID)
	if err != nil {
		return nil, err
	}
	if player.SelectedCollectibleID != nil && *player.SelectedCollectibleID == collectibleID {
		return collectible, nil
	}

	player.SelectedCollectibleID = &collectibleID
	if err := s.playerRepo.Update(player); err != nil {
		return nil, fmt.Errorf("failed to select collectible: %w", err)
	}
	return collectible, nil
}

// currentStage возвращает текущий уровень игрока; при отсутствии настроек
// берётся уровень по умолчанию
func (s *CollectibleService) currentStage(playerID uint) (int, error) {
	settings, err := s.settingsRepo.GetByPlayer(playerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return entity.MinStage, nil
		}
		return 0, err
	}
	return settings.CurrentStage, nil
}
