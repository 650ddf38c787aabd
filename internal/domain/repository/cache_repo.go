package repository

import (
	"time"
)

// CacheRepository определяет методы для работы с кешем (Redis)
type CacheRepository interface {
	Delete(key string) error
	Increment(key string) (int64, error)
	Expire(key string, expiration time.Duration) error
	// TTL возвращает оставшееся время жизни ключа
	TTL(key string) (time.Duration, error)

	// GetJSON/SetJSON работают со структурами, сериализованными в JSON
	GetJSON(key string, dest interface{}) error
	SetJSON(key string, value interface{}, expiration time.Duration) error

	// SetNX устанавливает значение, только если ключ не существует.
	// Возвращает true, если ключ был установлен.
	SetNX(key string, value interface{}, expiration time.Duration) (bool, error)
}
