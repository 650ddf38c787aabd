package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, неверный PIN).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у игрока недостаточно прав для действия
	// (например, выбор неоткрытого предмета коллекции).
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных
	// (настройки вне допустимых границ и т.п.).
	ErrValidation = errors.New("validation failed")

	// ErrStaleQuestion используется, когда ответ ссылается на вопрос,
	// который уже не является текущим для сессии. Клиент должен
	// запросить актуальное состояние и повторить.
	ErrStaleQuestion = errors.New("question is no longer current")

	// ErrAlreadyUnlocked используется при повторной попытке открыть
	// уже полученный предмет коллекции. Для игрока это не ошибка.
	ErrAlreadyUnlocked = errors.New("collectible already unlocked")

	// ErrConflict используется для конфликтов состояния
	// (например, попытка изменить завершённую сессию).
	ErrConflict = errors.New("resource state conflict")
)
