package models

import "errors"

// Стандартные ошибки приложения. Сервисы оборачивают их через fmt.Errorf("%w: ..."),
// хендлеры сопоставляют через errors.Is в handleServiceError.
var (
	// Общие ошибки ресурсов/БД
	ErrNotFound      = errors.New("resource not found")
	ErrStoryNotFound = errors.New("story not found")
	ErrRunNotFound   = errors.New("run not found")

	// Ошибки аутентификации/авторизации
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Ошибки токенов
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Ошибки реестра биндингов (отклоняются при создании, не при исполнении)
	ErrUnknownActionType = errors.New("unknown binding action type")
	ErrInvalidPayload    = errors.New("binding payload is missing required fields")

	// Ошибки навигации
	ErrInvalidTransition = errors.New("requested target is not reachable from the current passage")
	ErrRunConflict       = errors.New("run was advanced concurrently")

	// Общие ошибки запросов/сервера
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
)
