package service

import "errors"

// Ошибки бизнес-уровня. Обработчики транслируют их в короткие сообщения
// пользователю, внутренние детали остаются в логах.
var (
	ErrInvalidURL        = errors.New("invalid url")
	ErrInvalidCustomCode = errors.New("invalid custom code")
	ErrCodeTaken         = errors.New("custom code already taken")
	ErrAttemptsExhausted = errors.New("short code generation attempts exhausted")
	ErrBlockedMalicious  = errors.New("url blocked as malicious")
	ErrUnauthorized      = errors.New("authentication required")
	ErrForbidden         = errors.New("operation not allowed")
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidRole       = errors.New("invalid role")
)
