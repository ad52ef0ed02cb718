package auth

import (
	"LinkShield-Backend/internal/domain"
	"context"
)

// ContextKey тип для ключей контекста
type ContextKey string

// SessionKey ключ для получения сессии из контекста
const SessionKey ContextKey = "session"

// Session данные аутентифицированного пользователя, извлеченные из JWT.
// Сервисы доверяют этим значениям и не перепроверяют учетные данные.
type Session struct {
	UserID string
	Email  string
	Role   domain.Role
}

// IsAdmin возвращает true для администраторов
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == domain.RoleAdmin
}

// WithSession кладет сессию в контекст запроса
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, SessionKey, sess)
}

// SessionFromContext извлекает сессию из контекста
func SessionFromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(SessionKey).(*Session)
	return sess, ok && sess != nil
}
