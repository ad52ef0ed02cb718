package auth

import (
	"net/http"

	"go.uber.org/zap"
)

// Middleware JWT middleware для HTTP обработчиков
type Middleware struct {
	jwtService *JWTService
	log        *zap.Logger
}

// NewMiddleware создает новый JWT middleware
func NewMiddleware(jwtService *JWTService, log *zap.Logger) *Middleware {
	return &Middleware{
		jwtService: jwtService,
		log:        log,
	}
}

// RequireAuth middleware для проверки JWT токена
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.sessionFromRequest(r)
		if err != nil {
			m.log.Debug("authentication failed", zap.Error(err))
			if err == ErrExpiredToken {
				writeEnvelopeError(w, "Token expired.", http.StatusUnauthorized)
			} else {
				writeEnvelopeError(w, "Unauthorized, only logged in users can access this resource.", http.StatusUnauthorized)
			}
			return
		}

		m.log.Debug("authenticated user",
			zap.String("user_id", sess.UserID),
			zap.String("role", string(sess.Role)))

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	}
}

// OptionalAuth middleware для опциональной проверки JWT токена.
// Анонимные запросы проходят дальше без сессии.
func (m *Middleware) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.sessionFromRequest(r)
		if err != nil {
			// Отсутствующий или неверный токен не критичен
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	}
}

// RequireAdmin middleware для операций, доступных только администраторам
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		if !sess.IsAdmin() {
			m.log.Debug("admin access denied", zap.String("user_id", sess.UserID))
			writeEnvelopeError(w, "Unauthorized, you are not allowed to access this resource.", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) sessionFromRequest(r *http.Request) (*Session, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, ErrInvalidToken
	}

	tokenString := ExtractTokenFromBearer(authHeader)
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims, err := m.jwtService.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	return &Session{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// CORS middleware для обработки CORS запросов
func (m *Middleware) CORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Список разрешенных origins для разработки
		allowedOrigins := []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:8080",
			"http://127.0.0.1:8080",
		}

		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		// Обработка preflight OPTIONS запросов
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	}
}
