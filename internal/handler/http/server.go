package http

import (
	"LinkShield-Backend/internal/auth"
	"LinkShield-Backend/internal/repository"
	"LinkShield-Backend/internal/service"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Server HTTP сервер с обработчиками
type Server struct {
	authHandlers    *auth.AuthHandlers
	linksHandler    *LinksHandler
	adminHandler    *AdminHandler
	redirectHandler *RedirectHandler
	healthHandler   *HealthHandler
	authMiddleware  *auth.Middleware
	log             *zap.Logger
}

// NewServer создает новый HTTP сервер
func NewServer(
	storage repository.Storage,
	shortener *service.ShortenerService,
	moderation *service.ModerationService,
	jwtService *auth.JWTService,
	passwordService *auth.PasswordService,
	log *zap.Logger,
) *Server {
	// Создаем handlers
	authHandlers := auth.NewAuthHandlers(storage, jwtService, passwordService, log)
	linksHandler := NewLinksHandler(storage, shortener, moderation, log)
	adminHandler := NewAdminHandler(moderation, log)
	redirectHandler := NewRedirectHandler(storage, log)
	healthHandler := NewHealthHandler(storage, log)

	// Создаем middleware
	authMiddleware := auth.NewMiddleware(jwtService, log)

	return &Server{
		authHandlers:    authHandlers,
		linksHandler:    linksHandler,
		adminHandler:    adminHandler,
		redirectHandler: redirectHandler,
		healthHandler:   healthHandler,
		authMiddleware:  authMiddleware,
		log:             log,
	}
}

// SetupRoutes настраивает маршруты
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health checks (без аутентификации)
	mux.HandleFunc("/health", s.healthHandler.Health)
	mux.HandleFunc("/ready", s.healthHandler.Ready)

	// Swagger документация
	mux.Handle("/api/v1/", httpSwagger.WrapHandler)

	// Auth endpoints (без аутентификации)
	mux.HandleFunc("/api/auth/register", s.withCORS(s.authHandlers.Register))
	mux.HandleFunc("/api/auth/login", s.withCORS(s.authHandlers.Login))

	// Сокращение доступно и анонимно, сессия подхватывается при наличии
	mux.HandleFunc("/api/shorten", s.withCORS(s.authMiddleware.OptionalAuth(s.linksHandler.CreateLink)))

	// Ссылки пользователя (с аутентификацией)
	mux.HandleFunc("/api/links", s.withCORS(s.authMiddleware.RequireAuth(s.linksHandler.ListLinks)))
	mux.HandleFunc("/api/links/", s.withCORS(s.authMiddleware.RequireAuth(s.linksHandler.HandleLink)))

	// Админка (только ADMIN)
	mux.HandleFunc("/api/admin/urls", s.withCORS(s.authMiddleware.RequireAdmin(s.adminHandler.ListURLs)))
	mux.HandleFunc("/api/admin/urls/", s.withCORS(s.authMiddleware.RequireAdmin(s.adminHandler.HandleURL)))
	mux.HandleFunc("/api/admin/users", s.withCORS(s.authMiddleware.RequireAdmin(s.adminHandler.ListUsers)))
	mux.HandleFunc("/api/admin/users/", s.withCORS(s.authMiddleware.RequireAdmin(s.adminHandler.HandleUser)))

	// Redirect endpoint (без аутентификации) - должен быть последним
	mux.HandleFunc("/", s.redirectHandler.HandleRedirect)

	return mux
}

// withCORS добавляет CORS headers к обработчику
func (s *Server) withCORS(handler http.HandlerFunc) http.HandlerFunc {
	return s.authMiddleware.CORS(handler)
}
