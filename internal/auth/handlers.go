package auth

import (
	"LinkShield-Backend/internal/repository"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// AuthHandlers обработчики аутентификации
type AuthHandlers struct {
	storage         repository.Storage
	jwtService      *JWTService
	passwordService *PasswordService
	log             *zap.Logger
}

// NewAuthHandlers создает новые обработчики аутентификации
func NewAuthHandlers(storage repository.Storage, jwtService *JWTService, passwordService *PasswordService, log *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		storage:         storage,
		jwtService:      jwtService,
		passwordService: passwordService,
		log:             log,
	}
}

// RegisterRequest структура запроса регистрации
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest структура запроса входа
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse структура ответа аутентификации
type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         UserInfo `json:"user"`
}

// UserInfo информация о пользователе
type UserInfo struct {
	ID    string  `json:"id"`
	Name  *string `json:"name,omitempty"`
	Email string  `json:"email"`
	Role  string  `json:"role"`
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Register обработчик регистрации
//
//	@Summary		Register a new user
//	@Description	Create a new user account
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Registration request"
//	@Success		201		{object}	AuthResponse		"User registered successfully"
//	@Failure		400		{object}	map[string]string	"Invalid request data"
//	@Failure		409		{object}	map[string]string	"User already exists"
//	@Router			/api/auth/register [post]
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid registration request", zap.Error(err))
		writeEnvelopeError(w, "Invalid request format.", http.StatusBadRequest)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(req.Email) {
		writeEnvelopeError(w, "Please enter a valid email.", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 3 {
		writeEnvelopeError(w, "Name must be at least 3 characters.", http.StatusBadRequest)
		return
	}

	if err := IsValidPassword(req.Password); err != nil {
		writeEnvelopeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	hashedPassword, err := h.passwordService.HashPassword(req.Password)
	if err != nil {
		h.log.Error("failed to hash password", zap.Error(err))
		writeEnvelopeError(w, "Failed to register, try again.", http.StatusInternalServerError)
		return
	}

	user, err := h.storage.CreateUser(r.Context(), req.Email, hashedPassword, &req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			writeEnvelopeError(w, "User already exists.", http.StatusConflict)
			return
		}
		h.log.Error("failed to create user", zap.String("email", req.Email), zap.Error(err))
		writeEnvelopeError(w, "Failed to register, try again.", http.StatusInternalServerError)
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user)
	if err != nil {
		h.log.Error("failed to generate access token", zap.Error(err))
		writeEnvelopeError(w, "Failed to register, try again.", http.StatusInternalServerError)
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(user)
	if err != nil {
		h.log.Error("failed to generate refresh token", zap.Error(err))
		writeEnvelopeError(w, "Failed to register, try again.", http.StatusInternalServerError)
		return
	}

	h.log.Info("user registered successfully", zap.String("user_id", user.ID), zap.String("email", req.Email))
	writeEnvelope(w, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: UserInfo{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  string(user.Role),
		},
	}, http.StatusCreated)
}

// Login обработчик входа
//
//	@Summary		Login user
//	@Description	Authenticate an existing user
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Login request"
//	@Success		200		{object}	AuthResponse		"Login successful"
//	@Failure		401		{object}	map[string]string	"Invalid credentials"
//	@Router			/api/auth/login [post]
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid login request", zap.Error(err))
		writeEnvelopeError(w, "Invalid request format.", http.StatusBadRequest)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.storage.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		// Не раскрываем, существует ли пользователь
		writeEnvelopeError(w, "Invalid email or password.", http.StatusUnauthorized)
		return
	}

	if err := h.passwordService.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		h.log.Debug("invalid password", zap.String("email", req.Email))
		writeEnvelopeError(w, "Invalid email or password.", http.StatusUnauthorized)
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user)
	if err != nil {
		h.log.Error("failed to generate access token", zap.Error(err))
		writeEnvelopeError(w, "Failed to login, try again.", http.StatusInternalServerError)
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(user)
	if err != nil {
		h.log.Error("failed to generate refresh token", zap.Error(err))
		writeEnvelopeError(w, "Failed to login, try again.", http.StatusInternalServerError)
		return
	}

	h.log.Info("user logged in", zap.String("user_id", user.ID))
	writeEnvelope(w, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: UserInfo{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  string(user.Role),
		},
	}, http.StatusOK)
}

// envelope единый конверт ответа API: {success, data?, error?}
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeEnvelopeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: message})
}
