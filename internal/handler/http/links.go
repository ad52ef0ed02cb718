package http

import (
	"LinkShield-Backend/internal/auth"
	"LinkShield-Backend/internal/repository"
	"LinkShield-Backend/internal/service"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LinksHandler обработчик для работы со ссылками
type LinksHandler struct {
	storage    repository.Storage
	shortener  *service.ShortenerService
	moderation *service.ModerationService
	log        *zap.Logger
}

// NewLinksHandler создает новый обработчик ссылок
func NewLinksHandler(storage repository.Storage, shortener *service.ShortenerService, moderation *service.ModerationService, log *zap.Logger) *LinksHandler {
	return &LinksHandler{
		storage:    storage,
		shortener:  shortener,
		moderation: moderation,
		log:        log,
	}
}

// ShortenRequest структура запроса создания ссылки
type ShortenRequest struct {
	URL        string `json:"url"`
	CustomCode string `json:"custom_code,omitempty"`
}

// ShortenResponse структура ответа создания ссылки
type ShortenResponse struct {
	ShortURL   string  `json:"short_url"`
	ShortCode  string  `json:"short_code"`
	Flagged    bool    `json:"flagged"`
	FlagReason *string `json:"flag_reason,omitempty"`
	Message    string  `json:"message,omitempty"`
}

// UpdateLinkRequest структура запроса смены короткого кода
type UpdateLinkRequest struct {
	CustomCode string `json:"custom_code"`
}

// LinkInfo информация о ссылке в списке пользователя
type LinkInfo struct {
	ID          string  `json:"id"`
	OriginalURL string  `json:"original_url"`
	ShortCode   string  `json:"short_code"`
	Clicks      int64   `json:"clicks"`
	Flagged     bool    `json:"flagged"`
	FlagReason  *string `json:"flag_reason,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// CreateLink создает новую короткую ссылку
//
//	@Summary		Shorten a URL
//	@Description	Create a new shortened URL, optionally with a custom code. Anonymous requests are allowed.
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ShortenRequest	true	"Shorten request"
//	@Success		201		{object}	ShortenResponse		"Link created"
//	@Failure		400		{object}	map[string]string	"Invalid URL or custom code"
//	@Failure		403		{object}	map[string]string	"URL blocked as malicious"
//	@Failure		409		{object}	map[string]string	"Custom code already taken"
//	@Router			/api/shorten [post]
func (h *LinksHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed.", http.StatusMethodNotAllowed)
		return
	}

	var req ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid shorten request", zap.Error(err))
		writeError(w, "Invalid request format.", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		writeError(w, "Please enter a valid URL.", http.StatusBadRequest)
		return
	}

	// Сессия опциональна: анонимные ссылки разрешены
	sess, _ := auth.SessionFromContext(r.Context())

	result, err := h.shortener.Shorten(r.Context(), service.ShortenRequest{
		URL:        req.URL,
		CustomCode: req.CustomCode,
		Session:    sess,
	})
	if err != nil {
		h.log.Debug("failed to shorten url", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	h.log.Info("created link", zap.String("short_code", result.ShortCode), zap.Bool("flagged", result.Flagged))
	writeJSON(w, ShortenResponse{
		ShortURL:   result.ShortURL,
		ShortCode:  result.ShortCode,
		Flagged:    result.Flagged,
		FlagReason: result.FlagReason,
		Message:    result.Message,
	}, http.StatusCreated)
}

// ListLinks возвращает список ссылок пользователя
//
//	@Summary	List own links
//	@Tags		Links
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string][]LinkInfo
//	@Router		/api/links [get]
func (h *LinksHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized, only logged in users can access this resource.", http.StatusUnauthorized)
		return
	}

	links, err := h.storage.ListUserLinks(r.Context(), sess.UserID)
	if err != nil {
		h.log.Error("failed to list user links", zap.String("user_id", sess.UserID), zap.Error(err))
		writeError(w, "Failed to fetch URLs, please try again.", http.StatusInternalServerError)
		return
	}

	infos := make([]LinkInfo, len(links))
	for i, link := range links {
		infos[i] = LinkInfo{
			ID:          link.ID,
			OriginalURL: link.OriginalURL,
			ShortCode:   link.ShortCode,
			Clicks:      link.Clicks,
			Flagged:     link.Flagged,
			FlagReason:  link.FlagReason,
			CreatedAt:   link.CreatedAt.Format(time.RFC3339),
		}
	}

	writeJSON(w, map[string][]LinkInfo{"links": infos}, http.StatusOK)
}

// HandleLink диспетчеризует /api/links/{id} по HTTP методу
func (h *LinksHandler) HandleLink(w http.ResponseWriter, r *http.Request) {
	linkID := strings.TrimPrefix(r.URL.Path, "/api/links/")
	if linkID == "" || strings.Contains(linkID, "/") {
		writeError(w, "Not found, the URL does not exist.", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		h.updateLink(w, r, linkID)
	case http.MethodDelete:
		h.deleteLink(w, r, linkID)
	default:
		writeError(w, "Method not allowed.", http.StatusMethodNotAllowed)
	}
}

// updateLink меняет короткий код собственной ссылки
func (h *LinksHandler) updateLink(w http.ResponseWriter, r *http.Request, linkID string) {
	sess, _ := auth.SessionFromContext(r.Context())

	var req UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request format.", http.StatusBadRequest)
		return
	}

	result, err := h.shortener.UpdateCode(r.Context(), sess, linkID, req.CustomCode)
	if err != nil {
		h.log.Debug("failed to update link code", zap.String("link_id", linkID), zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, ShortenResponse{
		ShortURL:  result.ShortURL,
		ShortCode: result.ShortCode,
		Message:   "URL updated successfully.",
	}, http.StatusOK)
}

// deleteLink удаляет собственную ссылку (администратор — любую)
func (h *LinksHandler) deleteLink(w http.ResponseWriter, r *http.Request, linkID string) {
	sess, _ := auth.SessionFromContext(r.Context())

	if err := h.moderation.DeleteLink(r.Context(), sess, linkID); err != nil {
		h.log.Debug("failed to delete link", zap.String("link_id", linkID), zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, map[string]string{"message": "URL deleted successfully."}, http.StatusOK)
}
