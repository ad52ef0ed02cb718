package http

import (
	"LinkShield-Backend/internal/auth"
	"LinkShield-Backend/internal/domain"
	"LinkShield-Backend/internal/repository"
	"LinkShield-Backend/internal/service"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// AdminHandler обработчики админских таблиц и модерации
type AdminHandler struct {
	moderation *service.ModerationService
	log        *zap.Logger
}

// NewAdminHandler создает новый админский обработчик
func NewAdminHandler(moderation *service.ModerationService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		moderation: moderation,
		log:        log,
	}
}

// UpdateRoleRequest структура запроса смены роли
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// listParamsFromQuery разбирает общие параметры табличных выборок
func listParamsFromQuery(r *http.Request) repository.ListParams {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	return repository.NormalizeListParams(repository.ListParams{
		Page:      page,
		Limit:     limit,
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		FilterBy:  q.Get("filterBy"),
	})
}

// ListURLs возвращает страницу всех ссылок
//
//	@Summary	List all links (admin)
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		page		query		int		false	"Page number"
//	@Param		limit		query		int		false	"Page size"
//	@Param		search		query		string	false	"Substring search"
//	@Param		sortBy		query		string	false	"Sort column"
//	@Param		sortOrder	query		string	false	"asc or desc"
//	@Param		filterBy	query		string	false	"all, flagged, security, inappropriate, other"
//	@Success	200			{object}	repository.LinkPage
//	@Router		/api/admin/urls [get]
func (h *AdminHandler) ListURLs(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	page, err := h.moderation.ListAllLinks(r.Context(), sess, listParamsFromQuery(r))
	if err != nil {
		h.log.Error("failed to list urls", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, page, http.StatusOK)
}

// ListUsers возвращает страницу пользователей
//
//	@Summary	List all users (admin)
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	repository.UserPage
//	@Router		/api/admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	page, err := h.moderation.ListUsers(r.Context(), sess, listParamsFromQuery(r))
	if err != nil {
		h.log.Error("failed to list users", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, page, http.StatusOK)
}

// HandleURL диспетчеризует /api/admin/urls/{id}[/approve]
func (h *AdminHandler) HandleURL(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/urls/")

	switch {
	case strings.HasSuffix(rest, "/approve") && r.Method == http.MethodPost:
		h.approveURL(w, r, strings.TrimSuffix(rest, "/approve"))
	case !strings.Contains(rest, "/") && rest != "" && r.Method == http.MethodDelete:
		h.rejectURL(w, r, rest)
	default:
		writeError(w, "Method not allowed.", http.StatusMethodNotAllowed)
	}
}

// approveURL снимает флаг с помеченной ссылки
func (h *AdminHandler) approveURL(w http.ResponseWriter, r *http.Request, linkID string) {
	sess, _ := auth.SessionFromContext(r.Context())

	if err := h.moderation.ApproveLink(r.Context(), sess, linkID); err != nil {
		h.log.Debug("failed to approve link", zap.String("link_id", linkID), zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, map[string]string{"message": "URL approved successfully."}, http.StatusOK)
}

// rejectURL удаляет помеченную ссылку
func (h *AdminHandler) rejectURL(w http.ResponseWriter, r *http.Request, linkID string) {
	sess, _ := auth.SessionFromContext(r.Context())

	if err := h.moderation.RejectLink(r.Context(), sess, linkID); err != nil {
		h.log.Debug("failed to reject link", zap.String("link_id", linkID), zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, map[string]string{"message": "URL deleted successfully."}, http.StatusOK)
}

// HandleUser диспетчеризует /api/admin/users/{id}/role
func (h *AdminHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/users/")

	if strings.HasSuffix(rest, "/role") && r.Method == http.MethodPatch {
		h.updateRole(w, r, strings.TrimSuffix(rest, "/role"))
		return
	}

	writeError(w, "Method not allowed.", http.StatusMethodNotAllowed)
}

// updateRole меняет роль пользователя
func (h *AdminHandler) updateRole(w http.ResponseWriter, r *http.Request, userID string) {
	sess, _ := auth.SessionFromContext(r.Context())

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request format.", http.StatusBadRequest)
		return
	}

	if err := h.moderation.SetUserRole(r.Context(), sess, userID, domain.Role(req.Role)); err != nil {
		h.log.Debug("failed to update user role", zap.String("user_id", userID), zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, map[string]string{"message": "User role updated successfully."}, http.StatusOK)
}
