package http

import (
	"LinkShield-Backend/internal/repository"
	"LinkShield-Backend/pkg/useragent"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// RedirectHandler обработчик публичного разрешения коротких ссылок
type RedirectHandler struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewRedirectHandler создает новый обработчик редиректов
func NewRedirectHandler(storage repository.Storage, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		storage: storage,
		log:     log,
	}
}

var flaggedPageTmpl = template.Must(template.New("flagged").Parse(`<!DOCTYPE html>
<html>
<head><title>Caution: Flagged URL</title></head>
<body>
<h1>Caution: Flagged URL</h1>
<p>This URL is marked for review regarding its safety concerns and will be
reviewed by the administrator before it becomes fully accessible.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
<p><a href="{{.OriginalURL}}" rel="noopener noreferrer">Proceed Anyway</a></p>
</body>
</html>`))

var notFoundPageTmpl = template.Must(template.New("notfound").Parse(`<!DOCTYPE html>
<html>
<head><title>URL Not Found</title></head>
<body>
<h1>URL Not Found</h1>
<p>The short link you followed does not exist or has been removed.</p>
</body>
</html>`))

// HandleRedirect обрабатывает переход по короткому коду
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimPrefix(r.URL.Path, "/")

	// Системные пути не являются короткими кодами
	if code == "" || strings.HasPrefix(code, "api/") ||
		strings.HasPrefix(code, "health") || strings.HasPrefix(code, "ready") {
		h.renderNotFound(w)
		return
	}

	link, err := h.storage.GetLinkByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			h.log.Debug("short code not found", zap.String("short_code", code))
			h.renderNotFound(w)
			return
		}
		h.log.Error("failed to resolve short code", zap.String("short_code", code), zap.Error(err))
		writeError(w, "Something went wrong, please try again.", http.StatusInternalServerError)
		return
	}

	// Счетчик переходов не должен ломать редирект: при ошибке логируем
	// промах и продолжаем
	if err := h.storage.IncrementClicks(r.Context(), code); err != nil {
		h.log.Warn("failed to increment clicks", zap.String("short_code", code), zap.Error(err))
	}

	ipAddress := extractIPAddress(r)
	userAgent := r.UserAgent()

	h.log.Info("resolved short link",
		zap.String("short_code", code),
		zap.String("original_url", link.OriginalURL),
		zap.Bool("flagged", link.Flagged),
		zap.String("ip", ipAddress),
		zap.String("device_type", detectDeviceType(userAgent)))

	// Флаг не блокирует переход, только предупреждает
	if link.Flagged {
		reason := ""
		if link.FlagReason != nil {
			reason = *link.FlagReason
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := flaggedPageTmpl.Execute(w, map[string]string{
			"OriginalURL": link.OriginalURL,
			"Reason":      reason,
		}); err != nil {
			h.log.Error("failed to render flagged page", zap.Error(err))
		}
		return
	}

	http.Redirect(w, r, link.OriginalURL, http.StatusFound)
}

func (h *RedirectHandler) renderNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := notFoundPageTmpl.Execute(w, nil); err != nil {
		h.log.Error("failed to render not found page", zap.Error(err))
	}
}

// extractIPAddress извлекает IP адрес из запроса с учетом прокси
func extractIPAddress(r *http.Request) string {
	// Проверяем заголовки прокси в порядке приоритета
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// X-Forwarded-For может содержать список IP через запятую
		ips := strings.Split(ip, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	// Fallback к RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// detectDeviceType определяет тип устройства по User-Agent. Использует
// глобальный парсер, если он инициализирован, иначе эвристику по ключевым
// словам.
func detectDeviceType(userAgent string) string {
	if parser := useragent.GetGlobalParser(); parser != nil {
		return parser.ParseUserAgent(userAgent).DeviceType
	}

	userAgentLower := strings.ToLower(userAgent)

	mobileKeywords := []string{
		"mobile", "android", "iphone", "ipod", "blackberry",
		"windows phone", "webos", "opera mini",
	}
	for _, keyword := range mobileKeywords {
		if strings.Contains(userAgentLower, keyword) {
			return "mobile"
		}
	}

	tabletKeywords := []string{
		"tablet", "ipad", "kindle", "silk", "playbook",
	}
	for _, keyword := range tabletKeywords {
		if strings.Contains(userAgentLower, keyword) {
			return "tablet"
		}
	}

	return "desktop"
}
