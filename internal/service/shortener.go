package service

import (
	"LinkShield-Backend/internal/auth"
	"LinkShield-Backend/internal/config"
	"LinkShield-Backend/internal/domain"
	"LinkShield-Backend/internal/repository"
	"LinkShield-Backend/internal/safety"
	"LinkShield-Backend/pkg/random"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	customCodeMinLen = 3
	customCodeMaxLen = 20
)

var customCodePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// flaggedMessage предупреждение, возвращаемое вместе с созданной ссылкой
const flaggedMessage = "This URL has been flagged as potentially unsafe and is up for review by an administrator."

// SafetyChecker контракт классификатора безопасности URL
type SafetyChecker interface {
	Check(ctx context.Context, url string) (*safety.Verdict, error)
}

// ShortenRequest запрос на создание короткой ссылки
type ShortenRequest struct {
	URL        string
	CustomCode string
	Session    *auth.Session // nil для анонимных запросов
}

// ShortenResult результат создания короткой ссылки
type ShortenResult struct {
	ShortURL   string
	ShortCode  string
	Flagged    bool
	FlagReason *string
	Message    string
}

// ShortenerService оркестратор создания коротких ссылок
type ShortenerService struct {
	storage    repository.Storage
	classifier SafetyChecker
	cfg        *config.Shortener
	safetyCfg  *config.Safety
	log        *zap.Logger

	// genCode подменяется в тестах
	genCode func(length int) (string, error)
}

// NewShortener создает новый сервис сокращения ссылок
func NewShortener(storage repository.Storage, classifier SafetyChecker, cfg *config.Shortener, safetyCfg *config.Safety, log *zap.Logger) *ShortenerService {
	return &ShortenerService{
		storage:    storage,
		classifier: classifier,
		cfg:        cfg,
		safetyCfg:  safetyCfg,
		log:        log,
		genCode:    random.NewRandomString,
	}
}

// Shorten проводит запрос через весь конвейер: валидация, нормализация,
// классификация, подбор кода, запись.
func (s *ShortenerService) Shorten(ctx context.Context, req ShortenRequest) (*ShortenResult, error) {
	if req.CustomCode != "" {
		if err := ValidateCustomCode(req.CustomCode); err != nil {
			return nil, err
		}
	}

	originalURL := EnsureHTTPS(strings.TrimSpace(req.URL))
	if !IsValidURL(originalURL) {
		return nil, ErrInvalidURL
	}

	verdict := s.classify(ctx, originalURL)

	// Единственный случай, когда вердикт блокирует создание: уверенно
	// вредоносный URL от обычного пользователя. Администратор проходит,
	// но ссылка остается помеченной.
	if verdict.Category == safety.CategoryMalicious && verdict.Confidence > s.safetyCfg.BlockThreshold {
		if !req.Session.IsAdmin() {
			s.log.Warn("blocked malicious url",
				zap.String("url", originalURL),
				zap.Float64("confidence", verdict.Confidence))
			return nil, ErrBlockedMalicious
		}
	}

	link := &domain.Link{
		OriginalURL: originalURL,
		Flagged:     verdict.Flagged,
	}
	// Причина хранится только вместе с флагом: классификатор может вернуть
	// пояснение и для непомеченного URL
	if verdict.Flagged {
		link.FlagReason = verdict.Reason
	}
	if req.Session != nil {
		userID := req.Session.UserID
		link.UserID = &userID
	}

	if err := s.assignCodeAndSave(ctx, link, req.CustomCode); err != nil {
		return nil, err
	}

	result := &ShortenResult{
		ShortURL:   s.cfg.BaseURL + "/" + link.ShortCode,
		ShortCode:  link.ShortCode,
		Flagged:    link.Flagged,
		FlagReason: link.FlagReason,
	}
	if link.Flagged {
		result.Message = flaggedMessage
	}

	return result, nil
}

// classify запрашивает вердикт с таймаутом из конфигурации. Любой сбой
// классификатора трактуется как "вердикт недоступен": сокращение важнее
// проверки (fail-open).
func (s *ShortenerService) classify(ctx context.Context, originalURL string) *safety.Verdict {
	checkCtx, cancel := context.WithTimeout(ctx, s.safetyCfg.Timeout)
	defer cancel()

	verdict, err := s.classifier.Check(checkCtx, originalURL)
	if err != nil {
		s.log.Warn("safety check unavailable, proceeding unflagged",
			zap.String("url", originalURL),
			zap.Error(err))
		return safety.DefaultVerdict()
	}

	return verdict
}

// assignCodeAndSave подбирает короткий код и выполняет единственную запись.
// Для кастомного кода коллизия — ошибка пользователя, без повторов.
// Для сгенерированного — ограниченный цикл; гонка на unique constraint
// при вставке расходует попытку наравне с коллизией на предварительной
// проверке.
func (s *ShortenerService) assignCodeAndSave(ctx context.Context, link *domain.Link, customCode string) error {
	if customCode != "" {
		exists, err := s.storage.CodeExists(ctx, customCode)
		if err != nil {
			return fmt.Errorf("failed to check custom code: %w", err)
		}
		if exists {
			return ErrCodeTaken
		}

		link.ShortCode = customCode
		if err := s.storage.SaveLink(ctx, link); err != nil {
			if errors.Is(err, repository.ErrCodeExists) {
				return ErrCodeTaken
			}
			return fmt.Errorf("failed to save link: %w", err)
		}
		return nil
	}

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		code, err := s.genCode(s.cfg.CodeLength)
		if err != nil {
			return fmt.Errorf("failed to generate short code: %w", err)
		}

		exists, err := s.storage.CodeExists(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to check short code: %w", err)
		}
		if exists {
			s.log.Debug("short code collision, regenerating",
				zap.String("short_code", code),
				zap.Int("attempt", attempt))
			continue
		}

		link.ShortCode = code
		err = s.storage.SaveLink(ctx, link)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrCodeExists) {
			// Проиграли гонку другому запросу между проверкой и вставкой
			s.log.Debug("short code race lost, regenerating",
				zap.String("short_code", code),
				zap.Int("attempt", attempt))
			continue
		}
		return fmt.Errorf("failed to save link: %w", err)
	}

	return ErrAttemptsExhausted
}

// UpdateCode меняет короткий код существующей ссылки. Доступно только
// владельцу ссылки.
func (s *ShortenerService) UpdateCode(ctx context.Context, sess *auth.Session, linkID, newCode string) (*ShortenResult, error) {
	if sess == nil {
		return nil, ErrUnauthorized
	}
	if err := ValidateCustomCode(newCode); err != nil {
		return nil, err
	}

	link, err := s.storage.GetLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	if !link.OwnedBy(sess.UserID) {
		return nil, ErrForbidden
	}

	taken, err := s.storage.CodeExistsExcept(ctx, newCode, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to check custom code: %w", err)
	}
	if taken {
		return nil, ErrCodeTaken
	}

	if err := s.storage.UpdateLinkCode(ctx, linkID, newCode); err != nil {
		if errors.Is(err, repository.ErrCodeExists) {
			return nil, ErrCodeTaken
		}
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update link code: %w", err)
	}

	return &ShortenResult{
		ShortURL:  s.cfg.BaseURL + "/" + newCode,
		ShortCode: newCode,
	}, nil
}

// ValidateCustomCode проверяет пользовательский короткий код
func ValidateCustomCode(code string) error {
	if len(code) < customCodeMinLen || len(code) > customCodeMaxLen {
		return ErrInvalidCustomCode
	}
	if !customCodePattern.MatchString(code) {
		return ErrInvalidCustomCode
	}
	return nil
}

// IsValidURL проверяет, что строка — абсолютный http(s) URL с хостом
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// EnsureHTTPS приводит URL к защищенной схеме: без схемы — добавляет
// https://, http:// — переписывает на https://
func EnsureHTTPS(raw string) string {
	if !strings.HasPrefix(raw, "https://") && !strings.HasPrefix(raw, "http://") {
		return "https://" + raw
	}
	if strings.HasPrefix(raw, "http://") {
		return "https://" + strings.TrimPrefix(raw, "http://")
	}
	return raw
}
