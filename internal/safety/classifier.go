package safety

import (
	"LinkShield-Backend/internal/config"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ErrClassificationFailed сигнализирует, что вердикт получить не удалось.
// Оркестратор трактует это как "вердикт недоступен" и продолжает без флага.
var ErrClassificationFailed = errors.New("url classification failed")

// Category категория вердикта классификатора
type Category string

const (
	CategorySafe          Category = "safe"
	CategorySuspicious    Category = "suspicious"
	CategoryMalicious     Category = "malicious"
	CategoryInappropriate Category = "inappropriate"
	CategoryUnknown       Category = "unknown"
)

// Verdict результат проверки URL внешним классификатором
type Verdict struct {
	IsSafe     bool     `json:"isSafe"`
	Flagged    bool     `json:"flagged"`
	Reason     *string  `json:"reason"`
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

// DefaultVerdict вердикт по умолчанию, когда классификатор не сконфигурирован
func DefaultVerdict() *Verdict {
	return &Verdict{
		IsSafe:     true,
		Flagged:    false,
		Reason:     nil,
		Category:   CategoryUnknown,
		Confidence: 0,
	}
}

// Classifier обертка над Gemini generateContent API
type Classifier struct {
	cfg    *config.Safety
	client *http.Client
	log    *zap.Logger
}

// NewClassifier создает новый классификатор
func NewClassifier(cfg *config.Safety, log *zap.Logger) *Classifier {
	return &Classifier{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

const promptTemplate = `Analyze this URL for safety concerns: %q

Consider the following aspects:
1. Is it a known phishing site?
2. Does it contain malware or suspicious redirects?
3. Is it associated with scams or fraud?
4. Does it contain inappropriate content (adult, violence, etc.)?
5. Is the domain suspicious or newly registered?

Respond in JSON format with the following structure:
{
  "isSafe": boolean,
  "flagged": boolean,
  "reason": string or null,
  "category": "safe" | "suspicious" | "malicious" | "inappropriate" | "unknown",
  "confidence": number between 0 and 1
}

Only respond with the JSON object, no additional text.`

// generateContent структуры запроса/ответа Gemini REST API
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Check выполняет одну проверку URL. URL должен быть уже валидирован.
// Без API-ключа возвращает DefaultVerdict, не выполняя сетевой вызов.
func (c *Classifier) Check(ctx context.Context, url string) (*Verdict, error) {
	if c.cfg.APIKey == "" {
		c.log.Debug("safety classifier not configured, returning default verdict")
		return DefaultVerdict(), nil
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: fmt.Sprintf(promptTemplate, url)}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %w", ErrClassificationFailed, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.Endpoint, c.cfg.Model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %w", ErrClassificationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("safety classifier request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("safety classifier returned non-OK status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: unexpected status %d", ErrClassificationFailed, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrClassificationFailed, err)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, fmt.Errorf("%w: malformed response body: %w", ErrClassificationFailed, err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrClassificationFailed)
	}

	verdict, err := parseVerdict(gr.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		c.log.Warn("failed to parse classifier verdict", zap.Error(err))
		return nil, err
	}

	c.log.Info("url classified",
		zap.String("url", url),
		zap.String("category", string(verdict.Category)),
		zap.Bool("flagged", verdict.Flagged),
		zap.Float64("confidence", verdict.Confidence))

	return verdict, nil
}

// parseVerdict извлекает вердикт из текста ответа модели. Модель может
// обернуть JSON в пояснительный текст или code fence, поэтому берем первый
// сбалансированный объект.
func parseVerdict(text string) (*Verdict, error) {
	jsonPart, err := extractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(jsonPart), &verdict); err != nil {
		return nil, fmt.Errorf("%w: invalid verdict JSON: %w", ErrClassificationFailed, err)
	}

	switch verdict.Category {
	case CategorySafe, CategorySuspicious, CategoryMalicious, CategoryInappropriate, CategoryUnknown:
	default:
		verdict.Category = CategoryUnknown
	}

	return &verdict, nil
}

// extractJSONObject находит первый сбалансированный {...} блок в тексте
func extractJSONObject(text string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range text {
		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], nil
				}
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}

	return "", errors.New("no JSON object found in response")
}
