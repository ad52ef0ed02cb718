package safety

import "strings"

// FlagBucket группа причин флага для фильтрации в админке
type FlagBucket string

const (
	BucketSecurity      FlagBucket = "security"
	BucketInappropriate FlagBucket = "inappropriate"
	BucketOther         FlagBucket = "other"
	BucketNone          FlagBucket = ""
)

// Наборы ключевых слов намеренно повторяют исходную эвристику, чтобы
// фильтры в админке вели себя так же. Менять только здесь.
var (
	securityKeywords      = []string{"security", "phishing", "malware"}
	inappropriateKeywords = []string{"inappropriate", "adult", "offensive"}
)

// CategorizeReason относит причину флага к одной из групп фильтра.
// Для непомеченных ссылок (пустая причина) возвращает BucketNone.
func CategorizeReason(reason string) FlagBucket {
	if reason == "" {
		return BucketNone
	}

	lower := strings.ToLower(reason)
	for _, kw := range securityKeywords {
		if strings.Contains(lower, kw) {
			return BucketSecurity
		}
	}
	for _, kw := range inappropriateKeywords {
		if strings.Contains(lower, kw) {
			return BucketInappropriate
		}
	}

	return BucketOther
}
