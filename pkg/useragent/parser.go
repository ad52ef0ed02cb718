package useragent

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

// Parser классифицирует User-Agent для логирования переходов
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// DeviceInfo результат разбора User-Agent
type DeviceInfo struct {
	DeviceType string // mobile, desktop, tablet, bot, unknown
	Browser    string
	OS         string
}

var (
	globalParser *Parser
	once         sync.Once
)

// NewParser создает парсер из файла с регулярными выражениями uap-core
func NewParser(regexFilePath string, log *zap.Logger) (*Parser, error) {
	regexBytes, err := os.ReadFile(regexFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read regexes file: %w", err)
	}

	parser, err := uaparser.NewFromBytes(regexBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create User-Agent parser: %w", err)
	}

	log.Info("User-Agent parser initialized", zap.String("regexes_file", regexFilePath))

	return &Parser{
		parser: parser,
		log:    log,
	}, nil
}

// GetGlobalParser возвращает singleton парсер (nil, если не инициализирован)
func GetGlobalParser() *Parser {
	return globalParser
}

// InitGlobalParser инициализирует глобальный парсер
func InitGlobalParser(regexFilePath string, log *zap.Logger) error {
	var err error
	once.Do(func() {
		globalParser, err = NewParser(regexFilePath, log)
	})
	return err
}

// ParseUserAgent разбирает строку User-Agent
func (p *Parser) ParseUserAgent(userAgent string) *DeviceInfo {
	if userAgent == "" {
		return &DeviceInfo{DeviceType: "unknown", Browser: "unknown", OS: "unknown"}
	}

	client := p.parser.Parse(userAgent)

	return &DeviceInfo{
		DeviceType: deviceType(client, userAgent),
		Browser:    orUnknown(client.UserAgent.Family),
		OS:         orUnknown(client.Os.Family),
	}
}

func deviceType(client *uaparser.Client, userAgent string) string {
	if isBot(client.UserAgent.Family, userAgent) {
		return "bot"
	}

	osFamily := client.Os.Family
	device := client.Device.Family

	switch {
	case containsAny(device, "iPad", "Tablet", "Kindle", "Surface"):
		return "tablet"
	case containsAny(device, "iPhone", "BlackBerry", "Phone", "Mobile"):
		return "mobile"
	}

	// По ОС: для iOS и Android различаем планшет и телефон по самой строке
	switch {
	case strings.Contains(osFamily, "iOS"):
		if strings.Contains(userAgent, "iPad") {
			return "tablet"
		}
		return "mobile"
	case strings.Contains(osFamily, "Android"):
		// У планшетов на Android обычно нет "Mobile" в User-Agent
		if !strings.Contains(userAgent, "Mobile") {
			return "tablet"
		}
		return "mobile"
	case containsAny(osFamily, "Windows Phone", "BlackBerry OS", "Firefox OS", "Sailfish OS"):
		return "mobile"
	case containsAny(osFamily, "Windows", "Mac OS X", "macOS", "Linux", "Ubuntu", "Chrome OS", "FreeBSD", "OpenBSD", "NetBSD"):
		return "desktop"
	}

	return "unknown"
}

var botIndicators = []string{
	"googlebot", "bingbot", "slurp", "duckduckbot", "baiduspider",
	"yandexbot", "facebookexternalhit", "twitterbot", "linkedinbot",
	"whatsapp", "telegram", "bot", "crawler", "spider", "scraper",
}

func isBot(uaFamily, userAgent string) bool {
	haystack := strings.ToLower(uaFamily + " " + userAgent)
	for _, indicator := range botIndicators {
		if strings.Contains(haystack, indicator) {
			return true
		}
	}
	return false
}

func containsAny(s string, substrs ...string) bool {
	for _, substr := range substrs {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

func orUnknown(family string) string {
	if family == "" || family == "Other" {
		return "unknown"
	}
	return family
}
