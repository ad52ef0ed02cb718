package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet набор символов для коротких кодов (URL-safe)
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// NewRandomString генерирует случайную строку заданной длины из Alphabet
func NewRandomString(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid length: %d", length)
	}

	code := make([]byte, length)
	max := big.NewInt(int64(len(Alphabet)))

	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		code[i] = Alphabet[n.Int64()]
	}

	return string(code), nil
}
