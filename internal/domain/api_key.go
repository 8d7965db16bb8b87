package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	apiKeyPrefix      = "sk_live_"
	apiKeyRandomBytes = 16
	apiKeyVisibleLen  = 4
	apiKeyMask        = "************"
)

// APIKey representa uma chave de API do merchant. Only the hash and the
// last four characters are stored.
type APIKey struct {
	ID        uuid.UUID `json:"id"`
	KeyHash   string    `json:"-"`
	Prefix    string    `json:"prefix"`
	CreatedAt time.Time `json:"createdAt"`
}

// Masked returns the display form of the key, e.g. ************a1b2.
func (a *APIKey) Masked() string {
	return apiKeyMask + a.Prefix
}

// GenerateAPIKey gera uma nova API key.
// Retorna: (plainKey, hash, prefix)
// Formato: sk_live_<32 hex chars>
func GenerateAPIKey() (string, string, string, error) {
	buf := make([]byte, apiKeyRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", "", err
	}

	plainKey := apiKeyPrefix + hex.EncodeToString(buf)
	return plainKey, HashAPIKey(plainKey), plainKey[len(plainKey)-apiKeyVisibleLen:], nil
}

// HashAPIKey gera o hash SHA256 de uma API key
func HashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// IsValidFormat reports whether key looks like sk_live_<32 lowercase hex>.
func IsValidFormat(key string) bool {
	if !strings.HasPrefix(key, apiKeyPrefix) {
		return false
	}
	randomPart := strings.TrimPrefix(key, apiKeyPrefix)
	if len(randomPart) != apiKeyRandomBytes*2 {
		return false
	}
	_, err := hex.DecodeString(randomPart)
	return err == nil && strings.ToLower(randomPart) == randomPart
}
