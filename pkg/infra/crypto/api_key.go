package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// DeriveDefaultAPIKey computes the bootstrap API key for the "default"
// tenant from the process's own SESSION_SECRET, so the single-tenant mode
// has a usable credential on first boot without a separate seed step or
// extra environment variable. It is logged once at bootstrap time.
func DeriveDefaultAPIKey(sessionSecret string) string {
	mac := hmac.New(sha256.New, []byte(sessionSecret))
	mac.Write([]byte("default-tenant-api-key"))
	return hex.EncodeToString(mac.Sum(nil))
}

// APIKeyDigest is the one-way digest stored against a tenant row and used
// for the lookup index; API keys are high-entropy bearer tokens, not
// user-chosen passwords, so a plain salted hash (no scrypt/bcrypt stretch)
// is sufficient here.
func APIKeyDigest(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}
