package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/portfolio-performance/internal/api/response"
)

// TimeTokenTTL is how long a time token generated by GenerateTimeToken stays valid.
const TimeTokenTTL = 5 * time.Minute

// APIKeyMiddleware protects internal routes. A request must carry the key
// from INTERNAL_API_KEY in X-API-Key and a fresh time token, generated with
// that key, in X-Time-Token.
//
// The key is read on every request, so rotating it needs no restart.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := os.Getenv("INTERNAL_API_KEY")
		if apiKey == "" {
			response.RespondError(w, http.StatusInternalServerError, "Server error", "Authentication not loaded")
			return
		}

		provided := r.Header.Get("X-API-Key")
		if provided == "" {
			response.RespondError(w, http.StatusUnauthorized, "Unauthorized", "Missing API key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "Unauthorized", "Invalid API key")
			return
		}

		token := r.Header.Get("X-Time-Token")
		if token == "" {
			response.RespondError(w, http.StatusUnauthorized, "Unauthorized", "Missing Time token")
			return
		}
		if !verifyTimeToken(apiKey, token) {
			response.RespondError(w, http.StatusUnauthorized, "Unauthorized", "Time token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GenerateTimeToken returns a fernet token over the current time, signed
// with a key derived from apiKey. It is accepted for TimeTokenTTL.
func GenerateTimeToken(apiKey string) string {
	k := tokenKey(apiKey)
	tok, err := fernet.EncryptAndSign([]byte(strconv.FormatInt(time.Now().Unix(), 10)), k)
	if err != nil {
		return ""
	}
	return string(tok)
}

func verifyTimeToken(apiKey, token string) bool {
	msg := fernet.VerifyAndDecrypt([]byte(token), TimeTokenTTL, []*fernet.Key{tokenKey(apiKey)})
	if msg == nil {
		return false
	}
	_, err := strconv.ParseInt(string(msg), 10, 64)
	return err == nil
}

func tokenKey(apiKey string) *fernet.Key {
	k := fernet.Key(sha256.Sum256([]byte(apiKey)))
	return &k
}
