package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/marbeau17/cms-app/internal/metrics"
)

// csrfHeader carries the token on state-changing requests.
const csrfHeader = "X-CSRF-Token"

// csrfTokenTTL is how long an issued token stays valid.
const csrfTokenTTL = time.Hour

// generateCSRFToken derives a stateless token from the secret and the
// current time: "<unix seconds>.<hex hmac-sha256(secret, seconds)>".
// Any instance sharing the secret can validate it, so no token state
// is ever stored.
func generateCSRFToken(secret string, now time.Time) string {
	ts := strconv.FormatInt(now.Unix(), 10)
	return ts + "." + signCSRF(secret, ts)
}

// validateCSRFToken checks the signature and age of a token. Pure
// function of its inputs.
func validateCSRFToken(secret, token string, now time.Time) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return false
	}
	ts, sig := parts[0], parts[1]
	issued, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	if now.Unix()-issued > int64(csrfTokenTTL.Seconds()) {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(signCSRF(secret, ts)))
}

func signCSRF(secret, ts string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	return hex.EncodeToString(mac.Sum(nil))
}

// handleCSRFToken issues a fresh token for the frontend to send back
// on unsafe methods.
func (s *Server) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"csrfToken": generateCSRFToken(s.config.CSRFSecret, time.Now()),
	})
}

// csrfMiddleware rejects state-changing requests without a valid
// token. Safe methods pass through untouched.
func (s *Server) csrfMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if !validateCSRFToken(s.config.CSRFSecret, r.Header.Get(csrfHeader), time.Now()) {
			metrics.RecordCSRFRejection()
			s.sendError(w, http.StatusForbidden, "CSRF token missing or invalid")
			return
		}
		next.ServeHTTP(w, r)
	})
}
