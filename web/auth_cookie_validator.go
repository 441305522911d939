package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	authCookie = "auth"
	sessionTTL = 12 * time.Hour
)

// generateAuthToken returns "user|expiry|signature". The token is rejected once
// sessionTTL has passed.
func generateAuthToken(username, secretKey string, now time.Time) string {
	expires := strconv.FormatInt(now.Add(sessionTTL).Unix(), 10)
	user := base64.RawURLEncoding.EncodeToString([]byte(username))
	return user + "|" + expires + "|" + sign(user+"|"+expires, secretKey)
}

func isValidAuthToken(token, secretKey string, now time.Time) bool {
	parts := strings.Split(token, "|")
	if len(parts) != 3 {
		return false
	}
	if _, err := base64.RawURLEncoding.DecodeString(parts[0]); err != nil {
		return false
	}
	expires, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || now.Unix() >= expires {
		return false
	}
	want := sign(parts[0]+"|"+parts[1], secretKey)
	return hmac.Equal([]byte(parts[2]), []byte(want))
}

func sign(payload, secretKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func isAuthenticated(r *http.Request, secretKey string) bool {
	cookie, err := r.Cookie(authCookie)
	if err != nil {
		return false
	}
	return isValidAuthToken(cookie.Value, secretKey, time.Now())
}

// authMiddleware redirects unauthenticated requests to the login page.
func (handler *HttpRouteHandler) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	if !handler.UseAuth {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAuthenticated(r, handler.SecretKey) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}
