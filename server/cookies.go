package server

import (
	"net/http"
	"time"

	"github.com/vidtube/vidtube-server/token"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// setTokenCookies hands both tokens to the browser. Script cannot read them
// and they only travel over TLS.
func setTokenCookies(w http.ResponseWriter, pair token.Pair, now time.Time) {
	setTokenCookie(w, accessTokenCookie, pair.Access, now)
	setTokenCookie(w, refreshTokenCookie, pair.Refresh, now)
}

func setTokenCookie(w http.ResponseWriter, name string, issued token.Issued, now time.Time) {
	maxAge := int(issued.ExpiresAt.Sub(now).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    issued.Value,
		Path:     "/",
		Expires:  issued.ExpiresAt.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0).UTC(),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
