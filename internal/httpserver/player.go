// internal/httpserver/player.go
//
// Anonymous player identity.
//
// Every browser gets a random player ID carried in an HS256 JWT cookie. The
// ID scopes progress records and live sessions, so two players opening the
// same link play independently. Bearer tokens are accepted too, for clients
// that do not keep cookies.

package httpserver

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// playerID returns the caller's player ID, issuing a fresh signed cookie
// when none (or an invalid one) is presented.
func (s *Server) playerID(w http.ResponseWriter, r *http.Request) string {
	if tok := s.bearerOrCookie(r); tok != "" {
		if id, err := s.parsePlayerJWT(tok); err == nil {
			return id
		}
	}

	id := genID()
	tok, exp, err := s.signPlayerJWT(id)
	if err != nil {
		log.Error().Err(err).Msg("sign player token")
		return id
	}
	s.setPlayerCookie(w, tok, exp)
	return id
}

// signPlayerJWT creates an HS256 JWT whose subject is the player ID.
func (s *Server) signPlayerJWT(id string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(time.Duration(s.opts.CookieDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

func (s *Server) parsePlayerJWT(tok string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", jwt.ErrTokenInvalidSubject
	}
	return claims.Subject, nil
}

// setPlayerCookie writes the player token cookie with appropriate security attributes.
func (s *Server) setPlayerCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.opts.SecureCookies {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or player cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// genID creates a 22-char URL-safe, crypto-random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
