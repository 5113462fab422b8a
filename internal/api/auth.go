// internal/api/auth.go
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"oss-tldr/internal/model"
)

// Claims is the payload of the bearer tokens issued at login.
type Claims struct {
	GithubToken string     `json:"github_token"`
	User        model.User `json:"user"`
	jwt.RegisteredClaims
}

// Session is the authenticated caller of a request.
type Session struct {
	GithubToken string
	User        model.User
}

type sessionKey struct{}

func sessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// parseToken verifies an HS256 token and returns its session.
func parseToken(tokenString string, secret []byte) (Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Session{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.GithubToken == "" || claims.User.ID == 0 || claims.User.Login == "" {
		return Session{}, errors.New("invalid token payload")
	}
	return Session{GithubToken: claims.GithubToken, User: claims.User}, nil
}

// authenticate rejects requests without a valid bearer token.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			respondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		session, err := parseToken(tokenString, h.jwtSecret)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "Token has expired"
			}
			h.logger.Info("Rejected bearer token", "error", err)
			w.Header().Set("WWW-Authenticate", "Bearer")
			respondWithError(w, http.StatusUnauthorized, message)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, session)))
	})
}
