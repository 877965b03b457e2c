package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/iurnickita/aquamanager/internal/auth/config"
)

type Auth interface {
	IssueToken() (string, error)
	Middleware(h http.Handler) http.Handler
	Enabled() bool
}

const (
	CookieToken = "aquaManagerToken"
	issuer      = "aquamanager"
)

var (
	ErrNoToken      = errors.New("no token")
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSecret     = errors.New("auth secret is not configured")
)

type subjectKey struct{}

// Subject - владелец токена из контекста запроса
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

type auth struct {
	cfg config.Config
	now func() time.Time
}

// NewAuth - HS256 токены единственного продавца. Пустой секрет отключает проверку.
func NewAuth(cfg config.Config) Auth {
	if cfg.Merchant == "" {
		cfg.Merchant = "merchant"
	}
	return &auth{cfg: cfg, now: time.Now}
}

func (a *auth) Enabled() bool {
	return a.cfg.Secret != ""
}

func (a *auth) IssueToken() (string, error) {
	if !a.Enabled() {
		return "", ErrNoSecret
	}

	now := a.now()
	claims := jwt.RegisteredClaims{
		Issuer:   issuer,
		Subject:  a.cfg.Merchant,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if a.cfg.TokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(a.cfg.TokenTTL))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.cfg.Secret))
}

func (a *auth) Middleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			h.ServeHTTP(w, r)
			return
		}

		// получение владельца токена
		subject, err := a.getSubject(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		// передаём управление хендлеру
		h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey{}, subject)))
	})
}

func (a *auth) getSubject(r *http.Request) (string, error) {
	// заголовок Authorization, затем куки
	var tokenString string
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		tokenString = strings.TrimPrefix(header, "Bearer ")
	} else if cookie, err := r.Cookie(CookieToken); err == nil {
		tokenString = cookie.Value
	}
	if tokenString == "" {
		return "", ErrNoToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(a.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject != a.cfg.Merchant {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
