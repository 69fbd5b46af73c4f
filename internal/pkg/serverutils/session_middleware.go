package serverutils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "sid"
	SessionHeaderName = "X-Session-Id"
	sessionLocalsKey  = "session_id"
)

// SessionTokens issues and verifies the signed session cookie
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionTokens{secret: []byte(secret), ttl: ttl}
}

func (s *SessionTokens) Issue(sessionID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *SessionTokens) Parse(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", errors.New("invalid session token")
	}
	if claims.Subject == "" {
		return "", errors.New("session token has no subject")
	}
	return claims.Subject, nil
}

// Middleware resolves the session key from a signed token in the X-Session-Id
// header or the sid cookie. When neither verifies, a new session is issued and
// its token is returned in both the cookie and the response header.
func (s *SessionTokens) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		for _, token := range []string{ctx.Get(SessionHeaderName), ctx.Cookies(SessionCookieName)} {
			if token == "" {
				continue
			}
			if id, err := s.Parse(token); err == nil {
				ctx.Locals(sessionLocalsKey, id)
				return ctx.Next()
			}
		}

		id := uuid.NewString()
		token, err := s.Issue(id)
		if err != nil {
			return err
		}
		ctx.Cookie(&fiber.Cookie{
			Name:     SessionCookieName,
			Value:    token,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Expires:  time.Now().Add(s.ttl),
		})
		ctx.Set(SessionHeaderName, token)
		ctx.Locals(sessionLocalsKey, id)
		return ctx.Next()
	}
}

// SessionID returns the key stored by Middleware, or "" outside it
func SessionID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(sessionLocalsKey).(string)
	return id
}
