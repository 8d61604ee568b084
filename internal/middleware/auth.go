package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	SessionKey contextKey = "session"
)

const (
	SessionCookieName = "archeohub_token"
	SessionTTL        = 7 * 24 * time.Hour
)

var (
	ErrNoToken        = errors.New("missing session token")
	ErrInvalidToken   = errors.New("invalid session token")
	ErrSessionRevoked = errors.New("session revoked")
)

// SessionChecker reports whether a session id is still live.
type SessionChecker interface {
	Exists(ctx context.Context, sessionID string) (bool, error)
}

type SessionClaims struct {
	UserID    uuid.UUID
	Email     string
	SessionID string
	ExpiresAt time.Time
}

type JWTAuth struct {
	Secret   []byte
	Sessions SessionChecker
}

func NewJWTAuth(secret string, sessions SessionChecker) *JWTAuth {
	return &JWTAuth{Secret: []byte(secret), Sessions: sessions}
}

// GenerateSessionToken creates a JWT valid for SessionTTL.
func (j *JWTAuth) GenerateSessionToken(userID uuid.UUID, email, sessionID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(SessionTTL)
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"sid":   sessionID,
		"exp":   expiresAt.Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken verifies the signature and expiry. It does not consult the
// session store.
func (j *JWTAuth) ParseToken(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	out := &SessionClaims{UserID: userID, Email: email, SessionID: sid}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// Authenticate reads the token from the session cookie, a Bearer header or
// the "token" query parameter, in that order, and checks the session is live.
func (j *JWTAuth) Authenticate(r *http.Request) (*SessionClaims, error) {
	tokenStr := tokenFromRequest(r)
	if tokenStr == "" {
		return nil, ErrNoToken
	}

	claims, err := j.ParseToken(tokenStr)
	if err != nil {
		return nil, err
	}

	if j.Sessions != nil {
		live, err := j.Sessions.Exists(r.Context(), claims.SessionID)
		if err != nil {
			return nil, err
		}
		if !live {
			return nil, ErrSessionRevoked
		}
	}
	return claims, nil
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return r.URL.Query().Get("token")
}

// Middleware rejects requests without a live session.
func (j *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := j.Authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated", r)
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), claims)))
	})
}

// Optional attaches the session when one is present and never rejects.
func (j *JWTAuth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, err := j.Authenticate(r); err == nil {
			r = r.WithContext(withSession(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

func withSession(ctx context.Context, claims *SessionClaims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	return context.WithValue(ctx, SessionKey, claims)
}

// GetUserID extracts user_id from request context; uuid.Nil when anonymous.
func GetUserID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(UserIDKey).(uuid.UUID)
	return id
}

func GetSession(ctx context.Context) *SessionClaims {
	s, _ := ctx.Value(SessionKey).(*SessionClaims)
	return s
}
