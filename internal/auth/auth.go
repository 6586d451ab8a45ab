// Package auth resolves bearer credentials into caller identities.
// Resolution failures degrade to an anonymous connection rather than a
// rejection; the hub never enforces access control itself.
package auth

import (
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tmachado/fleetline/internal/domain"
)

// Resolver validates HS256 tokens issued by the platform's auth service
// and extracts the subject claim as the caller identity.
type Resolver struct {
	secret []byte
}

// NewResolver creates a resolver. An empty secret disables validation:
// every connection resolves to anonymous.
func NewResolver(secret string) *Resolver {
	if secret == "" {
		return &Resolver{}
	}
	return &Resolver{secret: []byte(secret)}
}

// Resolve returns the identity carried by token, or domain.Anonymous if
// the token is missing, malformed, expired, or signed with another key.
func (r *Resolver) Resolve(token string) domain.Identity {
	if token == "" || r.secret == nil {
		return domain.Anonymous
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return r.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		slog.Debug("Credential resolution failed, degrading to anonymous", "error", err)
		return domain.Anonymous
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return domain.Anonymous
	}
	return domain.Identity(subject)
}
