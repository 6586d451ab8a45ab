package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmachado/fleetline/internal/domain"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestResolver_ValidTokenResolvesSubject(t *testing.T) {
	resolver := NewResolver(testSecret)
	token := signToken(t, testSecret, "driver-7", time.Now().Add(time.Hour))

	assert.Equal(t, domain.Identity("driver-7"), resolver.Resolve(token))
}

func TestResolver_MissingTokenIsAnonymous(t *testing.T) {
	resolver := NewResolver(testSecret)
	assert.Equal(t, domain.Anonymous, resolver.Resolve(""))
}

func TestResolver_WrongKeyIsAnonymous(t *testing.T) {
	resolver := NewResolver(testSecret)
	token := signToken(t, "other-secret", "driver-7", time.Now().Add(time.Hour))

	assert.Equal(t, domain.Anonymous, resolver.Resolve(token))
}

func TestResolver_ExpiredTokenIsAnonymous(t *testing.T) {
	resolver := NewResolver(testSecret)
	token := signToken(t, testSecret, "driver-7", time.Now().Add(-time.Hour))

	assert.Equal(t, domain.Anonymous, resolver.Resolve(token))
}

func TestResolver_GarbageTokenIsAnonymous(t *testing.T) {
	resolver := NewResolver(testSecret)
	assert.Equal(t, domain.Anonymous, resolver.Resolve("not.a.jwt"))
}

func TestResolver_MissingSubjectIsAnonymous(t *testing.T) {
	resolver := NewResolver(testSecret)
	token := signToken(t, testSecret, "", time.Now().Add(time.Hour))

	assert.Equal(t, domain.Anonymous, resolver.Resolve(token))
}

func TestResolver_NoSecretDisablesResolution(t *testing.T) {
	resolver := NewResolver("")
	token := signToken(t, testSecret, "driver-7", time.Now().Add(time.Hour))

	assert.Equal(t, domain.Anonymous, resolver.Resolve(token))
}
