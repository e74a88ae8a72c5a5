// Package token issues and verifies the two JWT flavors used by the proxy:
// bearer credentials identifying a user, and short-lived preview tokens
// scoping raw-byte access to exactly one remote path.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/designsystemsinternational/react-admin-github/internal/apperr"
)

const bearerPrefix = "Bearer "

var hmacOnly = jwt.WithValidMethods([]string{"HS256"})

// CredentialClaims is the payload of a bearer credential. Subject carries
// the user id.
type CredentialClaims struct {
	jwt.RegisteredClaims
	FullName string `json:"fullName,omitempty"`
}

// PreviewClaims scopes a preview token to one remote path.
type PreviewClaims struct {
	jwt.RegisteredClaims
	Path string `json:"path"`
}

// IssueCredential signs a bearer credential for subject. A ttl of zero
// issues a token with no expiry.
func IssueCredential(subject, fullName string, secret []byte, ttl time.Duration) (string, error) {
	claims := CredentialClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		FullName:         fullName,
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Authorize validates an Authorization header value and returns the subject
// it identifies. A missing header, a non-Bearer scheme, a bad signature,
// and a payload without a subject all fail with the same ErrUnauthorized;
// the cause is not distinguishable by the caller.
func Authorize(headerValue string, secret []byte) (string, error) {
	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return "", apperr.ErrUnauthorized
	}
	raw := strings.TrimPrefix(headerValue, bearerPrefix)

	claims := &CredentialClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, keyFunc(secret), hmacOnly)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", apperr.ErrUnauthorized
	}
	return claims.Subject, nil
}

// IssuePreview signs a token granting access to exactly one remote path.
// A ttl of zero issues a token with no expiry claim.
func IssuePreview(path string, secret []byte, ttl time.Duration) (string, error) {
	claims := PreviewClaims{Path: path}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyPreview checks a preview token against the requested path. Every
// failure, including a path mismatch, yields ErrUnauthorized.
func VerifyPreview(tokenString, requestedPath string, secret []byte) error {
	claims := &PreviewClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, keyFunc(secret), hmacOnly)
	if err != nil || !parsed.Valid {
		return apperr.ErrUnauthorized
	}
	if claims.Path == "" || claims.Path != requestedPath {
		return apperr.ErrUnauthorized
	}
	return nil
}

func keyFunc(secret []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if len(secret) == 0 {
			return nil, errors.New("token: empty secret")
		}
		return secret, nil
	}
}
