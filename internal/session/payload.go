// Package session decides whether a stored credential is a usable session
// and drives the login, logout and registration transitions.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned by DecodePayload for any token whose
// payload cannot be read.
var ErrMalformedToken = errors.New("malformed token")

// segmentParser only decodes; signatures are the server's business.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Payload holds the claims decoded from a token's middle segment.
// It is always recomputed from the token and never stored.
type Payload struct {
	Claims jwt.MapClaims
}

// Subject returns the "sub" claim, or "" if absent.
func (p Payload) Subject() string {
	sub, err := p.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// ExpiresAt returns the "exp" claim. ok is false if absent or unreadable.
func (p Payload) ExpiresAt() (time.Time, bool) {
	exp, err := p.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// DecodePayload extracts the claims of a three-segment token. Only the middle
// segment is read: it must be base64url-encoded JSON object. The signature is
// not verified. DecodePayload never panics; every failure is ErrMalformedToken.
func DecodePayload(token string) (Payload, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Payload{}, fmt.Errorf("%w: want 3 segments, got %d", ErrMalformedToken, len(parts))
	}

	raw, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	// "null" decodes without error into a nil map.
	if claims == nil {
		return Payload{}, fmt.Errorf("%w: empty payload", ErrMalformedToken)
	}
	return Payload{Claims: claims}, nil
}
