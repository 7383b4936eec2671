package testutil

import (
	"encoding/base64"
	"encoding/json"
)

// UnsignedToken builds a three-segment token whose payload encodes claims.
// The signature segment is a placeholder: clients never verify it.
func UnsignedToken(claims map[string]any) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body, err := json.Marshal(claims)
	if err != nil {
		panic(err)
	}
	return header + "." + base64.RawURLEncoding.EncodeToString(body) + ".sig"
}

// RawToken builds a three-segment token whose payload is the given bytes.
func RawToken(payload string) string {
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"
}
