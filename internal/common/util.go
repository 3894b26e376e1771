package common

import (
	"crypto/rand"
	"encoding/base64"
)

// AuthorizationHeaderName is the HTTP header that carries the bearer access
// token on protected requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the authorization scheme expected in AuthorizationHeaderName.
const BearerScheme = "Bearer"

// MakeRandBase64String reads size random bytes from crypto/rand and returns
// them encoded with standard base64. The returned string length is
// 4*ceil(size/3).
//
// It returns an error if the random number generator fails.
func MakeRandBase64String(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
