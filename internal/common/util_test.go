package common

import (
	"encoding/base64"
	"errors"
	"testing"
)

// ---------- MakeRandBase64String ----------

func TestMakeRandBase64String_DecodesToRequestedSize(t *testing.T) {
	const n = 32
	s, err := MakeRandBase64String(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("string is not valid base64: %v", err)
	}
	if len(raw) != n {
		t.Fatalf("expected %d decoded bytes, got %d", n, len(raw))
	}
}

func TestMakeRandBase64String_ZeroSize(t *testing.T) {
	s, err := MakeRandBase64String(0)
	if err != nil {
		t.Fatalf("unexpected error for size=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for size=0, got %q", s)
	}
}

func TestMakeRandBase64String_Distinct(t *testing.T) {
	a, err := MakeRandBase64String(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := MakeRandBase64String(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Fatalf("two 256-bit random strings are identical: %q", a)
	}
}

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

// ---------- errors ----------

func TestTokenErrors_WrapInvalidToken(t *testing.T) {
	for _, err := range []error{ErrTokenExpired, ErrInvalidSignature, ErrInvalidIssuer, ErrInvalidAudience, ErrMalformedToken} {
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%v must wrap ErrInvalidToken", err)
		}
	}
	if errors.Is(ErrTokenExpired, ErrInvalidSignature) {
		t.Fatal("token error kinds must stay distinguishable")
	}
}

func TestNotFoundErrors_WrapErrorNotFound(t *testing.T) {
	if !errors.Is(ErrEventNotFound, ErrorNotFound) || !errors.Is(ErrRegistrationNotFound, ErrorNotFound) {
		t.Fatal("specific not-found errors must wrap ErrorNotFound")
	}
}

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := NewValidationError("Invalid id.")
	if !errors.Is(err, ErrorValidation) {
		t.Fatal("validation errors must match ErrorValidation")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Message != "Invalid id." || err.Error() != "Invalid id." {
		t.Fatalf("unexpected validation error %#v", err)
	}
}
