package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusFor(t *testing.T) {
	cause := errors.New("cause")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"input", InputError("bad image", cause), http.StatusBadRequest},
		{"auth", AuthError("missing token"), http.StatusUnauthorized},
		{"upstream", UpstreamError("model failed", cause), http.StatusInternalServerError},
		{"processing", ProcessingError("encode failed", cause), http.StatusInternalServerError},
		{"wrapped input", fmt.Errorf("handler: %w", InputError("bad image", nil)), http.StatusBadRequest},
		{"plain error", cause, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPublicMessageHidesCause(t *testing.T) {
	err := UpstreamError("model request failed", errors.New("api key AIza... rejected"))

	if got := PublicMessage(err); got != "model request failed" {
		t.Errorf("PublicMessage() = %q", got)
	}
	if got := PublicMessage(errors.New("secret detail")); got != "internal error" {
		t.Errorf("PublicMessage() = %q, want generic message", got)
	}
}

func TestBridgeErrorUnwrap(t *testing.T) {
	err := InputError("image_base64 is empty", ErrEmptyImage)
	if !errors.Is(err, ErrEmptyImage) {
		t.Error("errors.Is should find the sentinel")
	}
	if KindOf(err).String() != "input" {
		t.Errorf("Kind = %s", KindOf(err))
	}
	if KindOf(errors.New("x")) != 0 {
		t.Error("KindOf() of a plain error should be 0")
	}
}
