package preview

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKind(t *testing.T) {
	tests := []struct {
		kind   Kind
		name   string
		status int
	}{
		{KindUnknown, "unknown", http.StatusInternalServerError},
		{KindBadRequest, "bad_request", http.StatusBadRequest},
		{KindUnauthorized, "unauthorized", http.StatusUnauthorized},
		{KindRateLimited, "rate_limited", http.StatusTooManyRequests},
		{KindEncodingFailure, "encoding_failure", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if tt.kind.String() != tt.name || tt.kind.HTTPStatus() != tt.status {
			t.Errorf("%d: %s %d", tt.kind, tt.kind, tt.kind.HTTPStatus())
		}
	}
}

func TestError(t *testing.T) {
	cause := fmt.Errorf("%w: boom", ErrEncoding)
	err := fmt.Errorf("wrapped: %w", newError(KindEncodingFailure, "failed to render preview", "", cause))

	if KindOf(err) != KindEncodingFailure {
		t.Errorf("KindOf() = %v", KindOf(err))
	}
	if !errors.Is(err, ErrEncoding) {
		t.Error("errors.Is should reach the cause")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain errors are unknown")
	}

	bad := newError(KindBadRequest, "invalid data", "content is empty", ErrInvalidContent)
	if bad.Error() != "invalid data: content is empty" {
		t.Errorf("Error() = %q", bad.Error())
	}
}
