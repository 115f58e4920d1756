package errorbank

import (
	"errors"
	"net/http"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{BadRequest("bad"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Unprocessable("nope"), http.StatusUnprocessableEntity},
		{Internal("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := tc.err.StatusCode(); got != tc.want {
			t.Fatalf("kind %s: expected %d, got %d", tc.err.Kind(), tc.want, got)
		}
	}
}

func TestFromPassesThroughAppErrors(t *testing.T) {
	original := NotFound("No order found")

	got := From(original)
	if got != original {
		t.Fatalf("expected the same AppError back")
	}
}

func TestFromWrapsForeignErrors(t *testing.T) {
	cause := errors.New("driver: bad connection")

	got := From(cause)
	if got.Kind() != KindInternal {
		t.Fatalf("expected internal kind, got %s", got.Kind())
	}
	if !errors.Is(got, cause) {
		t.Fatalf("wrapped cause must survive errors.Is")
	}
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := errors.New("timeout")
	err := Internal("failed to load order", WithCause(cause))

	if !errors.Is(err, cause) {
		t.Fatalf("expected unwrap to reach the cause")
	}
	if err.Error() != "failed to load order: timeout" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
