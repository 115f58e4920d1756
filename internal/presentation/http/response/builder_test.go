package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/veggie-dogs/orders/pkg/errorbank"
)

func newTestContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestBuilderSuccessEmitsPayloadVerbatim(t *testing.T) {
	ctx, rec := newTestContext()

	err := New(ctx).WithData(map[string]string{"hello": "world"}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decode(t, rec); body["hello"] != "world" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestBuilderStatusOverride(t *testing.T) {
	ctx, rec := newTestContext()

	_ = New(ctx).WithStatus(http.StatusCreated).WithData(map[string]int{"order_id": 3}).Build()

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestBuilderNotFoundRendersMessage(t *testing.T) {
	ctx, rec := newTestContext()

	_ = New(ctx).WithError(errorbank.NotFound("No order found")).Build()

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["message"] != "No order found" {
		t.Fatalf("expected message key, got %v", body)
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("not-found must not carry an error key: %v", body)
	}
}

func TestBuilderClientErrorRendersError(t *testing.T) {
	ctx, rec := newTestContext()

	_ = New(ctx).WithError(errorbank.BadRequest("user_id parameter is required")).Build()

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decode(t, rec); body["error"] != "user_id parameter is required" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestBuilderWrapsUnknownErrors(t *testing.T) {
	ctx, rec := newTestContext()

	_ = New(ctx).WithError(echo.ErrInternalServerError).Build()

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := decode(t, rec); body["error"] == nil {
		t.Fatalf("expected error body, got %v", body)
	}
}
