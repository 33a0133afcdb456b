package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tjr-trades/staffops/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("testplatform", srv.URL, BearerAuth("test-key"), zerolog.Nop())
}

func TestClientGetJSONDecodesResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer header, got %q", got)
		}
		if r.URL.RawQuery != "limit=5" {
			t.Errorf("query not forwarded: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"ok"}`))
	})

	var out struct {
		Name string `json:"name"`
	}
	err := c.GetJSON(context.Background(), "/things", url.Values{"limit": {"5"}}, &out)
	if err != nil {
		t.Fatalf("GetJSON returned error: %v", err)
	}
	if out.Name != "ok" {
		t.Fatalf("response not decoded: %+v", out)
	}
}

func TestClientWrapsUpstreamFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantStatus int
	}{
		{"message field", http.StatusConflict, `{"message":"already owned"}`, "already owned", 409},
		{"error field", http.StatusBadRequest, `{"error":"bad input"}`, "bad input", 400},
		{"plain body", http.StatusInternalServerError, "boom", "boom", 500},
		{"empty body", http.StatusBadGateway, "", "request failed", 502},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := c.GetJSON(context.Background(), "/things", nil, nil)
			var ue *domain.UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
			if ue.StatusCode != tt.wantStatus || ue.Message != tt.wantMsg {
				t.Fatalf("unexpected error: %+v", ue)
			}
			if ue.Platform != "testplatform" {
				t.Fatalf("platform not attached: %+v", ue)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := c.GetJSON(context.Background(), "/missing", nil, nil)
	if !IsNotFound(err) {
		t.Fatalf("expected IsNotFound, got %v", err)
	}
	if IsNotFound(nil) {
		t.Fatal("nil error is not a 404")
	}
}

func TestClientPostFormEncodesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("PhoneNumber") != "+16505550100" {
			t.Errorf("form field missing: %v", r.PostForm)
		}
		_, _ = w.Write([]byte(`{"sid":"PN123"}`))
	})

	var out struct {
		SID string `json:"sid"`
	}
	err := c.PostForm(context.Background(), "/numbers", url.Values{"PhoneNumber": {"+16505550100"}}, &out)
	if err != nil {
		t.Fatalf("PostForm returned error: %v", err)
	}
	if out.SID != "PN123" {
		t.Fatalf("response not decoded: %+v", out)
	}
}
