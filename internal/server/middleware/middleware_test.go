package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if seen == "" {
		t.Fatal("no request ID in context")
	}
	if got := rr.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("header %q != context %q", got, seen)
	}
}

func TestRequestIDPreservesClientValue(t *testing.T) {
	h := RequestID(okHandler())
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-ID"); got != "client-supplied" {
		t.Errorf("X-Request-ID = %q, want client-supplied", got)
	}
}

func TestLoggerCapturesStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/brew", nil))

	out := buf.String()
	if !strings.Contains(out, "status=418") {
		t.Errorf("log missing status: %s", out)
	}
	if !strings.Contains(out, "path=/brew") {
		t.Errorf("log missing path: %s", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("4xx should log at warn: %s", out)
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	h := RequireSuperAdmin(StaticKey("sekrit"))(okHandler())

	tests := []struct {
		name   string
		key    string
		status int
	}{
		{"valid key", "sekrit", http.StatusOK},
		{"wrong key", "nope", http.StatusUnauthorized},
		{"missing key", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admins", nil)
			if tt.key != "" {
				req.Header.Set(SuperAdminHeader, tt.key)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			if tt.status == http.StatusUnauthorized {
				body, _ := io.ReadAll(rr.Body)
				if !strings.Contains(string(body), `"detail"`) {
					t.Errorf("401 body = %s, want detail envelope", body)
				}
			}
		})
	}
}

func TestStaticKeyRejectsEmptyConfig(t *testing.T) {
	// An unset key must not make the guard accept empty headers.
	verify := StaticKey("")
	if verify("") || verify("anything") {
		t.Fatal("empty configured key must reject everything")
	}
}

func TestHashedKey(t *testing.T) {
	sum := sha256.Sum256([]byte("sekrit"))
	verify := HashedKey(hex.EncodeToString(sum[:]))

	if !verify("sekrit") {
		t.Error("correct key rejected")
	}
	if verify("wrong") {
		t.Error("wrong key accepted")
	}
	if HashedKey("")("anything") {
		t.Error("empty hash must reject everything")
	}
}
