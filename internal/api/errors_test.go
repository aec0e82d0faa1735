package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rallypoint-io/rallypoint-core/internal/auth"
	"github.com/rallypoint-io/rallypoint-core/internal/infrastructure/logging"
	"github.com/rallypoint-io/rallypoint-core/internal/org"
)

func TestWriteDomainError(t *testing.T) {
	s := &Server{logger: &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unauthorized", auth.ErrUnauthorized, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"user not found", auth.ErrUserNotFound, http.StatusNotFound},
		{"org not found", fmt.Errorf("%w: group", org.ErrNotFound), http.StatusNotFound},
		{"timeout", fmt.Errorf("listing groups: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"unknown", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.writeDomainError(rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

// An expired operation deadline is reported as a timeout in its own
// error class, never as a generic internal error.
func TestWriteDomainErrorTimeoutBody(t *testing.T) {
	s := &Server{logger: &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}}

	rec := httptest.NewRecorder()
	s.writeDomainError(rec, context.DeadlineExceeded)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", rec.Code)
	}
	var body Error
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Code != ErrCodeTimeout {
		t.Errorf("code = %q, want %q", body.Code, ErrCodeTimeout)
	}
}
