package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := Unauthorized("Invalid username or password.")
		want := "UNAUTHORIZED: Invalid username or password."
		if err.Error() != want {
			t.Errorf("expected %q, got %q", want, err.Error())
		}
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := DatabaseError(cause)
		if got := err.Error(); got != fmt.Sprintf("DATABASE_ERROR: A database error occurred. Please try again. (cause: %v)", cause) {
			t.Errorf("unexpected error string: %q", got)
		}
	})
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   ErrorCode
		wantStatus int
		wantRetry  bool
	}{
		{"not found", NotFound("user", "42"), ErrCodeNotFound, http.StatusNotFound, false},
		{"already exists", AlreadyExists("user"), ErrCodeAlreadyExists, http.StatusConflict, false},
		{"conflict", Conflict("username taken"), ErrCodeConflict, http.StatusConflict, false},
		{"invalid input", InvalidInput("email", "malformed"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"bad request", BadRequest("cannot fulfil"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"unauthorized", Unauthorized(""), ErrCodeUnauthorized, http.StatusUnauthorized, false},
		{"configuration", Configuration("unsupported provider"), ErrCodeConfiguration, http.StatusInternalServerError, false},
		{"clock regression", ClockRegression(100, 50), ErrCodeClockRegression, http.StatusInternalServerError, false},
		{"upstream unavailable", UpstreamUnavailable("token_exchange"), ErrCodeUpstreamUnavailable, http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code: expected %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("status: expected %d, got %d", tt.wantStatus, tt.err.HTTPStatus)
			}
			if tt.err.Retryable != tt.wantRetry {
				t.Errorf("retryable: expected %v, got %v", tt.wantRetry, tt.err.Retryable)
			}
		})
	}
}

func TestClockRegressionDetails(t *testing.T) {
	err := ClockRegression(2000, 1500)
	if err.Details["last_ms"] != int64(2000) || err.Details["now_ms"] != int64(1500) {
		t.Errorf("expected timestamps in details, got %v", err.Details)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Internal(cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NotFound("client", "abc"))
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed on wrapped error")
	}
	if appErr.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", appErr.Code)
	}

	if _, ok := AsAppError(errors.New("plain")); ok {
		t.Error("expected AsAppError to fail on plain error")
	}
}

func TestIsCode(t *testing.T) {
	err := Configuration("unsupported authentication provider: auth0")
	if !IsCode(err, ErrCodeConfiguration) {
		t.Error("expected IsCode to match CONFIGURATION_ERROR")
	}
	if IsCode(err, ErrCodeUnauthorized) {
		t.Error("expected IsCode to reject mismatched code")
	}
}

func TestToResponse(t *testing.T) {
	err := Unauthorized("Invalid username or password.").WithDetail("hint", "check caps lock")
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeUnauthorized {
		t.Errorf("expected UNAUTHORIZED, got %s", resp.Error.Code)
	}
	if resp.Error.Details["hint"] != "check caps lock" {
		t.Errorf("expected details carried over, got %v", resp.Error.Details)
	}
}
