package endpoint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestNewError(t *testing.T) {
	err := NewError(CodeNotFound, "endpoint not found")
	if err.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, err.Code)
	}
	if err.Message != "endpoint not found" {
		t.Errorf("expected message 'endpoint not found', got %s", err.Message)
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(CodeTypeMismatch, "name must be a string, got %s", "int")
	if err.Code != CodeTypeMismatch {
		t.Errorf("expected code %s, got %s", CodeTypeMismatch, err.Code)
	}
	if err.Message != "name must be a string, got int" {
		t.Errorf("expected formatted message, got %s", err.Message)
	}
}

func TestErrorError(t *testing.T) {
	err := NewError(CodeTypeMismatch, "bad reflection")
	expected := "type_mismatch: bad reflection"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestErrorIs(t *testing.T) {
	err := Errorf(CodeTypeMismatch, "reflection must be a structured value, got %s", "string")

	if !errors.Is(err, ErrTypeMismatch) {
		t.Error("expected TypeMismatch error to match ErrTypeMismatch")
	}

	wrapped := fmt.Errorf("endpoints[3]: %w", err)
	if !errors.Is(wrapped, ErrTypeMismatch) {
		t.Error("expected wrapped TypeMismatch error to match ErrTypeMismatch")
	}

	if errors.Is(NewError(CodeNotFound, "x"), ErrTypeMismatch) {
		t.Error("expected not_found error not to match ErrTypeMismatch")
	}
	if errors.Is(errors.New("type_mismatch: x"), ErrTypeMismatch) {
		t.Error("expected plain error not to match ErrTypeMismatch")
	}
}

func TestErrorWithDetail(t *testing.T) {
	base := NewError(CodeAlreadyExists, "collision")
	withPath := base.WithDetail("path", "/calc/")

	if base.Details != nil {
		t.Error("expected WithDetail to leave the receiver untouched")
	}
	if withPath.Details["path"] != "/calc/" {
		t.Errorf("expected path detail, got %v", withPath.Details)
	}

	merged := withPath.WithDetails(map[string]any{"endpoint": "calc"})
	if len(merged.Details) != 2 {
		t.Errorf("expected 2 details, got %v", merged.Details)
	}
	if same := merged.WithDetails(nil); same != merged {
		t.Error("expected WithDetails(nil) to return the receiver")
	}
}

func TestDefaultErrorTransformer(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		wantCode ErrorCode
		wantMsg  string
	}{
		{
			name:     "nil error",
			input:    nil,
			wantCode: "",
			wantMsg:  "",
		},
		{
			name:     "endpoint error passthrough",
			input:    NewError(CodeTypeMismatch, "bad name"),
			wantCode: CodeTypeMismatch,
			wantMsg:  "bad name",
		},
		{
			name:     "wrapped endpoint error",
			input:    fmt.Errorf("loading: %w", NewError(CodeAlreadyExists, "collision")),
			wantCode: CodeAlreadyExists,
			wantMsg:  "collision",
		},
		{
			name:     "context deadline exceeded",
			input:    context.DeadlineExceeded,
			wantCode: CodeDeadlineExceeded,
			wantMsg:  "request timeout",
		},
		{
			name:     "context canceled",
			input:    context.Canceled,
			wantCode: CodeCanceled,
			wantMsg:  "context canceled",
		},
		{
			name:     "generic error",
			input:    errors.New("something failed"),
			wantCode: CodeInternal,
			wantMsg:  "something failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DefaultErrorTransformer(tt.input)
			if tt.input == nil {
				if result != nil {
					t.Errorf("expected nil for nil input, got %v", result)
				}
				return
			}
			if result.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, result.Code)
			}
			if result.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, result.Message)
			}
		})
	}
}

func TestDefaultErrorTransformer_ValidationErrors(t *testing.T) {
	type TestStruct struct {
		Name string `validate:"required"`
		Port int    `validate:"gte=0,lte=65535"`
	}

	validate := validator.New()
	err := validate.Struct(TestStruct{Port: -1})

	result := DefaultErrorTransformer(err)
	if result.Code != CodeInvalidArgument {
		t.Errorf("expected code %s, got %s", CodeInvalidArgument, result.Code)
	}
	if result.Details == nil {
		t.Fatal("expected details to be non-nil")
	}
	if result.Details["Name"] != "required" {
		t.Errorf("expected Name: required, got %v", result.Details["Name"])
	}
	if _, ok := result.Details["Port"]; !ok {
		t.Error("expected Port field in details")
	}
	if !strings.Contains(result.Message, "Name: required") {
		t.Errorf("expected message to mention Name, got %q", result.Message)
	}
}

func TestDefaultErrorTransformer_MultiError(t *testing.T) {
	err1 := NewError(CodeTypeMismatch, "error 1")
	err2 := errors.New("error 2")
	multiErr := errors.Join(err1, err2)

	result := DefaultErrorTransformer(multiErr)
	if result.Code != CodeTypeMismatch {
		t.Errorf("expected code from first error %s, got %s", CodeTypeMismatch, result.Code)
	}
	if result.Message != "type_mismatch: error 1; error 2" {
		t.Errorf("expected combined message, got %q", result.Message)
	}
}

func TestDefaultErrorTransformer_JoinedEndpointErrors(t *testing.T) {
	joined := errors.Join(
		fmt.Errorf("endpoints[0]: %w", Errorf(CodeTypeMismatch, "name must be a string, got int")),
		fmt.Errorf("endpoints[2]: %w", Errorf(CodeTypeMismatch, "path must be a string, got bool")),
	)

	result := DefaultErrorTransformer(joined)
	if result.Code != CodeTypeMismatch {
		t.Errorf("expected code %s, got %s", CodeTypeMismatch, result.Code)
	}
	for _, want := range []string{
		"endpoints[0]: type_mismatch: name must be a string, got int",
		"endpoints[2]: type_mismatch: path must be a string, got bool",
	} {
		if !strings.Contains(result.Message, want) {
			t.Errorf("expected message to contain %q, got %q", want, result.Message)
		}
	}
}

func TestErrorCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code       ErrorCode
		wantStatus int
	}{
		{CodeTypeMismatch, http.StatusBadRequest},
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeCanceled, 499},
		{CodeInternal, http.StatusInternalServerError},
		{ErrorCode("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			status := tt.code.HTTPStatus()
			if status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, status)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	epErr := NewError(CodeNotFound, "endpoint not found")
	w := httptest.NewRecorder()

	writeError(w, epErr, nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", w.Header().Get("Content-Type"))
	}
	want := `{"error":{"code":"not_found","message":"endpoint not found"}}` + "\n"
	if w.Body.String() != want {
		t.Errorf("expected body %q, got %q", want, w.Body.String())
	}
}

type failingWriter struct {
	headerWritten bool
}

func (fw *failingWriter) Header() http.Header {
	return http.Header{}
}

func (fw *failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

func (fw *failingWriter) WriteHeader(statusCode int) {
	fw.headerWritten = true
}

func TestWriteError_EncodingFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	w := &failingWriter{}

	writeError(w, NewError(CodeInternal, "test error"), logger)

	if !w.headerWritten {
		t.Error("expected WriteHeader to be called")
	}
	if !strings.Contains(buf.String(), "failed to encode error response") {
		t.Errorf("expected encoding failure to be logged, got %q", buf.String())
	}
}
