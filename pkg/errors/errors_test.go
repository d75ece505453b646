package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := New(ErrCodeDanglingLink, "link %d: unknown target %q", 2, "ghost")
	if got, want := err.Error(), `DANGLING_LINK: link 2: unknown target "ghost"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	cause := errors.New("connection refused")
	wrapped := Wrap(ErrCodeNetwork, cause, "fetch %s", "http://localhost/graph")
	if got, want := wrapped.Error(), "NETWORK_ERROR: fetch http://localhost/graph: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("wrapped error does not unwrap to its cause")
	}
}

func TestCodeLookup(t *testing.T) {
	outer := Wrap(ErrCodeNetwork, New(ErrCodeTimeout, "slow"), "fetch")
	viaFmt := fmt.Errorf("reload: %w", New(ErrCodeDuplicateNode, "a"))

	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"direct", New(ErrCodeMissingID, "node 0"), ErrCodeMissingID},
		{"outermost code wins", outer, ErrCodeNetwork},
		{"through fmt wrap", viaFmt, ErrCodeDuplicateNode},
		{"plain", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeInternal) {
				t.Error("Is(INTERNAL_ERROR) = true")
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(Wrap(ErrCodeNetwork, errors.New("eof"), "site backend unreachable")); got != "site backend unreachable" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeDanglingLink, "link 0"), 422},
		{New(ErrCodeDuplicateNode, "a"), 422},
		{New(ErrCodeInvalidTheme, "sepia"), 422},
		{New(ErrCodeNodeNotFound, "x"), 404},
		{Wrap(ErrCodeNetwork, errors.New("refused"), "fetch"), 502},
		{New(ErrCodeTimeout, "slow"), 504},
		{New(ErrCodeRateLimited, "slow down"), 429},
		{New(ErrCodeStopped, "engine stopped"), 503},
		{New(ErrCodeInternal, "bug"), 500},
		{errors.New("boom"), 500},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestIsValidation(t *testing.T) {
	for _, code := range []Code{ErrCodeMissingID, ErrCodeDuplicateNode, ErrCodeDanglingLink, ErrCodeInvalidSnapshot} {
		if !IsValidation(New(code, "x")) {
			t.Errorf("IsValidation(%s) = false", code)
		}
	}
	for _, err := range []error{New(ErrCodeNetwork, "down"), errors.New("plain"), nil} {
		if IsValidation(err) {
			t.Errorf("IsValidation(%v) = true", err)
		}
	}
}
