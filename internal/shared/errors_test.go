package shared

import (
	"errors"
	"fmt"
	"testing"
)

func TestPlatformError(t *testing.T) {
	err := &PlatformError{Code: -400, Message: "请求错误"}

	if err.Error() != "-400:请求错误" {
		t.Errorf("Error() = %q, want %q", err.Error(), "-400:请求错误")
	}

	wrapped := fmt.Errorf("list segments: %w", err)
	if !errors.Is(wrapped, ErrPlatform) {
		t.Error("wrapped PlatformError should match ErrPlatform")
	}
	if errors.Is(wrapped, ErrTransport) {
		t.Error("PlatformError should not match ErrTransport")
	}

	var pe *PlatformError
	if !errors.As(wrapped, &pe) || pe.Code != -400 {
		t.Errorf("errors.As failed or wrong code: %+v", pe)
	}
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("wraps cause", func(t *testing.T) {
		err := NewTransportError("fetch audio", cause)
		if err.Error() != "fetch audio: connection refused" {
			t.Errorf("Error() = %q", err.Error())
		}
		if !errors.Is(err, ErrTransport) {
			t.Error("should match ErrTransport")
		}
		if !errors.Is(err, cause) {
			t.Error("should unwrap to cause")
		}
	})

	t.Run("does not double wrap", func(t *testing.T) {
		inner := NewTransportError("inner", cause)
		outer := NewTransportError("outer", inner)
		if outer != inner {
			t.Errorf("expected the same error back, got %v", outer)
		}
	})

	t.Run("empty op", func(t *testing.T) {
		err := &TransportError{Err: cause}
		if err.Error() != "transport: connection refused" {
			t.Errorf("Error() = %q", err.Error())
		}
	})
}

func TestLocalIOError(t *testing.T) {
	cause := errors.New("permission denied")

	tc := []struct {
		kind LocalIOKind
		want string
	}{
		{CreateFailed, "could not create /out/x.aac: permission denied"},
		{WriteFailed, "could not write /out/x.aac: permission denied"},
	}

	for _, tt := range tc {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := &LocalIOError{Kind: tt.kind, Path: "/out/x.aac", Err: cause}
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
			if !errors.Is(err, ErrLocalIO) {
				t.Error("should match ErrLocalIO")
			}
			if !errors.Is(err, cause) {
				t.Error("should unwrap to cause")
			}
		})
	}
}
