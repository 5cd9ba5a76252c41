package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryNav, "nav key not found").
			WithSeverity(SeverityFatal).
			WithContext("config", "mkdocs.yml").
			Build()

		if err.Category() != CategoryNav {
			t.Errorf("expected category %s, got %s", CategoryNav, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "nav key not found" {
			t.Errorf("expected message 'nav key not found', got %s", err.Message())
		}
		file, exists := err.Context().GetString("config")
		if !exists || file != "mkdocs.yml" {
			t.Errorf("expected context config=mkdocs.yml, got %v", file)
		}
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		base := ConfigError("bad config").Build()
		wrapped := fmt.Errorf("loading: %w", base)

		if !IsClassified(wrapped) {
			t.Error("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if base.CanRetry() {
			t.Error("expected config error to not be retryable")
		}
		if !base.IsFatal() {
			t.Error("expected config error to be fatal")
		}
	})
}

func TestErrorBuilder_WrapKeepsCause(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := WrapError(originalErr, CategoryFileSystem, "read source").
		Warning().
		WithContext("path", "docs/a.md").
		Build()

	if !errors.Is(err, originalErr) {
		t.Error("expected error to wrap original error")
	}
	if err.Severity() != SeverityWarning {
		t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
	}
	if got := err.Error(); got != "[filesystem:warning] read source: permission denied" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestGetCategory_Unclassified(t *testing.T) {
	if got := GetCategory(errors.New("plain")); got != CategoryInternal {
		t.Errorf("expected %s, got %s", CategoryInternal, got)
	}
}
