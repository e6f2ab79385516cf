package config

import (
	"os"
	"testing"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	original, existed := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset %s: %v", key, err)
	}
	t.Cleanup(func() {
		if !existed {
			_ = os.Unsetenv(key)
			return
		}
		_ = os.Setenv(key, original)
	})
}

func TestDefaultsWithoutEnvironment(t *testing.T) {
	for _, key := range []string{"MONEY_FORMAT", "ENABLE_HISTORY_STATE", "SIGNAL_QUEUE_SIZE", "STRING_SOLD_OUT"} {
		unsetEnv(t, key)
	}

	cfg := New()
	if cfg.MoneyFormat != DefaultMoneyFormat {
		t.Fatalf("expected default money format, got %q", cfg.MoneyFormat)
	}
	if cfg.EnableHistoryState {
		t.Fatalf("expected history state disabled by default")
	}
	if cfg.SignalQueueSize != 64 {
		t.Fatalf("expected default queue size 64, got %d", cfg.SignalQueueSize)
	}
	if cfg.StringSoldOut != "Sold out" {
		t.Fatalf("expected default sold out string, got %q", cfg.StringSoldOut)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("MONEY_FORMAT", "€{{amount_with_comma_separator}}")
	t.Setenv("ENABLE_HISTORY_STATE", "1")
	t.Setenv("STRING_UNAVAILABLE", "  Not available ")

	cfg := New()
	if cfg.MoneyFormat != "€{{amount_with_comma_separator}}" {
		t.Fatalf("expected money format override, got %q", cfg.MoneyFormat)
	}
	if !cfg.EnableHistoryState {
		t.Fatalf("expected history state enabled")
	}
	if cfg.StringUnavailable != "Not available" {
		t.Fatalf("expected trimmed override, got %q", cfg.StringUnavailable)
	}
}

func TestInvalidQueueSizeFallsBack(t *testing.T) {
	t.Setenv("SIGNAL_QUEUE_SIZE", "-4")
	if got := New().SignalQueueSize; got != 64 {
		t.Fatalf("expected fallback queue size, got %d", got)
	}

	t.Setenv("SIGNAL_QUEUE_SIZE", "lots")
	if got := New().SignalQueueSize; got != 64 {
		t.Fatalf("expected fallback queue size for garbage, got %d", got)
	}
}
