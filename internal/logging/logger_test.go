package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewFallsBackToInfo(t *testing.T) {
	logger := New("nonsense", "walletapi", "test", true)
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("debug should be disabled at the default level")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should be enabled at the default level")
	}
}

func TestNewHonoursLevel(t *testing.T) {
	logger := New("debug", "walletapi", "production", false)
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("debug should be enabled")
	}
}
