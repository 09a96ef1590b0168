package main

import (
	"context"
	"strings"
	"testing"

	"resolution-backend/internal/shared/config"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run(context.Background(), config.Config{}, "sideways")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}
