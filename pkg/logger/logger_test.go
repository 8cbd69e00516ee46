package logger

import (
	"testing"
)

func TestNew(t *testing.T) {
	logger, err := New()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if logger == nil {
		t.Fatal("Expected non-nil logger")
	}
	defer func() {
		_ = logger.Sync() // Ignore error in test cleanup
	}()
}

func TestNewDevelopment(t *testing.T) {
	logger, err := NewDevelopment()
	if err != nil {
		t.Fatalf("Failed to create development logger: %v", err)
	}
	if logger == nil {
		t.Fatal("Expected non-nil logger")
	}
	defer func() {
		_ = logger.Sync() // Ignore error in test cleanup
	}()
}
