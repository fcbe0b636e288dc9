package main

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/fx"
)

// TestAppGraphValidity verifies that the dependency graph is resolvable.
// This test will fail if you forget an fx.Provide for a required interface.
func TestAppGraphValidity(t *testing.T) {
	err := fx.ValidateApp(
		AppOptions(runOptions{ConfigPath: "testdata/missing.toml"}),
		fx.NopLogger,
	)
	if err != nil {
		t.Errorf("Dependency graph is not valid: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		logger, err := newLogger(runOptions{Verbose: verbose})
		if err != nil {
			t.Fatalf("Failed to create logger (verbose=%v): %v", verbose, err)
		}
		if logger == nil {
			t.Fatal("Logger should not be nil")
		}
		logger.Info("Test logger initialization")
	}
}

func TestClassifyCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"classify",
		"https://www.youtube.com/watch?v=abc123",
		"https://music.youtube.com/watch?v=xyz789",
		"https://www.youtube.com/feed/subscriptions",
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	expected := []string{
		"https://www.youtube.com/watch?v=abc123\tvideo\tabc123",
		"https://music.youtube.com/watch?v=xyz789\taudio\txyz789",
		"https://www.youtube.com/feed/subscriptions\tnot recognized",
	}
	if len(lines) != len(expected) {
		t.Fatalf("Expected %d lines, got %d: %q", len(expected), len(lines), out.String())
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("Line %d: expected %q, got %q", i, expected[i], lines[i])
		}
	}
}

func TestClassifyCommand_CustomDomain(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"classify", "--domain", "example.com", "https://music.example.com/watch?v=xyz789"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "https://music.example.com/watch?v=xyz789\taudio\txyz789" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestClassifyCommand_RequiresURL(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"classify"})

	if err := cmd.Execute(); err == nil {
		t.Error("Expected an error without URLs")
	}
}
