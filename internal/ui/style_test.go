package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestConfigure(t *testing.T) {
	orig := color.NoColor
	t.Cleanup(func() { color.NoColor = orig })

	if err := Configure(ColorAlways, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if color.NoColor {
		t.Error("expected color enabled for always")
	}

	if err := Configure(ColorNever, os.Stdout); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !color.NoColor {
		t.Error("expected color disabled for never")
	}

	if err := Configure("rainbow", os.Stdout); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestConfigure_AutoWithoutTerminal(t *testing.T) {
	orig := color.NoColor
	t.Cleanup(func() { color.NoColor = orig })

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatalf("create temp: %v", err)
	}
	defer f.Close()

	if err := Configure(ColorAuto, f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !color.NoColor {
		t.Error("expected color disabled when writing to a file")
	}
}

func TestFraction(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	if got := Fraction(0.9); strings.TrimSpace(got) != "90.0%" {
		t.Errorf("expected 90.0%%, got %q", got)
	}
	if got := StatusIcon("no_samples"); got != "✗" {
		t.Errorf("expected ✗, got %q", got)
	}
}
