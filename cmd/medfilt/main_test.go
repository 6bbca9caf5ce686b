package main

import "testing"

func TestParseCSVFloatSlice(t *testing.T) {
	got, err := parseCSVFloatSlice("0.2, 0.8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != 0.2 || got[1] != 0.8 {
		t.Errorf("parseCSVFloatSlice = %v, want [0.2 0.8]", got)
	}
}

func TestParseCSVFloatSliceEmpty(t *testing.T) {
	got, err := parseCSVFloatSlice("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestParseCSVFloatSliceInvalid(t *testing.T) {
	if _, err := parseCSVFloatSlice("1.5,abc"); err == nil {
		t.Error("expected error for non-numeric element")
	}
}
