package regcode

import (
	"strings"
	"testing"
)

func TestGenerator_Format(t *testing.T) {
	gen := NewGenerator("")

	code, err := gen.Generate()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !strings.HasPrefix(code, DefaultPrefix+"-") {
		t.Errorf("Expected code to start with %q, got %q", DefaultPrefix+"-", code)
	}

	if !gen.Pattern().MatchString(code) {
		t.Errorf("Expected code %q to match generator pattern", code)
	}
}

func TestGenerator_CustomPrefix(t *testing.T) {
	gen := NewGenerator("INTAKE")

	code, err := gen.Generate()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !strings.HasPrefix(code, "INTAKE-") {
		t.Errorf("Expected code to start with INTAKE-, got %q", code)
	}

	if len(code) != len("INTAKE-")+8 {
		t.Errorf("Expected code length %d, got %d (%q)", len("INTAKE-")+8, len(code), code)
	}
}

func TestGenerator_NoAmbiguousCharacters(t *testing.T) {
	gen := NewGenerator("")

	for i := 0; i < 500; i++ {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		suffix := strings.TrimPrefix(code, DefaultPrefix+"-")
		if strings.ContainsAny(suffix, "0O1IL") {
			t.Fatalf("Code %q contains an ambiguous character", code)
		}
	}
}

func TestGenerator_NoCollisionsAcrossMany(t *testing.T) {
	gen := NewGenerator("")
	seen := make(map[string]bool, 10000)

	for i := 0; i < 10000; i++ {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if seen[code] {
			t.Fatalf("Duplicate code generated: %q", code)
		}
		seen[code] = true
	}
}
