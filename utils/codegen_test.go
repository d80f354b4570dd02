package utils

import (
	"regexp"
	"testing"
)

func TestRandomCode(t *testing.T) {
	format := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := RandomCode(RegistrationCodeLength)
		if err != nil {
			t.Fatalf("RandomCode() erreur = %v", err)
		}
		if !format.MatchString(code) {
			t.Fatalf("RandomCode() = %q, format invalide", code)
		}
		seen[code] = true
	}
	if len(seen) < 190 {
		t.Errorf("trop de collisions: %d codes distincts sur 200", len(seen))
	}
}
