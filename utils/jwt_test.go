package utils

import (
	"testing"
	"time"
)

func TestGenerateToken(t *testing.T) {
	token, claims, err := GenerateToken("user123", "test@example.com", "test-secret-key", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("GenerateToken() erreur = %v", err)
	}
	if token == "" {
		t.Error("GenerateToken() ne doit pas retourner une chaîne vide")
	}
	if claims.ID == "" {
		t.Error("GenerateToken() doit attribuer un jti")
	}
}

func TestGenerateToken_JtiUnique(t *testing.T) {
	now := time.Now()
	_, a, _ := GenerateToken("u", "e@e.com", "s", time.Hour, now)
	_, b, _ := GenerateToken("u", "e@e.com", "s", time.Hour, now)
	if a.ID == b.ID {
		t.Error("deux tokens ne doivent pas partager le même jti")
	}
}

func TestValidateToken(t *testing.T) {
	secret := "test-secret-key"
	token, issued, err := GenerateToken("user456", "valid@example.com", secret, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("GenerateToken() erreur = %v", err)
	}

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateToken() erreur = %v", err)
	}
	if claims.UserID != "user456" {
		t.Errorf("UserID = %v, attendu user456", claims.UserID)
	}
	if claims.Email != "valid@example.com" {
		t.Errorf("Email = %v, attendu valid@example.com", claims.Email)
	}
	if claims.ID != issued.ID {
		t.Errorf("jti = %v, attendu %v", claims.ID, issued.ID)
	}
}

func TestValidateTokenExpire(t *testing.T) {
	token, _, _ := GenerateToken("u", "e@e.com", "secret", time.Hour, time.Now().Add(-2*time.Hour))
	if _, err := ValidateToken(token, "secret"); err == nil {
		t.Error("ValidateToken() devrait échouer avec un token expiré")
	}
}

func TestValidateTokenMauvaisSecret(t *testing.T) {
	token, _, _ := GenerateToken("u", "e@e.com", "secret1", time.Hour, time.Now())
	if _, err := ValidateToken(token, "secret2"); err == nil {
		t.Error("ValidateToken() devrait échouer avec un mauvais secret")
	}
}

func TestValidateTokenInvalide(t *testing.T) {
	if _, err := ValidateToken("invalid-token", "secret"); err == nil {
		t.Error("ValidateToken() devrait échouer avec un token invalide")
	}
}
