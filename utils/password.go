package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash sert à comparer un mot de passe quand l'email est inconnu,
// pour que la durée de réponse ne révèle pas l'existence du compte.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("ensaj-dummy-password"), bcrypt.DefaultCost)

// HashPassword hache un mot de passe avec bcrypt
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword vérifie si un mot de passe correspond à son hash.
// Un hash vide est comparé au hash factice et retourne toujours false.
func CheckPassword(hashedPassword, password string) bool {
	if hashedPassword == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
