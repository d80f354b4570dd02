package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// PasswordMinLength est la longueur minimale d'un mot de passe
const PasswordMinLength = 8

// ValidationError représente une erreur de validation sur un champ
type ValidationError struct {
	Field   string
	Message string
}

// Error implémente l'interface error
func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidateEmail valide un email
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "l'email est requis"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "format d'email invalide"}
	}
	return nil
}

// ValidatePassword valide un mot de passe
func ValidatePassword(field, password string) error {
	if password == "" {
		return ValidationError{Field: field, Message: "le mot de passe est requis"}
	}
	if utf8.RuneCountInString(password) < PasswordMinLength {
		return ValidationError{Field: field, Message: fmt.Sprintf("le mot de passe doit contenir au moins %d caractères", PasswordMinLength)}
	}
	return nil
}

// ValidateRequired valide qu'un champ n'est pas vide
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: fmt.Sprintf("le champ %s est requis", field)}
	}
	return nil
}

// ValidateMaxLength valide la longueur maximale d'un champ (en caractères)
func ValidateMaxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return ValidationError{Field: field, Message: fmt.Sprintf("le champ %s ne doit pas dépasser %d caractères", field, max)}
	}
	return nil
}

// ValidateOneOf valide qu'un champ prend une des valeurs autorisées
func ValidateOneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return ValidationError{Field: field, Message: fmt.Sprintf("le champ %s doit valoir %s", field, strings.Join(allowed, " ou "))}
}

// FieldErrors associe à chaque champ ses messages d'erreur
type FieldErrors map[string][]string

// Validator accumule les erreurs de plusieurs champs
type Validator struct {
	Errors FieldErrors
}

// NewValidator crée un validateur vide
func NewValidator() *Validator {
	return &Validator{Errors: FieldErrors{}}
}

// Add ajoute un message d'erreur sur un champ
func (v *Validator) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

// Check ajoute err si c'est une ValidationError; retourne true si err est nil
func (v *Validator) Check(err error) bool {
	if err == nil {
		return true
	}
	if ve, ok := err.(ValidationError); ok {
		v.Add(ve.Field, ve.Message)
	} else {
		v.Add("general", err.Error())
	}
	return false
}

// Has indique si un champ a déjà une erreur
func (v *Validator) Has(field string) bool {
	return len(v.Errors[field]) > 0
}

// Valid indique qu'aucune erreur n'a été relevée
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}
