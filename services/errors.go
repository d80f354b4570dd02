package services

import (
	"sort"
	"strings"

	"ensaj-backend/utils"
)

// Kind classe les erreurs métier pour leur traduction en statut HTTP
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindConflict
	KindInvalidCredentials
)

// Error est une erreur métier portant un message destiné à l'utilisateur
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case KindNotFound:
		return "ressource introuvable"
	case KindForbidden:
		return "action interdite"
	case KindConflict:
		return "conflit"
	case KindInvalidCredentials:
		return "identifiants invalides"
	}
	return "erreur métier"
}

// Is rapproche une erreur des sentinelles de même nature
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == ""
}

// Sentinelles à utiliser avec errors.Is
var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
)

func notFound(msg string) error  { return &Error{Kind: KindNotFound, Message: msg} }
func forbidden(msg string) error { return &Error{Kind: KindForbidden, Message: msg} }
func conflict(msg string) error  { return &Error{Kind: KindConflict, Message: msg} }

// ValidationError regroupe les erreurs de saisie par champ
type ValidationError struct {
	Fields utils.FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "données invalides (" + strings.Join(parts, "; ") + ")"
}

// FirstMessage retourne le premier message, par ordre alphabétique des champs
func (e *ValidationError) FirstMessage() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(e.Fields[k]) > 0 {
			return e.Fields[k][0]
		}
	}
	return "Données invalides"
}

// invalid construit une ValidationError à partir d'un validateur non vide
func invalid(v *utils.Validator) error {
	if v.Valid() {
		return nil
	}
	return &ValidationError{Fields: v.Errors}
}

// fieldError construit une ValidationError sur un seul champ
func fieldError(field, message string) error {
	v := utils.NewValidator()
	v.Add(field, message)
	return invalid(v)
}
