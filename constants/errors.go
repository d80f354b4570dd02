package constants

// Messages d'erreur HTTP courants
const (
	ErrMethodNotAllowed       = "Méthode non autorisée"
	ErrServerError            = "Erreur serveur"
	ErrInvalidData            = "Données invalides"
	ErrNotAuthenticated       = "Non authentifié"
	ErrInvalidToken           = "Token invalide"
	ErrRevokedToken           = "Session expirée, veuillez vous reconnecter"
	ErrAlreadyAuthenticated   = "Vous êtes déjà connecté"
	ErrForbidden              = "Non autorisé"
	ErrAdminOnly              = "Accès refusé. Admin uniquement"
	ErrInvalidEventID         = "ID événement invalide"
	ErrEventNotFound          = "Événement non trouvé"
	ErrInvalidUserID          = "ID utilisateur invalide"
	ErrUserNotFound           = "Utilisateur introuvable"
	ErrInvalidCodeID          = "ID de code invalide"
	ErrCodeNotFound           = "Code introuvable"
	ErrInvalidParticipationID = "ID de participation invalide"
	ErrParticipationNotFound  = "Participation introuvable"
	ErrInvalidJSONBody        = "Body JSON invalide"
	ErrTooManyRequests        = "Trop de requêtes, réessayez plus tard"
	ErrPayloadTooLarge        = "Requête trop volumineuse"
	ErrUnknownEventTitle      = "Événement inconnu"
)

// Messages de validation
const (
	MsgInvalidCredentials  = "Les informations d'identification sont incorrectes."
	MsgInvalidCode         = "Le code d'inscription est invalide ou déjà utilisé."
	MsgEmailTaken          = "Cet email est déjà utilisé."
	MsgAlreadyParticipates = "Vous participez déjà à cet événement"
	MsgWrongPassword       = "Mot de passe actuel incorrect."
	MsgUsedCode            = "Impossible de supprimer un code déjà utilisé"
	MsgSelfDelete          = "Vous ne pouvez pas supprimer votre propre compte"
)

// Messages de succès
const (
	MsgLogout               = "Déconnexion réussie"
	MsgPasswordUpdated      = "Mot de passe mis à jour avec succès."
	MsgProfileUpdated       = "Profil mis à jour avec succès."
	MsgEventCreated         = "Événement créé avec succès"
	MsgEventUpdated         = "Événement mis à jour avec succès"
	MsgEventDeleted         = "Événement supprimé avec succès"
	MsgParticipationDeleted = "Participation supprimée avec succès"
	MsgQuestionSent         = "Votre question a bien été envoyée. Merci !"
	MsgSendFailed           = "Une erreur est survenue lors de l'envoi de votre message."
)

// En-têtes HTTP
const (
	HeaderContentType     = "Content-Type"
	HeaderApplicationJSON = "application/json"
	HeaderAcceptLanguage  = "Accept-Language"
)
