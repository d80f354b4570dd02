package models

// ContactRequest représente un message du formulaire de contact
type ContactRequest struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// QuestionRequest représente une question envoyée depuis la page Q&A
type QuestionRequest struct {
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
	Email    string `json:"email"`
	Question string `json:"question"`
	Message  string `json:"message"`
}
