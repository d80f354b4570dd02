package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ensaj-backend/models"
	"ensaj-backend/utils"
)

// ErrSlackDisabled est retourné quand aucun webhook n'est configuré
var ErrSlackDisabled = errors.New("webhook Slack non configuré")

// SlackService gère l'envoi de messages vers un webhook Slack
type SlackService struct {
	webhookURL string
	client     *http.Client
	now        func() time.Time
}

// SlackMessage représente un message Slack
type SlackMessage struct {
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment représente une pièce jointe Slack
type Attachment struct {
	Color     string  `json:"color,omitempty"`
	Title     string  `json:"title,omitempty"`
	Text      string  `json:"text,omitempty"`
	Fields    []Field `json:"fields,omitempty"`
	Timestamp int64   `json:"ts,omitempty"`
	Footer    string  `json:"footer,omitempty"`
}

// Field représente un champ dans une pièce jointe Slack
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

const slackFooter = "ENSAJ - Backend"

// NewSlackService crée une nouvelle instance de SlackService
func NewSlackService(webhookURL string) *SlackService {
	if webhookURL == "" {
		slog.Warn("⚠️  Slack webhook URL non configuré - notifications Slack désactivées")
	}
	return &SlackService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		now:        time.Now,
	}
}

// Enabled indique si un webhook est configuré
func (s *SlackService) Enabled() bool {
	return s != nil && s.webhookURL != ""
}

func (s *SlackService) post(ctx context.Context, msg SlackMessage) error {
	if !s.Enabled() {
		return ErrSlackDisabled
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("erreur lors de la sérialisation du message Slack: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("erreur lors de la création de la requête: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("erreur lors de l'envoi à Slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack a retourné un code d'erreur: %d", resp.StatusCode)
	}
	return nil
}

// ForwardContact valide et transmet un message du formulaire de contact
func (s *SlackService) ForwardContact(ctx context.Context, req models.ContactRequest) error {
	v := utils.NewValidator()
	v.Check(utils.ValidateEmail(req.Email))
	v.Check(utils.ValidateRequired("message", req.Message))
	if !v.Valid() {
		return invalid(v)
	}

	return s.post(ctx, SlackMessage{
		Attachments: []Attachment{{
			Color:     "#2eb886",
			Title:     "✉️ Nouveau message de contact",
			Text:      req.Message,
			Timestamp: s.now().Unix(),
			Footer:    slackFooter,
			Fields:    []Field{{Title: "Email", Value: req.Email, Short: true}},
		}},
	})
}

// ForwardQuestion valide et transmet une question du formulaire Q&A
func (s *SlackService) ForwardQuestion(ctx context.Context, req models.QuestionRequest) error {
	v := utils.NewValidator()
	v.Check(utils.ValidateRequired("nom", req.Nom))
	v.Check(utils.ValidateRequired("prenom", req.Prenom))
	v.Check(utils.ValidateEmail(req.Email))
	if v.Check(utils.ValidateRequired("question", req.Question)) {
		v.Check(utils.ValidateMaxLength("question", req.Question, 255))
	}
	v.Check(utils.ValidateRequired("message", req.Message))
	if !v.Valid() {
		return invalid(v)
	}

	return s.post(ctx, SlackMessage{
		Attachments: []Attachment{{
			Color:     "#439fe0",
			Title:     "❓ " + req.Question,
			Text:      req.Message,
			Timestamp: s.now().Unix(),
			Footer:    slackFooter,
			Fields: []Field{
				{Title: "Nom", Value: req.Prenom + " " + req.Nom, Short: true},
				{Title: "Email", Value: req.Email, Short: true},
			},
		}},
	})
}

// SendErrorNotification envoie une notification d'erreur sur Slack
func (s *SlackService) SendErrorNotification(ctx context.Context, errorType, method, path, statusCode, message, userAgent string) error {
	msg := SlackMessage{
		Attachments: []Attachment{{
			Color:     "danger",
			Title:     fmt.Sprintf("🚨 Erreur serveur: %s", errorType),
			Text:      message,
			Timestamp: s.now().Unix(),
			Footer:    slackFooter,
			Fields: []Field{
				{Title: "Méthode", Value: method, Short: true},
				{Title: "Status Code", Value: statusCode, Short: true},
				{Title: "Chemin", Value: path, Short: false},
			},
		}},
	}
	if userAgent != "" {
		msg.Attachments[0].Fields = append(msg.Attachments[0].Fields, Field{Title: "User-Agent", Value: userAgent})
	}
	return s.post(ctx, msg)
}

// SendCriticalError envoie une notification pour une erreur critique, sans bloquer l'appelant
func (s *SlackService) SendCriticalError(method, path, statusCode, errorMessage, userAgent string) {
	if !s.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.SendErrorNotification(ctx, "Erreur Critique", method, path, statusCode, errorMessage, userAgent); err != nil {
			slog.Error("❌ Erreur lors de l'envoi de la notification Slack", "error", err)
		}
	}()
}
