package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"ensaj-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FCM accepte au plus 500 tokens par requête multicast
const fcmBatchSize = 500

// PushSender envoie une notification à une liste de tokens
type PushSender interface {
	SendToAll(ctx context.Context, tokens []string, title, body string, data map[string]string) (success int, failed int, failedTokens []string)
}

// FCMService gère l'envoi des notifications via Firebase Cloud Messaging
type FCMService struct {
	client *messaging.Client
}

// NewFCMService crée une nouvelle instance de FCMService.
// credentialsJSON est prioritaire sur credentialsFile.
func NewFCMService(ctx context.Context, credentialsFile, credentialsJSON string) (*FCMService, error) {
	var opt option.ClientOption
	if credentialsJSON != "" {
		slog.Info("📦 Credentials Firebase lus depuis FIREBASE_CREDENTIALS_JSON")
		opt = option.WithCredentialsJSON([]byte(credentialsJSON))
	} else {
		slog.Info("📦 Credentials Firebase lus depuis le fichier", "file", credentialsFile)
		opt = option.WithCredentialsFile(credentialsFile)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de l'initialisation de Firebase: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la création du client FCM: %w", err)
	}

	slog.Info("✓ Firebase Cloud Messaging initialisé")
	return &FCMService{client: client}, nil
}

// NewDisabledFCMService retourne un service qui n'envoie rien
func NewDisabledFCMService() *FCMService {
	return &FCMService{}
}

// Enabled indique si le client Firebase est configuré
func (s *FCMService) Enabled() bool {
	return s.client != nil
}

// sendBatch envoie un message data-only à au plus fcmBatchSize tokens
func (s *FCMService) sendBatch(ctx context.Context, tokens []string, data map[string]string) (int, int, []string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	message := &messaging.MulticastMessage{
		Data: data,
		Webpush: &messaging.WebpushConfig{
			Headers: map[string]string{"Urgency": "high"},
		},
		Tokens: tokens,
	}

	response, err := s.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("erreur lors de l'envoi multicast: %w", err)
	}

	failedTokens := make([]string, 0, response.FailureCount)
	for idx, resp := range response.Responses {
		if !resp.Success {
			failedTokens = append(failedTokens, tokens[idx])
			slog.Debug("❌ Échec d'envoi FCM", "error", resp.Error)
		}
	}
	return response.SuccessCount, response.FailureCount, failedTokens, nil
}

// SendToAll envoie une notification à tous les tokens fournis, par lots
func (s *FCMService) SendToAll(ctx context.Context, tokens []string, title, body string, data map[string]string) (success int, failed int, failedTokens []string) {
	if !s.Enabled() || len(tokens) == 0 {
		return 0, 0, nil
	}

	// Uniquement des data messages : le service worker construit l'affichage
	payload := make(map[string]string, len(data)+2)
	for k, v := range data {
		payload[k] = v
	}
	payload["title"] = title
	payload["message"] = body

	for i := 0; i < len(tokens); i += fcmBatchSize {
		end := min(i+fcmBatchSize, len(tokens))
		batch := tokens[i:end]

		ok, ko, ft, err := s.sendBatch(ctx, batch, payload)
		if err != nil {
			slog.Error("❌ Erreur d'envoi FCM", "batch", i/fcmBatchSize+1, "error", err)
			failed += len(batch)
			continue
		}
		success += ok
		failed += ko
		failedTokens = append(failedTokens, ft...)
	}

	slog.Info("📊 Envoi FCM terminé", "success", success, "failed", failed, "total", len(tokens))
	return success, failed, failedTokens
}

// PushNotifier relie les événements du catalogue aux tokens enregistrés
type PushNotifier struct {
	tokens PushTokenStore
	sender PushSender
	loc    *time.Location
}

// NewPushNotifier crée une nouvelle instance de PushNotifier
func NewPushNotifier(tokens PushTokenStore, sender PushSender, loc *time.Location) *PushNotifier {
	if loc == nil {
		loc = time.UTC
	}
	return &PushNotifier{tokens: tokens, sender: sender, loc: loc}
}

// Subscribe enregistre (ou rattache) un token FCM pour un utilisateur
func (n *PushNotifier) Subscribe(ctx context.Context, userID primitive.ObjectID, req models.FCMSubscribeRequest, now time.Time) error {
	if req.FCMToken == "" {
		return fieldError("fcm_token", "le token FCM est requis")
	}
	return n.tokens.Upsert(ctx, &models.FCMToken{
		UserID:    userID,
		Token:     req.FCMToken,
		Device:    req.Device,
		UserAgent: req.UserAgent,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// NotifyNewEvent prévient tous les appareils enregistrés d'un nouvel événement
func (n *PushNotifier) NotifyNewEvent(ctx context.Context, event models.Event) {
	tokens, err := n.tokens.FindAll(ctx)
	if err != nil {
		slog.Error("Erreur récupération tokens FCM", "error", err)
		return
	}
	body := fmt.Sprintf("%s le %s", event.Titre, event.DateEvent.In(n.loc).Format("02/01/2006 à 15h04"))
	n.send(ctx, tokens, "🎉 Nouvel événement", body, map[string]string{
		"action":   "new_event",
		"url":      "/events/" + event.ID.Hex(),
		"event_id": event.ID.Hex(),
	})
}

// NotifyReminder rappelle un événement proche aux utilisateurs indiqués
func (n *PushNotifier) NotifyReminder(ctx context.Context, event models.Event, userIDs []primitive.ObjectID) {
	if len(userIDs) == 0 {
		return
	}
	tokens, err := n.tokens.FindByUserIDs(ctx, userIDs)
	if err != nil {
		slog.Error("Erreur récupération tokens FCM", "error", err)
		return
	}
	body := fmt.Sprintf("%s commence le %s", event.Titre, event.DateEvent.In(n.loc).Format("02/01/2006 à 15h04"))
	n.send(ctx, tokens, "⏰ Rappel", body, map[string]string{
		"action":   "event_reminder",
		"url":      "/events/" + event.ID.Hex(),
		"event_id": event.ID.Hex(),
	})
}

func (n *PushNotifier) send(ctx context.Context, tokens []models.FCMToken, title, body string, data map[string]string) {
	if len(tokens) == 0 {
		slog.Debug("⚠️  Aucun token FCM enregistré")
		return
	}
	values := make([]string, 0, len(tokens))
	for _, t := range tokens {
		values = append(values, t.Token)
	}

	success, failed, failedTokens := n.sender.SendToAll(ctx, values, title, body, data)
	pushMessagesTotal.WithLabelValues("success").Add(float64(success))
	pushMessagesTotal.WithLabelValues("failure").Add(float64(failed))

	// Les tokens refusés par FCM sont périmés
	if len(failedTokens) > 0 {
		if err := n.tokens.DeleteTokens(ctx, failedTokens); err != nil {
			slog.Error("Erreur suppression tokens FCM invalides", "error", err)
		}
	}
}
