package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ensaj-backend/config"
	"ensaj-backend/database"
	"ensaj-backend/handlers"
	"ensaj-backend/i18n"
	"ensaj-backend/middleware"
	"ensaj-backend/models"
	"ensaj-backend/services"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Charger la configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("❌ Erreur lors du chargement de la configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(config.NewLogger(cfg.LogLevel))

	if err := run(cfg); err != nil {
		slog.Error("❌ Arrêt sur erreur", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()
	models.Location = loc

	// Connexion à MongoDB et migrations
	if err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB); err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(database.Client, cfg.MongoDB); err != nil {
		return err
	}

	// Repositories
	userRepo := database.NewUserRepository(database.DB)
	codeRepo := database.NewRegistrationCodeRepository(database.DB)
	eventRepo := database.NewEventRepository(database.DB)
	participationRepo := database.NewParticipationRepository(database.DB)
	fcmTokenRepo := database.NewFCMTokenRepository(database.DB)

	revoker, closeRevoker := newRevoker(ctx, cfg)
	defer closeRevoker()

	photos, storageHandler, err := newPhotoStore(cfg)
	if err != nil {
		return err
	}

	// Firebase Cloud Messaging (optionnel)
	fcmService := services.NewDisabledFCMService()
	if cfg.UsesFCM() {
		fcmService, err = services.NewFCMService(ctx, cfg.FirebaseCredentialsFile, cfg.FirebaseCredentialsJSON)
		if err != nil {
			slog.Warn("⚠️  Erreur d'initialisation Firebase, le serveur démarre SANS notifications push", "error", err)
			fcmService = services.NewDisabledFCMService()
		}
	}
	pushNotifier := services.NewPushNotifier(fcmTokenRepo, fcmService, loc)

	var eventNotifier services.EventNotifier
	if fcmService.Enabled() {
		eventNotifier = pushNotifier

		reminders := services.NewReminderCron(eventRepo, participationRepo, pushNotifier, loc)
		if err := reminders.Start(cfg.ReminderSchedule); err != nil {
			return err
		}
		defer reminders.Stop()
	}

	// Slack: formulaires de contact et alertes 5xx
	slack := services.NewSlackService(cfg.SlackWebhookURL)
	var alerter middleware.Alerter
	if slack.Enabled() {
		alerter = slack
	} else {
		slog.Warn("⚠️  SLACK_WEBHOOK_URL absent: contact et alertes désactivés")
	}

	// Services
	identity := services.NewIdentityService(userRepo, codeRepo, revoker, cfg.JWTSecret, cfg.JWTTTL)
	users := services.NewUserService(userRepo, eventRepo, participationRepo, fcmTokenRepo)
	codes := services.NewCodeService(codeRepo)
	events := services.NewEventService(eventRepo, participationRepo, photos, eventNotifier, cfg.PhotoMaxBytes)
	participations := services.NewParticipationService(participationRepo, eventRepo, photos)
	stats := services.NewStatsService(eventRepo, participationRepo, photos)
	translator := i18n.NewTranslator(cfg.DefaultLocale)

	clock := handlers.NewClock(loc)
	routes := &handlers.Routes{
		Auth:           handlers.NewAuthHandler(identity, clock),
		Admin:          handlers.NewAdminHandler(users, codes, clock),
		Events:         handlers.NewEventHandler(events, cfg.PhotoMaxBytes, clock),
		Participations: handlers.NewParticipationHandler(participations, clock),
		Stats:          handlers.NewStatsHandler(stats, translator, clock),
		Contact:        handlers.NewContactHandler(slack),
		FCM:            handlers.NewFCMHandler(pushNotifier, clock),
		Health:         handlers.NewHealthHandler(cfg.Environment, database.Ping),
		Storage:        storageHandler,
		JWTSecret:      cfg.JWTSecret,
		Revoker:        revoker,
		Users:          userRepo,
		Limiter:        middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	// Créer le routeur
	router := mux.NewRouter()
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.Logging(alerter))
	router.Use(middleware.Metrics)
	routes.Register(router)
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	logRoutes(router)

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("🚀 Serveur démarré", "addr", "http://"+addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Attendre le signal d'arrêt
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("🛑 Arrêt du serveur...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("arrêt du serveur: %w", err)
	}
	slog.Info("✓ Serveur arrêté proprement")
	return nil
}

// newRevoker utilise Redis quand REDIS_URL est configuré, sinon la collection Mongo revoked_tokens
func newRevoker(ctx context.Context, cfg *config.Config) (services.TokenRevoker, func()) {
	mongoRevoker := database.NewRevokedTokenRepository(database.DB)
	if cfg.RedisURL == "" {
		return mongoRevoker, func() {}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Warn("⚠️  REDIS_URL invalide, révocation stockée dans MongoDB", "error", err)
		return mongoRevoker, func() {}
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("⚠️  Redis injoignable, révocation stockée dans MongoDB", "error", err)
		_ = client.Close()
		return mongoRevoker, func() {}
	}

	slog.Info("✓ Révocation des tokens via Redis")
	return services.NewRedisTokenRevoker(client), func() { _ = client.Close() }
}

// newPhotoStore choisit Cloudinary si configuré, sinon le disque local servi sous /storage
func newPhotoStore(cfg *config.Config) (services.PhotoStore, *handlers.StorageHandler, error) {
	if cfg.UsesCloudinary() {
		slog.Info("✓ Photos stockées sur Cloudinary", "cloud", cfg.CloudinaryCloudName)
		return services.NewCloudinaryPhotoStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder), nil, nil
	}

	local, err := services.NewLocalPhotoStore(cfg.StorageDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("✓ Photos stockées localement", "dir", cfg.StorageDir)
	return local, handlers.NewStorageHandler(local), nil
}

// logRoutes liste les routes enregistrées au niveau Debug
func logRoutes(router *mux.Router) {
	_ = router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		tpl, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, _ := route.GetMethods()
		slog.Debug("route", "methods", strings.Join(methods, ","), "path", tpl)
		return nil
	})
}
