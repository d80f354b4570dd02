package handlers

import (
	"net/http"

	"ensaj-backend/middleware"
	"ensaj-backend/services"

	"github.com/gorilla/mux"
)

// Routes regroupe les handlers et ce dont les middlewares d'accès ont besoin
type Routes struct {
	Auth           *AuthHandler
	Admin          *AdminHandler
	Events         *EventHandler
	Participations *ParticipationHandler
	Stats          *StatsHandler
	Contact        *ContactHandler
	FCM            *FCMHandler
	Health         *HealthHandler
	Storage        *StorageHandler // nil quand les photos sont sur Cloudinary

	JWTSecret string
	Revoker   services.TokenRevoker
	Users     services.UserStore
	Limiter   *middleware.IPRateLimiter
}

// Register déclare les routes de l'API sous /api, et /storage pour les photos locales
func (rt *Routes) Register(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	authenticated := middleware.Auth(rt.JWTSecret, rt.Revoker)
	requireAdmin := middleware.RequireAdmin(rt.Users)
	guest := middleware.Guest(rt.JWTSecret)
	limited := middleware.RateLimit(rt.Limiter)

	public := func(h http.HandlerFunc) http.Handler { return limited(h) }
	user := func(h http.HandlerFunc) http.Handler { return authenticated(h) }
	admin := func(h http.HandlerFunc) http.Handler { return authenticated(requireAdmin(h)) }

	// Routes publiques
	api.Handle("/register", limited(guest(http.HandlerFunc(rt.Auth.Register)))).Methods("POST", "OPTIONS")
	api.Handle("/login", limited(guest(http.HandlerFunc(rt.Auth.Login)))).Methods("POST", "OPTIONS")
	api.Handle("/contact", public(rt.Contact.Contact)).Methods("POST", "OPTIONS")
	api.Handle("/qa/send", public(rt.Contact.Question)).Methods("POST", "OPTIONS")
	api.HandleFunc("/health", rt.Health.Health).Methods("GET")
	if rt.Storage != nil {
		router.HandleFunc("/storage/{key}", rt.Storage.Photo).Methods("GET")
	}

	// Compte courant
	api.Handle("/logout", user(rt.Auth.Logout)).Methods("POST", "OPTIONS")
	api.Handle("/user", user(rt.Auth.User)).Methods("GET", "OPTIONS")
	api.Handle("/user/update", user(rt.Auth.UpdateProfile)).Methods("PUT", "OPTIONS")
	api.Handle("/user/change-password", user(rt.Auth.ChangePassword)).Methods("PUT", "OPTIONS")
	api.Handle("/user/participations", user(rt.Participations.UserParticipations)).Methods("GET", "OPTIONS")
	api.Handle("/user/events/upcoming", user(rt.Participations.UpcomingEvents)).Methods("GET", "OPTIONS")
	api.Handle("/user/events/past", user(rt.Participations.PastEvents)).Methods("GET", "OPTIONS")
	api.Handle("/user/stats/monthly", user(rt.Stats.UserMonthly)).Methods("GET", "OPTIONS")
	api.Handle("/fcm/subscribe", user(rt.FCM.Subscribe)).Methods("POST", "OPTIONS")

	// Événements
	api.Handle("/events", user(rt.Events.GetEvents)).Methods("GET", "OPTIONS")
	api.Handle("/events", admin(rt.Events.CreateEvent)).Methods("POST")
	api.Handle("/events/{id}", user(rt.Events.GetEvent)).Methods("GET", "OPTIONS")
	api.Handle("/events/{id}", admin(rt.Events.UpdateEvent)).Methods("PUT", "POST")
	api.Handle("/events/{id}", admin(rt.Events.DeleteEvent)).Methods("DELETE")
	api.Handle("/events-participates", admin(rt.Events.GetEventsWithParticipations)).Methods("GET", "OPTIONS")

	// Participations
	api.Handle("/participations", user(rt.Participations.Create)).Methods("POST", "OPTIONS")
	api.Handle("/participations/user", user(rt.Participations.ForUser)).Methods("GET", "OPTIONS")
	api.Handle("/participations/event/{id}", user(rt.Participations.ForEvent)).Methods("GET", "OPTIONS")
	api.Handle("/participations/{id}", user(rt.Participations.Update)).Methods("PUT", "OPTIONS")
	api.Handle("/participations/{id}", user(rt.Participations.Delete)).Methods("DELETE")

	// Statistiques et exports (admin)
	api.Handle("/stats", admin(rt.Stats.Global)).Methods("GET", "OPTIONS")
	api.Handle("/participation-stats", admin(rt.Stats.Participation)).Methods("GET", "OPTIONS")
	api.Handle("/participation-stats/chart.png", admin(rt.Stats.ParticipationChart)).Methods("GET", "OPTIONS")
	api.Handle("/exports/participations.xlsx", admin(rt.Stats.ExportParticipations)).Methods("GET", "OPTIONS")

	// Administration des comptes
	api.Handle("/users", admin(rt.Admin.GetUsers)).Methods("GET", "OPTIONS")
	api.Handle("/users", admin(rt.Admin.CreateUser)).Methods("POST")
	api.Handle("/users/{id}", admin(rt.Admin.GetUser)).Methods("GET", "OPTIONS")
	api.Handle("/users/{id}", admin(rt.Admin.UpdateUser)).Methods("PUT")
	api.Handle("/users/{id}", admin(rt.Admin.DeleteUser)).Methods("DELETE")

	// Codes d'inscription
	api.Handle("/codes", admin(rt.Admin.GetCodes)).Methods("GET", "OPTIONS")
	api.Handle("/codes", admin(rt.Admin.CreateCode)).Methods("POST")
	api.Handle("/codes/generate", admin(rt.Admin.GenerateCodes)).Methods("POST", "OPTIONS")
	api.Handle("/codes/{id}", admin(rt.Admin.DeleteCode)).Methods("DELETE", "OPTIONS")
}
