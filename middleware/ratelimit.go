package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"ensaj-backend/constants"
	"ensaj-backend/utils"

	"golang.org/x/time/rate"
)

const (
	// Taille minimale de la table avant un nettoyage
	cleanupThreshold = 500
	// Durée d'inactivité après laquelle une IP est oubliée
	maxIdleAge = 10 * time.Minute
	// Écart minimal entre deux nettoyages
	cleanupInterval = time.Minute
)

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter limite le débit par adresse IP
type IPRateLimiter struct {
	ips         map[string]*ipEntry
	mu          sync.Mutex
	r           rate.Limit
	b           int
	lastCleanup time.Time
	now         func() time.Time
}

// NewIPRateLimiter crée un limiteur de rps requêtes par seconde, avec une rafale de burst
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*ipEntry),
		r:   rate.Limit(rps),
		b:   burst,
		now: time.Now,
	}
}

// GetLimiter retourne le limiteur d'une IP et purge les entrées inactives
// au plus une fois par cleanupInterval
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if len(i.ips) > cleanupThreshold && now.Sub(i.lastCleanup) >= cleanupInterval {
		i.cleanup(now)
	}

	e, exists := i.ips[ip]
	if !exists {
		e = &ipEntry{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = e
	}
	e.lastSeen = now

	return e.limiter
}

// cleanup oublie les IP inactives depuis maxIdleAge, mu doit être tenu
func (i *IPRateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-maxIdleAge)
	for k, e := range i.ips {
		if e.lastSeen.Before(cutoff) {
			delete(i.ips, k)
		}
	}
	i.lastCleanup = now
}

// RateLimit renvoie 429 quand une IP dépasse son quota
func RateLimit(limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.GetLimiter(ip).Allow() {
				w.Header().Set("Retry-After", "1")
				utils.RespondError(w, http.StatusTooManyRequests, constants.ErrTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
