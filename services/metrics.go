package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ensaj_registrations_total",
		Help: "Nombre d'inscriptions réussies",
	})
	participationsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ensaj_participations_created_total",
		Help: "Nombre de participations créées",
	})
	codesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ensaj_registration_codes_created_total",
		Help: "Codes d'inscription créés, par origine",
	}, []string{"source"})
	pushMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ensaj_push_messages_total",
		Help: "Notifications push envoyées, par résultat",
	}, []string{"result"})
)

const (
	codeSourceManual    = "manual"
	codeSourceGenerated = "generated"
)
