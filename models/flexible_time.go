package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Location est le fuseau utilisé pour interpréter les dates sans fuseau.
// Il est remplacé au démarrage par celui de la configuration.
var Location = mustLoadLocation("Africa/Casablanca")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var naturalParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseFlexibleTime interprète une date saisie par un formulaire.
// Les formats ISO sont essayés d'abord (heure locale si aucun fuseau),
// puis une expression naturelle ("tomorrow 18:00", "next friday") relative à base.
func ParseFlexibleTime(s string, base time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date vide")
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, Location); err == nil {
			return t, nil
		}
	}

	r, err := naturalParser.Parse(s, base.In(Location))
	if err != nil || r == nil {
		return time.Time{}, fmt.Errorf("format de date invalide: %s", s)
	}
	return r.Time, nil
}
