package database

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestPing_clientNil(t *testing.T) {
	oldClient := Client
	Client = nil
	defer func() { Client = oldClient }()

	err := Ping(context.Background())
	if err == nil {
		t.Fatal("Ping() devrait échouer quand Client est nil")
	}
	if err.Error() != "client MongoDB non initialisé" {
		t.Errorf("Ping() erreur = %v", err)
	}
}

func TestWrapWriteError(t *testing.T) {
	if wrapWriteError(nil, "l'insertion") != nil {
		t.Error("nil doit rester nil")
	}

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	if err := wrapWriteError(dup, "l'insertion"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("violation d'unicité non détectée: %v", err)
	}

	other := errors.New("réseau coupé")
	err := wrapWriteError(other, "l'insertion")
	if errors.Is(err, ErrDuplicate) || !errors.Is(err, other) {
		t.Errorf("erreur mal enveloppée: %v", err)
	}
}

func TestMigrationsEmbarquees(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("lecture des migrations: %v", err)
	}
	var up, down int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.json"):
			up++
		case strings.HasSuffix(e.Name(), ".down.json"):
			down++
		}
	}
	if up == 0 || up != down {
		t.Errorf("migrations up=%d down=%d, attendu autant de up que de down", up, down)
	}
}
