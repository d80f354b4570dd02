package testutils

import (
	"context"
	"fmt"
	"sync"
)

// Photos est un PhotoStore en mémoire
type Photos struct {
	mu      sync.Mutex
	n       int
	Files   map[string][]byte
	Deleted []string
	// DeleteErr est renvoyée par Delete quand elle est définie
	DeleteErr error
}

// NewPhotos crée un PhotoStore vide
func NewPhotos() *Photos {
	return &Photos{Files: map[string][]byte{}}
}

func (p *Photos) Save(_ context.Context, data []byte, contentType string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n++
	key := fmt.Sprintf("photo-%d", p.n)
	p.Files[key] = data
	return key, nil
}

func (p *Photos) Delete(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.DeleteErr != nil {
		return p.DeleteErr
	}
	delete(p.Files, key)
	p.Deleted = append(p.Deleted, key)
	return nil
}

func (p *Photos) URL(key string) string {
	if key == "" {
		return ""
	}
	return "https://cdn.test/" + key
}

// Has indique si une photo est stockée sous key
func (p *Photos) Has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.Files[key]
	return ok
}
