// Package testutils fournit des implémentations en mémoire des stores
// consommés par les services, pour les tests sans base Mongo.
package testutils

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ensaj-backend/database"
	"ensaj-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store regroupe toutes les collections en mémoire; les jointures
// (créateur, événement, utilisateur) sont résolues entre elles.
type Store struct {
	mu             sync.Mutex
	users          map[primitive.ObjectID]models.User
	codes          map[primitive.ObjectID]models.RegistrationCode
	events         map[primitive.ObjectID]models.Event
	participations map[primitive.ObjectID]models.Participation
	tokens         map[string]models.FCMToken
	revoked        map[string]time.Time

	// Err, si non nil, est retournée par toutes les opérations
	Err error
}

// NewStore crée un store vide
func NewStore() *Store {
	return &Store{
		users:          map[primitive.ObjectID]models.User{},
		codes:          map[primitive.ObjectID]models.RegistrationCode{},
		events:         map[primitive.ObjectID]models.Event{},
		participations: map[primitive.ObjectID]models.Participation{},
		tokens:         map[string]models.FCMToken{},
		revoked:        map[string]time.Time{},
	}
}

// Users retourne la vue UserStore
func (s *Store) Users() *Users { return &Users{s} }

// Codes retourne la vue CodeStore
func (s *Store) Codes() *Codes { return &Codes{s} }

// Events retourne la vue EventStore
func (s *Store) Events() *Events { return &Events{s} }

// Participations retourne la vue ParticipationStore
func (s *Store) Participations() *Participations { return &Participations{s} }

// PushTokens retourne la vue PushTokenStore
func (s *Store) PushTokens() *PushTokens { return &PushTokens{s} }

// Revoker retourne la vue TokenRevoker
func (s *Store) Revoker() *Revoker { return &Revoker{s} }

func (s *Store) summary(id *primitive.ObjectID) *models.UserSummary {
	if id == nil {
		return nil
	}
	u, ok := s.users[*id]
	if !ok {
		return nil
	}
	return u.Summary()
}

// Users implémente services.UserStore
type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	user.Email = strings.ToLower(user.Email)
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return database.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *Users) EmailExists(_ context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	email = strings.ToLower(email)
	for _, u := range r.s.users {
		if u.Email == email && u.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (r *Users) FindAll(_ context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Users) UpdateFields(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	if email, ok := fields["email"].(string); ok {
		for _, other := range r.s.users {
			if other.Email == email && other.ID != id {
				return database.ErrDuplicate
			}
		}
	}
	for k, v := range fields {
		switch k {
		case "nom":
			u.Nom = v.(string)
		case "prenom":
			u.Prenom = v.(string)
		case "email":
			u.Email = v.(string)
		case "password":
			u.Password = v.(string)
		case "role":
			u.Role = v.(string)
		case "updated_at":
			u.UpdatedAt = v.(time.Time)
		}
	}
	r.s.users[id] = u
	return nil
}

func (r *Users) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	delete(r.s.users, id)
	return nil
}

// Codes implémente services.CodeStore
type Codes struct{ s *Store }

func (r *Codes) Create(_ context.Context, code *models.RegistrationCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, c := range r.s.codes {
		if c.Code == code.Code {
			return database.ErrDuplicate
		}
	}
	if code.ID.IsZero() {
		code.ID = primitive.NewObjectID()
	}
	r.s.codes[code.ID] = *code
	return nil
}

func (r *Codes) FindByCode(_ context.Context, value string) (*models.RegistrationCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, c := range r.s.codes {
		if c.Code == value {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *Codes) FindByID(_ context.Context, id primitive.ObjectID) (*models.RegistrationCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	c, ok := r.s.codes[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *Codes) FindAll(_ context.Context) ([]models.RegistrationCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := make([]models.RegistrationCode, 0, len(r.s.codes))
	for _, c := range r.s.codes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Codes) Consume(_ context.Context, value string, userID primitive.ObjectID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	for id, c := range r.s.codes {
		if c.Code == value && !c.IsUsed {
			c.IsUsed = true
			c.UsedBy = &userID
			c.UsedAt = &at
			r.s.codes[id] = c
			return true, nil
		}
	}
	return false, nil
}

func (r *Codes) Release(_ context.Context, value string, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for id, c := range r.s.codes {
		if c.Code == value && c.UsedBy != nil && *c.UsedBy == userID {
			c.IsUsed = false
			c.UsedBy = nil
			c.UsedAt = nil
			r.s.codes[id] = c
		}
	}
	return nil
}

func (r *Codes) DeleteUnused(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	c, ok := r.s.codes[id]
	if !ok || c.IsUsed {
		return false, nil
	}
	delete(r.s.codes, id)
	return true, nil
}

// Events implémente services.EventStore
type Events struct{ s *Store }

func (r *Events) Create(_ context.Context, event *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	r.s.events[event.ID] = *event
	return nil
}

func (r *Events) sorted() []models.Event {
	out := make([]models.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateEvent.After(out[j].DateEvent) })
	return out
}

func (r *Events) FindAll(_ context.Context) ([]models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	return r.sorted(), nil
}

func (r *Events) FindAllWithCreator(_ context.Context) ([]models.EventWithCreator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	events := r.sorted()
	out := make([]models.EventWithCreator, 0, len(events))
	for _, e := range events {
		out = append(out, models.EventWithCreator{Event: e, Creator: r.s.summary(e.CreatedBy)})
	}
	return out, nil
}

func (r *Events) FindByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	e, ok := r.s.events[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *Events) FindByIDWithCreator(_ context.Context, id primitive.ObjectID) (*models.EventWithCreator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	e, ok := r.s.events[id]
	if !ok {
		return nil, nil
	}
	return &models.EventWithCreator{Event: e, Creator: r.s.summary(e.CreatedBy)}, nil
}

func (r *Events) Update(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	e, ok := r.s.events[id]
	if !ok {
		return nil
	}
	for k, v := range fields {
		switch k {
		case "titre":
			e.Titre = v.(string)
		case "description":
			e.Description = v.(*string)
		case "date_event":
			e.DateEvent = v.(time.Time)
		case "photo":
			e.Photo = v.(string)
		case "reminder_sent":
			e.ReminderSent = v.(bool)
		case "updated_at":
			e.UpdatedAt = v.(time.Time)
		}
	}
	r.s.events[id] = e
	return nil
}

func (r *Events) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	delete(r.s.events, id)
	return nil
}

func (r *Events) UnsetCreator(_ context.Context, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for id, e := range r.s.events {
		if e.CreatedBy != nil && *e.CreatedBy == userID {
			e.CreatedBy = nil
			r.s.events[id] = e
		}
	}
	return nil
}

func (r *Events) FindToRemind(_ context.Context, from, to time.Time) ([]models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []models.Event
	for _, e := range r.s.events {
		if !e.ReminderSent && !e.DateEvent.Before(from) && e.DateEvent.Before(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateEvent.Before(out[j].DateEvent) })
	return out, nil
}

func (r *Events) MarkReminderSent(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if e, ok := r.s.events[id]; ok {
		e.ReminderSent = true
		r.s.events[id] = e
	}
	return nil
}

// Participations implémente services.ParticipationStore
type Participations struct{ s *Store }

func (r *Participations) Create(_ context.Context, p *models.Participation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, other := range r.s.participations {
		if other.UserID == p.UserID && other.EventID == p.EventID {
			return database.ErrDuplicate
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.s.participations[p.ID] = *p
	return nil
}

func (r *Participations) FindByID(_ context.Context, id primitive.ObjectID) (*models.Participation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	p, ok := r.s.participations[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *Participations) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.Participation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	p, ok := r.s.participations[id]
	if !ok {
		return nil, nil
	}
	for k, v := range fields {
		switch k {
		case "role":
			p.Role = v.(*string)
		case "statut_presence":
			p.StatutPresence = v.(string)
		case "updated_at":
			p.UpdatedAt = v.(time.Time)
		}
	}
	r.s.participations[id] = p
	return &p, nil
}

func (r *Participations) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	delete(r.s.participations, id)
	return nil
}

func (r *Participations) deleteWhere(match func(models.Participation) bool) int64 {
	var n int64
	for id, p := range r.s.participations {
		if match(p) {
			delete(r.s.participations, id)
			n++
		}
	}
	return n
}

func (r *Participations) DeleteByEvent(_ context.Context, eventID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	return r.deleteWhere(func(p models.Participation) bool { return p.EventID == eventID }), nil
}

func (r *Participations) DeleteByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	return r.deleteWhere(func(p models.Participation) bool { return p.UserID == userID }), nil
}

func (r *Participations) FindAll(_ context.Context) ([]models.Participation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := make([]models.Participation, 0, len(r.s.participations))
	for _, p := range r.s.participations {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *Participations) FindByUserWithEvent(_ context.Context, userID primitive.ObjectID) ([]models.ParticipationWithEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []models.ParticipationWithEvent{}
	for _, p := range r.s.participations {
		if p.UserID != userID {
			continue
		}
		row := models.ParticipationWithEvent{Participation: p}
		if e, ok := r.s.events[p.EventID]; ok {
			row.Event = &e
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Participations) FindByEventWithUser(_ context.Context, eventID primitive.ObjectID) ([]models.ParticipationWithUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []models.ParticipationWithUser{}
	for _, p := range r.s.participations {
		if p.EventID != eventID {
			continue
		}
		userID := p.UserID
		out = append(out, models.ParticipationWithUser{Participation: p, User: r.s.summary(&userID)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *Participations) FindPresentUserIDs(_ context.Context, eventID primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []primitive.ObjectID
	for _, p := range r.s.participations {
		if p.EventID == eventID && p.StatutPresence == models.PresencePresent {
			out = append(out, p.UserID)
		}
	}
	return out, nil
}

func (r *Participations) MonthlyPresenceByUser(_ context.Context, userID primitive.ObjectID, since *time.Time, loc *time.Location) ([]models.MonthlyPresenceRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	type key struct{ year, month int }
	rows := map[key]*models.MonthlyPresenceRow{}
	for _, p := range r.s.participations {
		e, ok := r.s.events[p.EventID]
		if p.UserID != userID || !ok {
			continue
		}
		if since != nil && e.DateEvent.Before(*since) {
			continue
		}
		d := e.DateEvent.In(loc)
		k := key{d.Year(), int(d.Month())}
		row, ok := rows[k]
		if !ok {
			row = &models.MonthlyPresenceRow{Year: k.year, Month: k.month}
			rows[k] = row
		}
		if p.StatutPresence == models.PresencePresent {
			row.Present++
		} else {
			row.Absent++
		}
	}
	out := make([]models.MonthlyPresenceRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

// PushTokens implémente services.PushTokenStore
type PushTokens struct{ s *Store }

func (r *PushTokens) Upsert(_ context.Context, token *models.FCMToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if existing, ok := r.s.tokens[token.Token]; ok {
		token.ID = existing.ID
		token.CreatedAt = existing.CreatedAt
	} else if token.ID.IsZero() {
		token.ID = primitive.NewObjectID()
	}
	r.s.tokens[token.Token] = *token
	return nil
}

func (r *PushTokens) FindAll(_ context.Context) ([]models.FCMToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := make([]models.FCMToken, 0, len(r.s.tokens))
	for _, t := range r.s.tokens {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}

func (r *PushTokens) FindByUserIDs(_ context.Context, userIDs []primitive.ObjectID) ([]models.FCMToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	wanted := make(map[primitive.ObjectID]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	var out []models.FCMToken
	for _, t := range r.s.tokens {
		if wanted[t.UserID] {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}

func (r *PushTokens) DeleteTokens(_ context.Context, tokens []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, t := range tokens {
		delete(r.s.tokens, t)
	}
	return nil
}

func (r *PushTokens) DeleteByUserID(_ context.Context, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for k, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, k)
		}
	}
	return nil
}

// Revoker implémente services.TokenRevoker
type Revoker struct{ s *Store }

func (r *Revoker) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.revoked[jti] = expiresAt
	return nil
}

func (r *Revoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	_, ok := r.s.revoked[jti]
	return ok, nil
}
