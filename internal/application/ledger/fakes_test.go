package ledger_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria — implementan los puertos de repositorio sobre mapas.
// Un solo memStore respalda los cuatro repos, igual que un pool comparte la
// misma base; el fakeTxRunner entrega los repos sin semántica de rollback
// (los casos de error se validan antes de mutar).
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	users      map[string]*entity.User
	txs        map[string]*entity.Transaction
	promos     map[string]*entity.Promotion
	events     map[string]*entity.Event
	used       map[string]bool     // userID+"|"+promotionID
	organizers map[string]bool     // eventID+"|"+userID
	guests     map[string][]string // eventID → userIDs en orden de inserción
	links      map[string][]string // txID → promotionIDs
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[string]*entity.User),
		txs:        make(map[string]*entity.Transaction),
		promos:     make(map[string]*entity.Promotion),
		events:     make(map[string]*entity.Event),
		used:       make(map[string]bool),
		organizers: make(map[string]bool),
		guests:     make(map[string][]string),
		links:      make(map[string][]string),
	}
}

func key(a, b string) string { return a + "|" + b }

// ─── UserRepository ───────────────────────────────────────────────────────────

type memUserRepo struct{ s *memStore }

var _ repository.UserRepository = (*memUserRepo)(nil)

func (r *memUserRepo) Create(u *entity.User) error {
	for _, existing := range r.s.users {
		if existing.ExternalID == u.ExternalID {
			return domain.ErrConflict
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(id string) (*entity.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByExternalID(externalID string) (*entity.User, error) {
	for _, u := range r.s.users {
		if u.ExternalID == externalID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetForUpdate(id string) (*entity.User, error) { return r.GetByID(id) }

func (r *memUserRepo) Update(u *entity.User) error {
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *u
	cp.Points = r.s.users[u.ID].Points // el saldo solo cambia vía Credit/Debit
	r.s.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) UpdateLastLogin(id string) error {
	if u, ok := r.s.users[id]; ok {
		now := time.Now()
		u.LastLogin = &now
	}
	return nil
}

func (r *memUserRepo) List(f repository.UserFilter, limit, offset int) ([]*entity.User, int, error) {
	var out []*entity.User
	for _, u := range r.s.users {
		if f.Name != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(f.Name)) &&
			!strings.Contains(strings.ToLower(u.ExternalID), strings.ToLower(f.Name)) {
			continue
		}
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if f.Verified != nil && u.Verified != *f.Verified {
			continue
		}
		if f.Activated != nil && u.Activated() != *f.Activated {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return page(out, limit, offset), len(out), nil
}

func (r *memUserRepo) CreditPoints(id string, delta int) error {
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	// Espejo del CHECK points >= 0: un delta negativo que no alcanza falla.
	if u.Points+delta < 0 {
		return domain.ErrInsufficientPoints
	}
	u.Points += delta
	return nil
}

func (r *memUserRepo) DebitPoints(id string, amount int) (bool, error) {
	u, ok := r.s.users[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if u.Points < amount {
		return false, nil
	}
	u.Points -= amount
	return true, nil
}

// ─── TransactionRepository ────────────────────────────────────────────────────

type memTxRepo struct{ s *memStore }

var _ repository.TransactionRepository = (*memTxRepo)(nil)

func (r *memTxRepo) Create(tx *entity.Transaction) error {
	cp := *tx
	r.s.txs[tx.ID] = &cp
	return nil
}

func (r *memTxRepo) GetByID(id string) (*entity.Transaction, error) {
	t, ok := r.s.txs[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	cp.PromotionIDs = append([]string(nil), r.s.links[id]...)
	return &cp, nil
}

func (r *memTxRepo) GetForUpdate(id string) (*entity.Transaction, error) { return r.GetByID(id) }

func (r *memTxRepo) List(f repository.TransactionFilter, limit, offset int) ([]*entity.Transaction, int, error) {
	var out []*entity.Transaction
	for _, t := range r.s.txs {
		if f.UserID != "" && t.UserID != f.UserID {
			continue
		}
		if f.Type != "" && string(t.Type) != f.Type {
			continue
		}
		if f.Pending != nil && t.Pending() != *f.Pending {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), len(out), nil
}

func (r *memTxRepo) SetSuspicious(id string, suspicious bool) error {
	t, ok := r.s.txs[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Suspicious = suspicious
	return nil
}

func (r *memTxRepo) SetProcessed(id, processorID string) error {
	t, ok := r.s.txs[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.ProcessedBy = &processorID
	return nil
}

func (r *memTxRepo) SumPendingRedemptions(userID string) (int, error) {
	sum := 0
	for _, t := range r.s.txs {
		if t.UserID == userID && t.Pending() {
			sum += -t.Amount
		}
	}
	return sum, nil
}

func (r *memTxRepo) LinkPromotions(txID string, promotionIDs []string) error {
	r.s.links[txID] = append(r.s.links[txID], promotionIDs...)
	return nil
}

// ─── PromotionRepository ──────────────────────────────────────────────────────

type memPromoRepo struct{ s *memStore }

var _ repository.PromotionRepository = (*memPromoRepo)(nil)

func (r *memPromoRepo) Create(p *entity.Promotion) error {
	cp := *p
	r.s.promos[p.ID] = &cp
	return nil
}

func (r *memPromoRepo) GetByID(id string) (*entity.Promotion, error) {
	p, ok := r.s.promos[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memPromoRepo) Update(p *entity.Promotion) error {
	if _, ok := r.s.promos[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.s.promos[p.ID] = &cp
	return nil
}

func (r *memPromoRepo) Delete(id string) error {
	delete(r.s.promos, id)
	return nil
}

func (r *memPromoRepo) List(f repository.PromotionFilter, now time.Time, limit, offset int) ([]*entity.Promotion, int, error) {
	var out []*entity.Promotion
	for _, p := range r.s.promos {
		cp := *p
		out = append(out, &cp)
	}
	return page(out, limit, offset), len(out), nil
}

func (r *memPromoRepo) ListAvailable(userID string, now time.Time, limit, offset int) ([]*entity.Promotion, int, error) {
	var out []*entity.Promotion
	for _, p := range r.s.promos {
		if !p.Active(now) {
			continue
		}
		if p.Type == entity.PromotionOneTime && r.s.used[key(userID, p.ID)] {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return page(out, limit, offset), len(out), nil
}

func (r *memPromoRepo) ListAutomaticActive(now time.Time) ([]*entity.Promotion, error) {
	var out []*entity.Promotion
	for _, p := range r.s.promos {
		if p.Type == entity.PromotionAutomatic && p.Active(now) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memPromoRepo) HasUsed(userID, promotionID string) (bool, error) {
	return r.s.used[key(userID, promotionID)], nil
}

func (r *memPromoRepo) MarkUsed(userID, promotionID string) (bool, error) {
	if r.s.used[key(userID, promotionID)] {
		return false, nil
	}
	r.s.used[key(userID, promotionID)] = true
	return true, nil
}

// ─── EventRepository ──────────────────────────────────────────────────────────

type memEventRepo struct{ s *memStore }

var _ repository.EventRepository = (*memEventRepo)(nil)

func (r *memEventRepo) Create(e *entity.Event) error {
	cp := *e
	r.s.events[e.ID] = &cp
	return nil
}

func (r *memEventRepo) GetByID(id string) (*entity.Event, error) {
	e, ok := r.s.events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *memEventRepo) GetForUpdate(id string) (*entity.Event, error) { return r.GetByID(id) }

func (r *memEventRepo) Update(e *entity.Event) error {
	if _, ok := r.s.events[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	r.s.events[e.ID] = &cp
	return nil
}

func (r *memEventRepo) Delete(id string) error {
	delete(r.s.events, id)
	return nil
}

func (r *memEventRepo) List(f repository.EventFilter, limit, offset int) ([]*entity.Event, int, error) {
	var out []*entity.Event
	for _, e := range r.s.events {
		if f.Published != nil && e.Published != *f.Published {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return page(out, limit, offset), len(out), nil
}

func (r *memEventRepo) ApplyAward(id string, amount int) (bool, error) {
	e, ok := r.s.events[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if e.PointsRemain < amount {
		return false, nil
	}
	e.PointsRemain -= amount
	e.PointsAwarded += amount
	return true, nil
}

func (r *memEventRepo) AddOrganizer(eventID, userID string) error {
	if r.s.organizers[key(eventID, userID)] {
		return domain.ErrConflict
	}
	r.s.organizers[key(eventID, userID)] = true
	return nil
}

func (r *memEventRepo) RemoveOrganizer(eventID, userID string) error {
	delete(r.s.organizers, key(eventID, userID))
	return nil
}

func (r *memEventRepo) IsOrganizer(eventID, userID string) (bool, error) {
	return r.s.organizers[key(eventID, userID)], nil
}

func (r *memEventRepo) ListOrganizers(eventID string) ([]*entity.User, error) {
	var out []*entity.User
	for k := range r.s.organizers {
		if strings.HasPrefix(k, eventID+"|") {
			if u, ok := r.s.users[strings.TrimPrefix(k, eventID+"|")]; ok {
				cp := *u
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (r *memEventRepo) AddGuest(eventID, userID string) error {
	for _, id := range r.s.guests[eventID] {
		if id == userID {
			return domain.ErrConflict
		}
	}
	r.s.guests[eventID] = append(r.s.guests[eventID], userID)
	return nil
}

func (r *memEventRepo) RemoveGuest(eventID, userID string) error {
	ids := r.s.guests[eventID]
	for i, id := range ids {
		if id == userID {
			r.s.guests[eventID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memEventRepo) IsGuest(eventID, userID string) (bool, error) {
	for _, id := range r.s.guests[eventID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memEventRepo) ListGuests(eventID string) ([]*entity.User, error) {
	var out []*entity.User
	for _, id := range r.s.guests[eventID] {
		if u, ok := r.s.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memEventRepo) CountGuests(eventID string) (int, error) {
	return len(r.s.guests[eventID]), nil
}

// ─── TxRunner ─────────────────────────────────────────────────────────────────

type memTxRunner struct{ s *memStore }

func (r *memTxRunner) Run(_ context.Context, fn func(
	users repository.UserRepository,
	txs repository.TransactionRepository,
	promos repository.PromotionRepository,
	events repository.EventRepository,
) error) error {
	return fn(&memUserRepo{r.s}, &memTxRepo{r.s}, &memPromoRepo{r.s}, &memEventRepo{r.s})
}

// hookedTxRunner ejecuta before justo antes de entregar los repos, para
// simular una operación concurrente que comiteó entre la prevalidación y la
// transacción propia.
type hookedTxRunner struct {
	inner  *memTxRunner
	before func()
}

func (r *hookedTxRunner) Run(ctx context.Context, fn func(
	users repository.UserRepository,
	txs repository.TransactionRepository,
	promos repository.PromotionRepository,
	events repository.EventRepository,
) error) error {
	r.before()
	return r.inner.Run(ctx, fn)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
