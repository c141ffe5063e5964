package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/99minutos/order-tracking/internal/core/domain"
	"github.com/99minutos/order-tracking/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID      map[string]*domain.Credentials
	orders    *stubOrderRepo // cascaded on Delete when set
	createErr error
	findCalls int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.Credentials)}
}

func (r *stubUserRepo) seed(u domain.User, hash string) {
	r.byID[u.ID] = &domain.Credentials{User: u, PasswordHash: hash}
}

func (r *stubUserRepo) Create(_ context.Context, cred *domain.Credentials) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, c := range r.byID {
		if c.User.Email == cred.User.Email {
			return domain.ErrUserExists
		}
	}
	clone := *cred
	r.byID[cred.User.ID] = &clone
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.findCalls++
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := c.User
	return &u, nil
}

func (r *stubUserRepo) FindCredentialsByEmail(_ context.Context, email string) (*domain.Credentials, error) {
	for _, c := range r.byID {
		if c.User.Email == email {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) sorted(keep func(domain.User) bool) []domain.User {
	out := []domain.User{}
	for _, c := range r.byID {
		if keep(c.User) {
			out = append(out, c.User)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *stubUserRepo) List(_ context.Context, page ports.Page) ([]domain.User, int64, error) {
	all := r.sorted(func(domain.User) bool { return true })
	return window(all, page), int64(len(all)), nil
}

func (r *stubUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	return r.sorted(func(u domain.User) bool { return u.Role == role }), nil
}

func (r *stubUserRepo) Search(_ context.Context, q string) ([]domain.User, error) {
	return r.sorted(func(u domain.User) bool {
		return strings.Contains(u.Name, q) || strings.Contains(u.Email, q)
	}), nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, p ports.UserPatch) (*domain.User, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if p.Email != nil {
		for otherID, o := range r.byID {
			if otherID != id && o.User.Email == *p.Email {
				return nil, domain.ErrEmailInUse
			}
		}
		c.User.Email = *p.Email
	}
	if p.Name != nil {
		c.User.Name = *p.Name
	}
	if p.Role != nil {
		c.User.Role = *p.Role
	}
	u := c.User
	return &u, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	if r.orders != nil {
		for oid, o := range r.orders.byID {
			if o.UserID == id {
				delete(r.orders.byID, oid)
			}
		}
	}
	delete(r.byID, id)
	return nil
}

// ---------------------------------------------------------------------------
// In-memory order repository
// ---------------------------------------------------------------------------

type stubOrderRepo struct {
	byID       map[string]*domain.Order
	takenTN    map[string]bool
	createErr  error
	updateErr  error
	storeCalls int
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{byID: make(map[string]*domain.Order), takenTN: make(map[string]bool)}
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = append([]domain.OrderItem(nil), o.Items...)
	c.StatusHistory = append([]domain.OrderStatusEvent(nil), o.StatusHistory...)
	return &c
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.storeCalls++
	if r.createErr != nil {
		return r.createErr
	}
	if r.takenTN[o.TrackingNumber] {
		return domain.ErrTrackingNumberTaken
	}
	r.takenTN[o.TrackingNumber] = true
	r.byID[o.ID] = cloneOrder(o)
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.storeCalls++
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *stubOrderRepo) sorted(keep func(*domain.Order) bool) []domain.Order {
	out := []domain.Order{}
	for _, o := range r.byID {
		if keep(o) {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *stubOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.storeCalls++
	return r.sorted(func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (r *stubOrderRepo) List(_ context.Context, page ports.Page) ([]domain.Order, int64, error) {
	r.storeCalls++
	all := r.sorted(func(*domain.Order) bool { return true })
	return window(all, page), int64(len(all)), nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id string, ch ports.StatusChange) (*domain.Order, error) {
	r.storeCalls++
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o.Status = ch.Status
	o.UpdatedAt = ch.At
	o.StatusHistory = append([]domain.OrderStatusEvent{{Status: ch.Status, Notes: ch.Notes, CreatedAt: ch.At}}, o.StatusHistory...)
	return cloneOrder(o), nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id string) error {
	r.storeCalls++
	if _, ok := r.byID[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubOrderRepo) CountByStatus(_ context.Context) (map[domain.OrderStatus]int64, error) {
	out := make(map[domain.OrderStatus]int64)
	for _, o := range r.byID {
		out[o.Status]++
	}
	return out, nil
}

func window[T any](all []T, page ports.Page) []T {
	if page.Offset >= len(all) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if page.Limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[page.Offset:end]
}

// ---------------------------------------------------------------------------
// Audit log and notifier
// ---------------------------------------------------------------------------

type stubEventLog struct {
	insertErr error
	inserted  []*domain.OrderEvent
}

func (l *stubEventLog) InsertEvent(_ context.Context, e *domain.OrderEvent) error {
	if l.insertErr != nil {
		return l.insertErr
	}
	l.inserted = append(l.inserted, e)
	return nil
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *stubNotifier) Notify(msg domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}
