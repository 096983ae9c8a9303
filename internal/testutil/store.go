package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/petmart/pkg/global"
	"julianmorley.ca/con-plar/petmart/pkg/models"
)

// MemoryStore is an in-memory stand-in for the Mongo store. WithTransaction
// serializes transactions and restores a snapshot when fn fails.
//
// The Fail* fields inject errors into the matching operation.
type MemoryStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	products     map[string]models.Product
	orders       []models.Order
	reservations map[int64]models.Reservation
	carts        map[string]models.PersistentCart
	sequences    map[string]int64

	FailSetProductStatus     error
	FailUpdateReservation    error
	FailUpsertPersistentCart error
	FailFindPersistentCart   error
	// ConflictingOrderInserts makes the next n InsertOrder calls fail with Conflict
	ConflictingOrderInserts int

	Transactions int
	Rollbacks    int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:     map[string]models.Product{},
		reservations: map[int64]models.Reservation{},
		carts:        map[string]models.PersistentCart{},
		sequences:    map[string]int64{},
	}
}

type memorySnapshot struct {
	products     map[string]models.Product
	orders       []models.Order
	reservations map[int64]models.Reservation
	carts        map[string]models.PersistentCart
	sequences    map[string]int64
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *MemoryStore) snapshot() memorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memorySnapshot{
		products:     copyMap(s.products),
		orders:       append([]models.Order(nil), s.orders...),
		reservations: copyMap(s.reservations),
		carts:        copyMap(s.carts),
		sequences:    copyMap(s.sequences),
	}
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.orders = snap.orders
	s.reservations = snap.reservations
	s.carts = snap.carts
	s.sequences = snap.sequences
}

func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	s.mu.Lock()
	s.Transactions++
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.restore(snap)
		s.mu.Lock()
		s.Rollbacks++
		s.mu.Unlock()
		return err
	}
	return nil
}

// Products

// PutProduct seeds a product as is
func (s *MemoryStore) PutProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.SetCreateDate()
	s.products[p.Code] = p
}

func (s *MemoryStore) GetProduct(_ context.Context, code string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[code]
	if !ok {
		return nil, global.NotFound("product %s not found", code)
	}
	return &p, nil
}

func (s *MemoryStore) ListProducts(_ context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	q.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()

	term := strings.ToLower(q.SearchTerm)
	var matched []models.Product
	for _, p := range s.products {
		if term == "" || strings.Contains(strings.ToLower(p.Name), term) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreateDate.Equal(matched[j].CreateDate) {
			return matched[i].CreateDate.After(matched[j].CreateDate)
		}
		return matched[i].Code < matched[j].Code
	})

	total := int64(len(matched))
	start := q.Page * q.Size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Size
	if end > len(matched) {
		end = len(matched)
	}
	return models.NewProductPage(matched[start:end], q, total), nil
}

func (s *MemoryStore) UpsertProduct(_ context.Context, product *models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.products[product.Code]; ok {
		product.CreateDate = existing.CreateDate
	}
	product.SetCreateDate()
	s.products[product.Code] = *product
	out := *product
	return &out, nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		for _, d := range o.Details {
			if d.ProductCode == code {
				return global.Conflict("product %s is associated with existing orders", code)
			}
		}
	}
	if _, ok := s.products[code]; !ok {
		return global.NotFound("product %s not found", code)
	}
	delete(s.products, code)
	return nil
}

func (s *MemoryStore) SetProductStatus(_ context.Context, code, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSetProductStatus != nil {
		return s.FailSetProductStatus
	}
	p, ok := s.products[code]
	if !ok {
		return global.NotFound("product %s not found", code)
	}
	p.Status = status
	s.products[code] = p
	return nil
}

// Orders

func (s *MemoryStore) MaxOrderNum(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maxNum := 0
	for _, o := range s.orders {
		if o.OrderNum > maxNum {
			maxNum = o.OrderNum
		}
	}
	return maxNum, nil
}

func (s *MemoryStore) InsertOrder(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ConflictingOrderInserts > 0 {
		s.ConflictingOrderInserts--
		return global.Conflict("order %d already exists", order.OrderNum)
	}
	for _, o := range s.orders {
		if o.OrderNum == order.OrderNum {
			return global.Conflict("order %d already exists", order.OrderNum)
		}
	}
	if order.ID.IsZero() {
		order.ID = bson.NewObjectID()
	}
	s.orders = append(s.orders, *order)
	return nil
}

func (s *MemoryStore) GetOrderByNum(_ context.Context, orderNum int) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.OrderNum == orderNum {
			return &o, nil
		}
	}
	return nil, global.NotFound("order %d not found", orderNum)
}

// Orders returns a copy of every stored order
func (s *MemoryStore) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Order(nil), s.orders...)
}

// Reservations

func (s *MemoryStore) NextReservationID(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences["reservation_id"]++
	return s.sequences["reservation_id"], nil
}

// PutReservation seeds a reservation as is
func (s *MemoryStore) PutReservation(r models.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[r.ID] = r
}

func (s *MemoryStore) InsertReservation(_ context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[r.ID]; ok {
		return global.Conflict("reservation %d already exists", r.ID)
	}
	s.reservations[r.ID] = *r
	return nil
}

func (s *MemoryStore) GetReservation(_ context.Context, id int64) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, global.NotFound("reservation %d not found", id)
	}
	return &r, nil
}

func (s *MemoryStore) UpdateReservationStatus(_ context.Context, id int64, status models.ReservationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpdateReservation != nil {
		return s.FailUpdateReservation
	}
	r, ok := s.reservations[id]
	if !ok {
		return global.NotFound("reservation %d not found", id)
	}
	r.Status = status
	s.reservations[id] = r
	return nil
}

func (s *MemoryStore) DeleteReservation(_ context.Context, id int64, status models.ReservationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reservations[id]; !ok || r.Status != status {
		return global.NotFound("reservation %d not found with status %s", id, status)
	}
	delete(s.reservations, id)
	return nil
}

func matchesReservation(r models.Reservation, f models.ReservationFilter) bool {
	if f.CustomerEmail != "" && r.CustomerEmail != f.CustomerEmail {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, st := range f.Statuses {
		if r.Status == st {
			return true
		}
	}
	return false
}

func (s *MemoryStore) ListReservations(_ context.Context, f models.ReservationFilter) ([]models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Reservation{}
	for _, r := range s.reservations {
		if matchesReservation(r, f) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReservationDate.Equal(out[j].ReservationDate) {
			return out[i].ReservationDate.After(out[j].ReservationDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) DeleteReservations(_ context.Context, f models.ReservationFilter) (int64, error) {
	if f.CustomerEmail == "" && len(f.Statuses) == 0 {
		return 0, global.InvalidArgument("refusing to delete reservations without a filter")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, r := range s.reservations {
		if matchesReservation(r, f) {
			delete(s.reservations, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) ReservationSummary(_ context.Context) (*models.ReservationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byStatus := map[models.ReservationStatus]*models.ReservationStatusCount{}
	for _, r := range s.reservations {
		b, ok := byStatus[r.Status]
		if !ok {
			b = &models.ReservationStatusCount{Status: r.Status}
			byStatus[r.Status] = b
		}
		b.Count++
		if r.ReservationDate.After(b.Latest) {
			b.Latest = r.ReservationDate
		}
	}
	buckets := make([]models.ReservationStatusCount, 0, len(byStatus))
	for _, b := range byStatus {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Status < buckets[j].Status })
	return models.NewReservationSummary(buckets), nil
}

// Persistent carts

func (s *MemoryStore) FindPersistentCart(_ context.Context, userID string) (*models.PersistentCart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailFindPersistentCart != nil {
		return nil, s.FailFindPersistentCart
	}
	c, ok := s.carts[userID]
	if !ok {
		return nil, global.NotFound("persistent cart for %s not found", userID)
	}
	return &c, nil
}

func (s *MemoryStore) UpsertPersistentCart(_ context.Context, userID, cartData string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpsertPersistentCart != nil {
		return s.FailUpsertPersistentCart
	}
	c := s.carts[userID]
	c.UserID = userID
	c.CartData = cartData
	c.LastUpdated = time.Now().UTC()
	s.carts[userID] = c
	return nil
}

// PutPersistentCart seeds a durable cart row as is
func (s *MemoryStore) PutPersistentCart(c models.PersistentCart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.UserID] = c
}

func (s *MemoryStore) DeletePersistentCart(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

func (s *MemoryStore) PurgePersistentCarts(_ context.Context, before time.Time) (int64, error) {
	if before.IsZero() {
		return 0, global.InvalidArgument("purge cutoff is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, c := range s.carts {
		if c.LastUpdated.Before(before) {
			delete(s.carts, id)
			removed++
		}
	}
	return removed, nil
}
