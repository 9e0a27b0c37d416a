package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	dispatchRepo "chefdispatch/database/repository/dispatch"
	"chefdispatch/models"
)

// fakeChefRepo serves a fixed roster.
type fakeChefRepo struct {
	chefs map[string]models.ChefInfo
}

func newFakeChefRepo(chefs ...models.ChefInfo) *fakeChefRepo {
	m := make(map[string]models.ChefInfo, len(chefs))
	for _, c := range chefs {
		m[c.ID] = c
	}
	return &fakeChefRepo{chefs: m}
}

func (r *fakeChefRepo) GetByID(ctx context.Context, id string) (*models.ChefInfo, error) {
	c, ok := r.chefs[id]
	if !ok {
		return nil, fmt.Errorf("chef %s not found", id)
	}
	return &c, nil
}

func (r *fakeChefRepo) ActiveChefsForDate(ctx context.Context, date string) ([]models.ChefInfo, error) {
	var out []models.ChefInfo
	for _, c := range r.chefs {
		if c.Available && !c.OnLeave(date) {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakeBookingRepo keeps bookings in memory with the same optimistic
// concurrency rules as the Mongo implementation.
type fakeBookingRepo struct {
	mu        sync.Mutex
	bookings  map[string]*models.Booking
	completed map[string]int // chefID|customerID -> completed count
	weekly    map[string]int // chefID -> bookings this week
}

func newFakeBookingRepo(bookings ...*models.Booking) *fakeBookingRepo {
	m := make(map[string]*models.Booking, len(bookings))
	for _, b := range bookings {
		m[b.ID] = b
	}
	return &fakeBookingRepo{
		bookings:  m,
		completed: map[string]int{},
		weekly:    map[string]int{},
	}
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s not found", id)
	}
	snapshot := *b
	return &snapshot, nil
}

func (r *fakeBookingRepo) BookingsForDate(ctx context.Context, date string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Date == date && b.Status != models.BookingStatusCompleted {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) BookingsForChefOnDate(ctx context.Context, chefID, date string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.AssignedChefID == chefID && b.Date == date {
			out = append(out, *b)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Start.Before(out[i].Start) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) CountChefBookingsInRange(ctx context.Context, chefID string, from, to time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.weekly[chefID], nil
}

func (r *fakeBookingRepo) CountCompletedWithCustomer(ctx context.Context, chefID, customerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed[chefID+"|"+customerID], nil
}

func (r *fakeBookingRepo) AssignChef(ctx context.Context, bookingID, chefID string, start time.Time, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	if b.Version != expectedVersion || b.AssignedChefID != "" {
		return dispatchRepo.ErrAssignmentConflict
	}
	b.AssignedChefID = chefID
	b.Start = start
	b.Status = models.BookingStatusConfirmed
	b.Version++
	return nil
}

func (r *fakeBookingRepo) ShiftBookingTime(ctx context.Context, bookingID string, newStart time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	b.Start = newStart
	b.Version++
	return nil
}

// fakeTravel replies with a fixed duration per chef origin, keyed on the
// rounded origin latitude, or fails outright.
type fakeTravel struct {
	minutesByOriginLat map[float64]int
	defaultMinutes     int
	err                error
}

func (f *fakeTravel) Resolve(ctx context.Context, originLat, originLng, destLat, destLng float64, departure time.Time) (models.TravelEstimate, error) {
	if f.err != nil {
		return models.TravelEstimate{}, f.err
	}
	minutes := f.defaultMinutes
	if m, ok := f.minutesByOriginLat[originLat]; ok {
		minutes = m
	}
	return models.TravelEstimate{Minutes: minutes, Provider: "fake", ResolvedAt: time.Now()}, nil
}

// fakePush records sent notifications.
type fakePush struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakePush) SendCustomerPush(ctx context.Context, customerID, title, body string, data map[string]string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, customerID)
	return nil
}

// memStore is an in-memory NegotiationStore. TTLs are ignored; tests
// control expiry through the service API. The afterGet hook lets a test
// interleave a concurrent write between a read and its compare-and-set.
type memStore struct {
	mu       sync.Mutex
	data     map[string]string
	afterGet func()
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (s *memStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	v, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("key %s not found", key)
	}
	if s.afterGet != nil {
		s.afterGet()
	}
	return v, nil
}

func (s *memStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) CompareAndSet(ctx context.Context, key, expected, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[key] != expected {
		return errStoreConflict
	}
	s.data[key] = value
	return nil
}
