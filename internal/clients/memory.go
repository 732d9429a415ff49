package clients

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryUserService serves users from a map. Doubles as the local-dev
// implementation when USER_SERVICE_URL is unset.
type MemoryUserService struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryUserService(users ...User) *MemoryUserService {
	m := &MemoryUserService{users: make(map[string]User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *MemoryUserService) AddUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *MemoryUserService) GetUser(_ context.Context, userID string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

type seatLock struct {
	showtimeID string
	seats      []string
	bookingID  string
	expiresAt  time.Time
	confirmed  bool
}

// MemoryCinemaService keeps showtimes and seat locks in-process with real
// lock-TTL and double-lock semantics, so the saga can be exercised end to end
// without the cinema service.
type MemoryCinemaService struct {
	mu        sync.Mutex
	showtimes map[string]ShowtimeDetails
	locks     map[string]*seatLock
	taken     map[string]map[string]bool // showtime -> seat -> permanently booked
	now       func() time.Time
}

func NewMemoryCinemaService(showtimes ...ShowtimeDetails) *MemoryCinemaService {
	m := &MemoryCinemaService{
		showtimes: make(map[string]ShowtimeDetails),
		locks:     make(map[string]*seatLock),
		taken:     make(map[string]map[string]bool),
		now:       time.Now,
	}
	for _, s := range showtimes {
		m.showtimes[s.ShowtimeID] = s
	}
	return m
}

func (m *MemoryCinemaService) AddShowtime(s ShowtimeDetails) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.showtimes[s.ShowtimeID] = s
}

func (m *MemoryCinemaService) GetShowtime(_ context.Context, showtimeID string) (*ShowtimeDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.showtimes[showtimeID]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryCinemaService) LockSeats(_ context.Context, showtimeID string, seats []string, bookingID string, ttl time.Duration) (*LockResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.showtimes[showtimeID]; !ok {
		return nil, ErrNotFound
	}

	for _, seat := range seats {
		if m.taken[showtimeID][seat] {
			return nil, fmt.Errorf("%w: seat %s already booked", ErrSeatsUnavailable, seat)
		}
		for _, l := range m.locks {
			if l.showtimeID != showtimeID || l.expiresAt.Before(m.now()) {
				continue
			}
			for _, held := range l.seats {
				if held == seat {
					return nil, fmt.Errorf("%w: seat %s locked by another booking", ErrSeatsUnavailable, seat)
				}
			}
		}
	}

	lockID := uuid.NewString()
	expiresAt := m.now().Add(ttl)
	m.locks[lockID] = &seatLock{
		showtimeID: showtimeID,
		seats:      append([]string(nil), seats...),
		bookingID:  bookingID,
		expiresAt:  expiresAt,
	}
	return &LockResult{LockID: lockID, ExpiresAt: expiresAt}, nil
}

func (m *MemoryCinemaService) ConfirmSeats(_ context.Context, lockID, bookingID, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[lockID]
	if !ok {
		return fmt.Errorf("seat confirmation declined: lock %s not found", lockID)
	}
	if l.bookingID != bookingID {
		return fmt.Errorf("seat confirmation declined: lock %s belongs to another booking", lockID)
	}
	if l.expiresAt.Before(m.now()) {
		return fmt.Errorf("seat confirmation declined: lock %s expired", lockID)
	}

	if m.taken[l.showtimeID] == nil {
		m.taken[l.showtimeID] = make(map[string]bool)
	}
	for _, seat := range l.seats {
		m.taken[l.showtimeID][seat] = true
	}
	l.confirmed = true
	return nil
}

func (m *MemoryCinemaService) ReleaseLock(_ context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, lockID)
	return nil
}
