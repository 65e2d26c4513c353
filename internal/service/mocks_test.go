package service

import (
	"context"
	"sync"
	"time"

	"github.com/rongwang/railway-server/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) CreateStation(ctx context.Context, station *models.Station) error {
	args := m.Called(ctx, station)
	return args.Error(0)
}

func (m *MockRepository) UpdateStation(ctx context.Context, id int64, patch models.StationPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockRepository) DeleteStation(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ListStations(ctx context.Context) ([]models.Station, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Station), args.Error(1)
}

func (m *MockRepository) CreateTrain(ctx context.Context, train *models.Train, stops []models.TrainStop) error {
	args := m.Called(ctx, train, stops)
	return args.Error(0)
}

func (m *MockRepository) UpdateTrainStop(ctx context.Context, trainID, stopID int64, patch models.StopPatch) error {
	args := m.Called(ctx, trainID, stopID, patch)
	return args.Error(0)
}

func (m *MockRepository) DeleteTrain(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ListTrainSchedules(ctx context.Context) ([]models.TrainSchedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TrainSchedule), args.Error(1)
}

func (m *MockRepository) GetWalletBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRepository) AddFunds(ctx context.Context, userID int64, amount decimal.Decimal) (*models.LedgerEntry, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockRepository) ListLedgerEntries(ctx context.Context, userID int64) ([]models.LedgerEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LedgerEntry), args.Error(1)
}

func (m *MockRepository) PurchaseTicket(ctx context.Context, ticket *models.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockRepository) ListTickets(ctx context.Context, userID int64) ([]models.Ticket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockRepository) ExpireTickets(ctx context.Context, strategy models.ExpiryStrategy, now time.Time) (int64, error) {
	args := m.Called(ctx, strategy, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Load(ctx context.Context, key string, dst interface{}) (bool, int64, error) {
	args := m.Called(ctx, key, dst)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockCache) Store(ctx context.Context, key string, gen int64, v interface{}) error {
	args := m.Called(ctx, key, gen, v)
	return args.Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockRevoker struct {
	mock.Mock
}

func (m *MockRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	args := m.Called(ctx, jti, ttl)
	return args.Error(0)
}

// memoryRepository keeps users, tickets and the ledger in memory with the
// same all-or-nothing purchase rules as the Postgres repository. Catalog
// methods are not needed by the wallet scenarios and are left to MockRepository.
type memoryRepository struct {
	MockRepository

	mu      sync.Mutex
	users   map[int64]*models.User
	tickets []models.Ticket
	ledger  []models.LedgerEntry
	nextID  int64
	clock   time.Time
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		users: make(map[int64]*models.User),
		clock: time.Date(2024, 10, 18, 8, 0, 0, 0, time.UTC),
	}
}

func (r *memoryRepository) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *memoryRepository) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memoryRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return models.ErrConflict
		}
	}
	user.ID = r.id()
	user.WalletBalance = decimal.Zero
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *memoryRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) GetWalletBalance(_ context.Context, userID int64) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return decimal.Zero, models.ErrNotFound
	}
	return u.WalletBalance, nil
}

func (r *memoryRepository) AddFunds(_ context.Context, userID int64, amount decimal.Decimal) (*models.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	u.WalletBalance = u.WalletBalance.Add(amount)

	entry := models.LedgerEntry{ID: r.id(), UserID: userID, Amount: amount, Type: models.EntryTypeAdd, Timestamp: r.tick()}
	r.ledger = append(r.ledger, entry)
	return &entry, nil
}

func (r *memoryRepository) ListLedgerEntries(_ context.Context, userID int64) ([]models.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := []models.LedgerEntry{}
	for i := len(r.ledger) - 1; i >= 0; i-- {
		if r.ledger[i].UserID == userID {
			entries = append(entries, r.ledger[i])
		}
	}
	return entries, nil
}

func (r *memoryRepository) PurchaseTicket(_ context.Context, ticket *models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[ticket.UserID]
	if !ok {
		return models.ErrNotFound
	}
	if u.WalletBalance.LessThan(ticket.Price) {
		return models.ErrInsufficientFunds
	}

	u.WalletBalance = u.WalletBalance.Sub(ticket.Price)
	ticket.ID = r.id()
	ticket.Timestamp = r.tick()
	ticket.IsValid = true
	r.tickets = append(r.tickets, *ticket)
	r.ledger = append(r.ledger, models.LedgerEntry{
		ID: r.id(), UserID: ticket.UserID, Amount: ticket.Price, Type: models.EntryTypeDeduct, Timestamp: ticket.Timestamp,
	})
	return nil
}

func (r *memoryRepository) ListTickets(_ context.Context, userID int64) ([]models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tickets := []models.Ticket{}
	for _, t := range r.tickets {
		if t.UserID == userID {
			tickets = append(tickets, t)
		}
	}
	return tickets, nil
}
