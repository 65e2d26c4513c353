package service

import (
	"context"
	"time"

	"github.com/rongwang/railway-server/internal/auth"
	"github.com/rongwang/railway-server/internal/metrics"
	"github.com/rongwang/railway-server/internal/models"
	"github.com/rongwang/railway-server/internal/repository"
	"github.com/rongwang/railway-server/internal/utils"
	"github.com/shopspring/decimal"
)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error

	// Catalog
	AddStation(ctx context.Context, req models.AddStationRequest) (*models.Station, error)
	UpdateStation(ctx context.Context, id int64, patch models.StationPatch) error
	DeleteStation(ctx context.Context, id int64) error
	ListStations(ctx context.Context) ([]models.Station, error)
	CreateTrain(ctx context.Context, req models.CreateTrainRequest) (*models.Train, error)
	UpdateTrainStop(ctx context.Context, trainID, stopID int64, patch models.StopPatch) error
	DeleteTrain(ctx context.Context, id int64) error
	ListTrains(ctx context.Context) ([]models.TrainSchedule, error)

	// Wallet
	AddFunds(ctx context.Context, userID int64, amount decimal.Decimal) error
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	History(ctx context.Context, userID int64) ([]models.HistoryEntry, error)

	// Tickets
	PurchaseTicket(ctx context.Context, userID int64, req models.PurchaseTicketRequest) (*models.Ticket, error)
	ListTickets(ctx context.Context, userID int64) ([]models.Ticket, error)
}

// CatalogCache caches catalog listings. Load reports whether key was present
// and the cache generation a miss should be stored under.
type CatalogCache interface {
	Load(ctx context.Context, key string, dst interface{}) (bool, int64, error)
	Store(ctx context.Context, key string, gen int64, v interface{}) error
	Invalidate(ctx context.Context) error
}

// TokenRevoker blacklists a token id for the rest of its lifetime
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo    repository.Repository
	tokens  *auth.TokenManager
	cache   CatalogCache
	revoker TokenRevoker
	metrics *metrics.Metrics
	logger  *utils.Logger
	now     func() time.Time
}

// NewDefaultService creates a new DefaultService. cache, revoker and m may be
// nil; the service then skips caching, revocation and metrics.
func NewDefaultService(
	repo repository.Repository,
	tokens *auth.TokenManager,
	cache CatalogCache,
	revoker TokenRevoker,
	m *metrics.Metrics,
	logger *utils.Logger,
) *DefaultService {
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &DefaultService{
		repo:    repo,
		tokens:  tokens,
		cache:   cache,
		revoker: revoker,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}
