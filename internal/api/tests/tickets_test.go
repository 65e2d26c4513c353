package api_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rongwang/railway-server/internal/api/testutils"
	"github.com/rongwang/railway-server/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentPurchasesNeverOverdraw(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)
	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	from := testCtx.SeedStation(t, "Central")
	to := testCtx.SeedStation(t, "North")
	train := testCtx.SeedTrain(t, "Express", []int64{from, to}, []string{"08:00:00", "09:00:00"})

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/wallet/add", map[string]interface{}{"amount": 100}, headers)
	require.Equal(t, http.StatusOK, w.Code)

	const numGoroutines = 10
	codes := make(chan int, numGoroutines)
	var wg sync.WaitGroup

	// Each purchase costs 30, so only three of the ten can succeed
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/tickets/purchase",
				map[string]interface{}{"train_id": train, "from_station": from, "to_station": to, "price": 30}, headers)
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)

	var ok, rejected int
	for code := range codes {
		switch code {
		case http.StatusOK:
			ok++
		case http.StatusBadRequest:
			rejected++
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	assert.Equal(t, 3, ok)
	assert.Equal(t, numGoroutines-3, rejected)

	balance := balanceOf(t, testCtx, testCtx.TestUserJWT)
	assert.True(t, balance.Equal(decimal.NewFromInt(10)), "balance %s", balance)

	var adds, deducts decimal.Decimal
	for _, e := range historyOf(t, testCtx, testCtx.TestUserJWT) {
		if e.Type == models.EntryTypeAdd {
			adds = adds.Add(e.Amount)
		} else {
			deducts = deducts.Add(e.Amount)
		}
	}
	assert.True(t, balance.Equal(adds.Sub(deducts)))
}

// dbClockAt returns the given time of day on the database's current date,
// in the database session's zone.
func dbClockAt(t *testing.T, testCtx *testutils.TestContext, dayOffset, hour, minute int) time.Time {
	t.Helper()

	var now time.Time
	require.NoError(t, testCtx.DB.GetContext(context.Background(), &now, `SELECT now()`))
	return time.Date(now.Year(), now.Month(), now.Day()+dayOffset, hour, minute, 0, 0, now.Location())
}

func isValid(t *testing.T, testCtx *testutils.TestContext, id int64) bool {
	t.Helper()

	var v bool
	require.NoError(t, testCtx.DB.GetContext(context.Background(), &v, `SELECT is_valid FROM tickets WHERE id = $1`, id))
	return v
}

func buyTicket(t *testing.T, testCtx *testutils.TestContext, train, from, to int64) int64 {
	t.Helper()

	ticket := &models.Ticket{UserID: testCtx.TestUserID, TrainID: train, FromStation: from, ToStation: to, Price: decimal.NewFromInt(10)}
	require.NoError(t, testCtx.Repository.PurchaseTicket(context.Background(), ticket))
	return ticket.ID
}

func TestExpireAnyStop(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)
	ctx := context.Background()

	from := testCtx.SeedStation(t, "Central")
	to := testCtx.SeedStation(t, "North")
	morning := testCtx.SeedTrain(t, "Morning", []int64{from, to}, []string{"08:00:00", "09:00:00"})
	evening := testCtx.SeedTrain(t, "Evening", []int64{from, to}, []string{"18:00:00", "19:00:00"})

	_, err := testCtx.Repository.AddFunds(ctx, testCtx.TestUserID, decimal.NewFromInt(100))
	require.NoError(t, err)

	morningTicket := buyTicket(t, testCtx, morning, from, to)
	eveningTicket := buyTicket(t, testCtx, evening, from, to)

	noon := dbClockAt(t, testCtx, 0, 12, 0)

	first, err := testCtx.Repository.ExpireTickets(ctx, models.ExpireAnyStop, noon)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := testCtx.Repository.ExpireTickets(ctx, models.ExpireAnyStop, noon)
	require.NoError(t, err)
	assert.Zero(t, second, "a repeated run changes nothing")

	assert.False(t, isValid(t, testCtx, morningTicket))
	assert.True(t, isValid(t, testCtx, eveningTicket))
}

func TestExpireDepartureStop(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)
	ctx := context.Background()

	central := testCtx.SeedStation(t, "Central")
	north := testCtx.SeedStation(t, "North")
	morning := testCtx.SeedTrain(t, "Morning", []int64{central, north}, []string{"08:00:00", "09:00:00"})
	evening := testCtx.SeedTrain(t, "Evening", []int64{central, north}, []string{"18:00:00", "19:00:00"})

	_, err := testCtx.Repository.AddFunds(ctx, testCtx.TestUserID, decimal.NewFromInt(100))
	require.NoError(t, err)

	// Departs Central 08:05 and North 09:05
	boardedCentral := buyTicket(t, testCtx, morning, central, north)
	boardedNorth := buyTicket(t, testCtx, morning, north, central)
	boardedEvening := buyTicket(t, testCtx, evening, central, north)

	n, err := testCtx.Repository.ExpireTickets(ctx, models.ExpireDepartureStop, dbClockAt(t, testCtx, 0, 8, 30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "only the boarding stop's departure counts")
	assert.False(t, isValid(t, testCtx, boardedCentral))
	assert.True(t, isValid(t, testCtx, boardedNorth))
	assert.True(t, isValid(t, testCtx, boardedEvening))

	// Just after midnight every ticket bought today is for a past date
	n, err = testCtx.Repository.ExpireTickets(ctx, models.ExpireDepartureStop, dbClockAt(t, testCtx, 1, 0, 30))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.False(t, isValid(t, testCtx, boardedNorth))
	assert.False(t, isValid(t, testCtx, boardedEvening))

	n, err = testCtx.Repository.ExpireTickets(ctx, models.ExpireDepartureStop, dbClockAt(t, testCtx, 1, 0, 30))
	require.NoError(t, err)
	assert.Zero(t, n)
}
