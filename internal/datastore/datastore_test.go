package datastore

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/irrigo/internal/conf"
	"github.com/tphakala/irrigo/internal/errors"
)

func openTestStore(t *testing.T) Interface {
	t.Helper()

	settings := &conf.Settings{Datastore: conf.DatastoreSettings{
		Enabled: true,
		Type:    "sqlite",
		SQLite:  conf.SQLiteSettings{Path: filepath.Join(t.TempDir(), "history.db")},
	}}
	store := New(settings)
	require.NotNil(t, store)
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func ptr(v float64) *float64 { return &v }

func newRecord(decision string, total *float64, rain float64, created time.Time) *PlanRecord {
	return &PlanRecord{
		ID:           uuid.NewString(),
		CreatedAt:    created,
		Crop:         "wheat",
		SoilMoisture: 40,
		FarmArea:     2,
		RainMm:       rain,
		Decision:     decision,
		Explanation:  "Yes, irrigate.",
		TotalVolume:  total,
	}
}

func TestNew_Selection(t *testing.T) {
	t.Parallel()

	assert.Nil(t, New(&conf.Settings{}))

	s := New(&conf.Settings{Datastore: conf.DatastoreSettings{Enabled: true, Type: "mysql"}})
	assert.IsType(t, &MySQLStore{}, s)

	s = New(&conf.Settings{Datastore: conf.DatastoreSettings{Enabled: true, Type: "sqlite"}})
	assert.IsType(t, &SQLiteStore{}, s)
}

func TestSQLiteStore_OpenRequiresPath(t *testing.T) {
	t.Parallel()

	store := &SQLiteStore{Settings: &conf.Settings{}}
	err := store.Open()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestSaveAndGetPlan(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	rec := newRecord("irrigate", ptr(4000), 1.5, time.Now().UTC())
	rec.PerAreaVolume = ptr(2000)
	require.NoError(t, store.SavePlan(rec))

	got, err := store.GetPlan(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "wheat", got.Crop)
	assert.Equal(t, "irrigate", got.Decision)
	require.NotNil(t, got.TotalVolume)
	assert.InDelta(t, 4000.0, *got.TotalVolume, 1e-9)
	assert.Nil(t, got.BudgetPercent)
}

func TestGetPlan_NotFound(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	_, err := store.GetPlan(uuid.NewString())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	assert.True(t, errors.IsNotFound(err))
}

func TestSavePlan_Validation(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	assert.Error(t, store.SavePlan(&PlanRecord{}))

	rec := newRecord("unclear", nil, 0, time.Now())
	require.NoError(t, store.SavePlan(rec))
	assert.Error(t, store.SavePlan(rec), "duplicate primary key")
}

func TestListPlans_NewestFirst(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := range 5 {
		require.NoError(t, store.SavePlan(newRecord("irrigate", nil, 0, base.Add(time.Duration(i)*time.Hour))))
	}

	records, err := store.ListPlans(3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, records[0].CreatedAt.After(records[1].CreatedAt))
	assert.True(t, base.Add(4*time.Hour).Equal(records[0].CreatedAt))

	all, err := store.ListPlans(0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	now := time.Now()
	require.NoError(t, store.SavePlan(newRecord("irrigate", ptr(0.1), 1, now)))
	require.NoError(t, store.SavePlan(newRecord("irrigate", ptr(0.2), 2, now)))
	require.NoError(t, store.SavePlan(newRecord("do_not_irrigate", ptr(20000), 3.5, now)))
	require.NoError(t, store.SavePlan(newRecord("unclear", nil, 0, now)))

	summary, err := store.Summary()
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.Plans)
	assert.Equal(t, int64(2), summary.Decisions["irrigate"])
	assert.Equal(t, int64(1), summary.Decisions["do_not_irrigate"])
	assert.Equal(t, "20000", summary.TotalVolume)
	assert.Equal(t, "1.6", summary.AverageRainMm)
}

func TestSummary_Empty(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	summary, err := store.Summary()
	require.NoError(t, err)
	assert.Zero(t, summary.Plans)
	assert.Equal(t, "0", summary.TotalVolume)
	assert.Equal(t, "0.0", summary.AverageRainMm)
}

func TestSavePlan_Concurrent(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := newRecord(fmt.Sprintf("d%d", i%2), nil, 0, time.Now())
			errs <- store.SavePlan(rec)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	records, err := store.ListPlans(100)
	require.NoError(t, err)
	assert.Len(t, records, 10)
}

func TestMySQLDSN(t *testing.T) {
	t.Parallel()

	dsn := mysqlDSN(conf.MySQLSettings{Host: "db", Port: "3306", Username: "irrigo", Password: "secret", Database: "plans"})
	assert.Equal(t, "irrigo:secret@tcp(db:3306)/plans?charset=utf8mb4&parseTime=True&loc=Local", dsn)
}

func TestUnopenedStore(t *testing.T) {
	t.Parallel()

	store := &SQLiteStore{}
	assert.Error(t, store.SavePlan(newRecord("irrigate", nil, 0, time.Now())))
	_, err := store.ListPlans(1)
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}
