package registration_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"eventdesk/internal/models"
	"eventdesk/internal/registration/db"
	registration "eventdesk/internal/registration/service"
)

// The reconcile tests run against a real store so the second sweep sees
// the writes the first one made.
func setupReconcileDB(t *testing.T) (*registration.Service, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	_, err = bunDB.NewCreateTable().Model((*models.Event)(nil)).Exec(context.Background())
	require.NoError(t, err)

	service := registration.NewService(&db.DB{Bun: bunDB}, nil, nil)
	return service, bunDB
}

func TestReconcileExpiredEventsIsIdempotent(t *testing.T) {
	service, bunDB := setupReconcileDB(t)
	defer bunDB.Close()

	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	events := []models.Event{
		{ID: uuid.New().String(), Name: "Ended Meetup", Status: models.EventUpcoming, EndDate: &past, CreatedAt: now},
		{ID: uuid.New().String(), Name: "Another Ended", Status: models.EventUpcoming, EndDate: &past, CreatedAt: now},
		{ID: uuid.New().String(), Name: "Still Running", Status: models.EventUpcoming, EndDate: &future, CreatedAt: now},
	}
	for i := range events {
		_, err := bunDB.NewInsert().Model(&events[i]).Exec(context.Background())
		require.NoError(t, err)
	}

	// First sweep ends both expired events
	ended := service.ReconcileExpiredEvents()
	assert.Equal(t, 2, ended)

	// Second sweep is a no-op
	ended = service.ReconcileExpiredEvents()
	assert.Equal(t, 0, ended)

	var ongoing []models.Event
	err := bunDB.NewSelect().Model(&ongoing).
		Where("status = ?", models.EventUpcoming).
		Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, ongoing, 1)
	assert.Equal(t, "Still Running", ongoing[0].Name)
}

func TestReconcileSwallowsStoreErrors(t *testing.T) {
	service, bunDB := setupReconcileDB(t)

	// Closing the store makes every query fail; the sweep must not panic
	// or report phantom transitions.
	bunDB.Close()

	ended := service.ReconcileExpiredEvents()
	assert.Equal(t, 0, ended)
}
