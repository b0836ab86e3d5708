package database

import (
	"context"
	"os"
	"testing"
	"time"

	"frodi/internal/config"
	"frodi/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *GenerationJournal {
	t.Helper()
	if os.Getenv("TEST_POSTGRES_SERVER") == "" {
		t.Skip("set TEST_POSTGRES_* to run journal tests against postgres")
	}
	db, err := Open(config.PostgresConfig{
		User:     os.Getenv("TEST_POSTGRES_USER"),
		Password: os.Getenv("TEST_POSTGRES_PASSWORD"),
		Server:   os.Getenv("TEST_POSTGRES_SERVER"),
		Port:     os.Getenv("TEST_POSTGRES_PORT"),
		DB:       os.Getenv("TEST_POSTGRES_DB"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewGenerationJournal(db)
}

func TestGenerationJournalRecord(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()
	route := "test-" + uuid.NewString()[:8]

	for i, outcome := range []string{"rejected", "accepted"} {
		require.NoError(t, journal.Record(ctx, &models.Generation{
			ID:        uuid.NewString(),
			Route:     route,
			Filename:  "skjal.docx",
			WordCount: 100 + i,
			Outcome:   outcome,
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}))
	}

	var recent []models.Generation
	require.NoError(t, journal.db.WithContext(ctx).
		Where("route = ?", route).
		Order("created_at DESC").
		Find(&recent).Error)
	require.Len(t, recent, 2)
	assert.Equal(t, "accepted", recent[0].Outcome)
	assert.Equal(t, "rejected", recent[1].Outcome)
}
