package postgres

import (
	"LinkShield-Backend/internal/database"
	"LinkShield-Backend/internal/domain"
	"LinkShield-Backend/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestStorage spins up a throwaway PostgreSQL container and migrates the
// schema into it. Skipped in -short mode.
func setupTestStorage(t *testing.T) *PostgresStorage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// TranslateError matches the production connection setup: unique
	// violations must surface as gorm.ErrDuplicatedKey
	db, err := gorm.Open(gormpostgres.Open(connStr), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, database.AutoMigrate(db, zap.NewNop()))

	return New(db, zap.NewNop())
}

func TestPostgresStorage(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()

	var userID string

	t.Run("create_user_and_duplicate_email", func(t *testing.T) {
		name := "Alice"
		user, err := storage.CreateUser(ctx, "alice@example.com", "hash", &name)
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, domain.RoleUser, user.Role)
		userID = user.ID

		_, err = storage.CreateUser(ctx, "alice@example.com", "other", nil)
		assert.ErrorIs(t, err, repository.ErrEmailExists)
	})

	t.Run("save_link_and_duplicate_code", func(t *testing.T) {
		link := &domain.Link{
			OriginalURL: "https://example.com",
			ShortCode:   "abc12345",
			UserID:      &userID,
		}
		require.NoError(t, storage.SaveLink(ctx, link))
		assert.NotEmpty(t, link.ID)

		err := storage.SaveLink(ctx, &domain.Link{
			OriginalURL: "https://other.com",
			ShortCode:   "abc12345",
		})
		assert.ErrorIs(t, err, repository.ErrCodeExists,
			"unique violation must map to ErrCodeExists")
	})

	t.Run("lookup_by_code_and_id", func(t *testing.T) {
		link, err := storage.GetLinkByCode(ctx, "abc12345")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", link.OriginalURL)

		byID, err := storage.GetLinkByID(ctx, link.ID)
		require.NoError(t, err)
		assert.Equal(t, link.ShortCode, byID.ShortCode)

		_, err = storage.GetLinkByCode(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrCodeNotFound)
	})

	t.Run("code_exists", func(t *testing.T) {
		exists, err := storage.CodeExists(ctx, "abc12345")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = storage.CodeExists(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("increment_clicks_atomic", func(t *testing.T) {
		require.NoError(t, storage.IncrementClicks(ctx, "abc12345"))
		require.NoError(t, storage.IncrementClicks(ctx, "abc12345"))

		link, err := storage.GetLinkByCode(ctx, "abc12345")
		require.NoError(t, err)
		assert.EqualValues(t, 2, link.Clicks)

		err = storage.IncrementClicks(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrCodeNotFound)
	})

	t.Run("flag_lifecycle", func(t *testing.T) {
		reason := "Known phishing domain"
		link := &domain.Link{
			OriginalURL: "https://phishing.example",
			ShortCode:   "bad12345",
			Flagged:     true,
			FlagReason:  &reason,
		}
		require.NoError(t, storage.SaveLink(ctx, link))

		require.NoError(t, storage.SetLinkFlag(ctx, link.ID, false, nil))

		approved, err := storage.GetLinkByID(ctx, link.ID)
		require.NoError(t, err)
		assert.False(t, approved.Flagged)
		assert.Nil(t, approved.FlagReason)
	})

	t.Run("update_link_code", func(t *testing.T) {
		link := &domain.Link{OriginalURL: "https://a.com", ShortCode: "move1234"}
		require.NoError(t, storage.SaveLink(ctx, link))

		require.NoError(t, storage.UpdateLinkCode(ctx, link.ID, "moved123"))

		_, err := storage.GetLinkByCode(ctx, "move1234")
		assert.ErrorIs(t, err, repository.ErrCodeNotFound)
		got, err := storage.GetLinkByCode(ctx, "moved123")
		require.NoError(t, err)
		assert.Equal(t, link.ID, got.ID)

		err = storage.UpdateLinkCode(ctx, link.ID, "abc12345")
		assert.ErrorIs(t, err, repository.ErrCodeExists)
	})

	t.Run("list_all_links_joins_owner", func(t *testing.T) {
		page, err := storage.ListAllLinks(ctx, repository.ListParams{Search: "example.com"})
		require.NoError(t, err)
		require.NotEmpty(t, page.Links)

		var owned *repository.LinkRow
		for _, row := range page.Links {
			if row.ShortCode == "abc12345" {
				owned = row
			}
		}
		require.NotNil(t, owned)
		require.NotNil(t, owned.UserEmail)
		assert.Equal(t, "alice@example.com", *owned.UserEmail)
	})

	t.Run("update_user_role", func(t *testing.T) {
		require.NoError(t, storage.UpdateUserRole(ctx, userID, domain.RoleAdmin))

		user, err := storage.GetUserByID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, user.Role)

		err = storage.UpdateUserRole(ctx, "00000000-0000-0000-0000-000000000000", domain.RoleUser)
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("delete_link", func(t *testing.T) {
		link := &domain.Link{OriginalURL: "https://a.com", ShortCode: "gone1234"}
		require.NoError(t, storage.SaveLink(ctx, link))

		require.NoError(t, storage.DeleteLink(ctx, link.ID))

		_, err := storage.GetLinkByID(ctx, link.ID)
		assert.ErrorIs(t, err, repository.ErrLinkNotFound)
	})

	t.Run("list_user_links", func(t *testing.T) {
		links, err := storage.ListUserLinks(ctx, userID)
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "abc12345", links[0].ShortCode)
	})
}
