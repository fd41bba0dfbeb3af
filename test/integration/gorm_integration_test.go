package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"migratemate-be/internal/entity"
	"migratemate-be/internal/repository/specification"
	"migratemate-be/internal/repository/unitofwork"
	"migratemate-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.SubscriptionRepository())
	assert.NotNil(t, uow.CancellationRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Cancellation Repository", func(t *testing.T) {
		attempts, err := uow.CancellationRepository().FindAll(context.Background())
		assert.NoError(t, err)
		t.Logf("Cancellation count: %d", len(attempts))
	})

	t.Run("Check Specification Composition", func(t *testing.T) {
		attempts, err := uow.CancellationRepository().FindAll(context.Background(),
			specification.Filter("downsell_variant", "B"),
			specification.OrderBy{Field: "created_at", Desc: true},
			specification.Pagination{Limit: 10, Offset: 0},
		)
		assert.NoError(t, err)
		assert.LessOrEqual(t, len(attempts), 10)
		for _, a := range attempts {
			assert.Equal(t, entity.VariantB, a.DownsellVariant)
		}
	})
}
