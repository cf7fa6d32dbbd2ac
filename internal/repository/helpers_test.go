package repository

import (
	"testing"

	"github.com/google/uuid"

	"github.com/aimd54/swachhta-hub/internal/models"
)

// setupTestDB creates a migrated in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenSQLite(":memory:", nil)
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// createTestUser creates a test user in the database.
func createTestUser(t *testing.T, db *DB, name string) *models.User {
	t.Helper()

	user := &models.User{
		PublicID:     uuid.NewString(),
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		City:         "Pune",
		Role:         models.RoleUser,
		Level:        1,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// createTestBadge creates a test badge in the database.
func createTestBadge(t *testing.T, repo *BadgeRepository, name, criterion string) *models.Badge {
	t.Helper()

	parsed, err := models.ParseBadgeCriterion(criterion)
	if err != nil {
		t.Fatalf("Invalid criterion: %v", err)
	}

	badge := &models.Badge{
		Name:        name,
		Description: name + " description",
		Icon:        "fa-star",
		Criteria:    parsed,
	}

	if err := repo.Create(badge); err != nil {
		t.Fatalf("Failed to create test badge: %v", err)
	}

	return badge
}
