package service

import (
	"io"
	"testing"
	"time"

	"github.com/kiyo9w/Imacall-backend/internal/models"
	"github.com/kiyo9w/Imacall-backend/pkg/cache"
	"github.com/kiyo9w/Imacall-backend/pkg/jwt"
	"github.com/kiyo9w/Imacall-backend/pkg/logger"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Character{},
		&models.Conversation{},
		&models.Message{},
	))

	return db
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

func testJWT() *jwt.Service {
	return jwt.NewService("test-secret", time.Hour)
}

func testCache() *cache.Cache {
	return cache.NewCacheWith(time.Minute, 0, 100)
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := models.User{
		Name:     "Test User",
		Email:    email,
		Password: "password123",
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createCharacter(t *testing.T, db *gorm.DB, creatorID uuid.UUID, status models.CharacterStatus, mutate ...func(*models.Character)) *models.Character {
	t.Helper()

	character := models.Character{
		CreatorID:       creatorID,
		Name:            "Nova",
		Description:     "A starship navigator",
		GreetingMessage: "Hello from the void.",
		Category:        "sci-fi",
		Status:          status,
		IsPublic:        true,
	}
	for _, fn := range mutate {
		fn(&character)
	}
	require.NoError(t, db.Create(&character).Error)
	return &character
}
