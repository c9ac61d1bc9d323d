package repository

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/ekinaktas/klik/database"
	"github.com/ekinaktas/klik/models"
	"github.com/stretchr/testify/require"
)

// newTestDB, geçici dizinde migration'ları uygulanmış gerçek bir SQLite açar.
// Repository testleri mock yerine gerçek şemaya karşı koşar — UNIQUE index'ler
// ve CHECK constraint'ler de test kapsamındadır.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrationsFS)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

// seedUser, testler için kullanıcı kaydı oluşturur.
func seedUser(t *testing.T, repo UserRepository, username string) *models.User {
	t.Helper()

	email := username + "@example.com"
	user := &models.User{
		Username:     username,
		Email:        &email,
		PasswordHash: "x",
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}
