package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/techagentng/bookclub/models"
)

func newTestDB(t *testing.T) *GormDB {
	t.Helper()
	g, err := Open(sqlite.Open(filepath.Join(t.TempDir(), "bookclub.db")), true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

// steppingClock returns a clock that advances one second per call.
func steppingClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

func createUser(t *testing.T, repo AuthRepository, first, last, email string) *models.User {
	t.Helper()
	u, err := repo.CreateUser(&models.User{FirstName: first, LastName: last, Email: email, HashedPassword: "x"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, u.ID)
	return u
}

func TestOpenMigratesAndPings(t *testing.T) {
	req := require.New(t)
	g := newTestDB(t)
	req.NoError(g.Ping())
	for _, table := range []string{"users", "books", "book_likes", "messages", "blacklists"} {
		req.True(g.DB.Migrator().HasTable(table), table)
	}
}
