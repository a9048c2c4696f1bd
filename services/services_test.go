package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/techagentng/bookclub/db"
	"github.com/techagentng/bookclub/models"
	"go.uber.org/zap"
)

var nopLogger = zap.NewNop().Sugar()

func newTestDB(t *testing.T) *db.GormDB {
	t.Helper()
	g, err := db.Open(sqlite.Open(filepath.Join(t.TempDir(), "bookclub.db")), true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

type broadcast struct {
	userID uuid.UUID
	event  models.ServerEvent
}

// fakeDispatcher records every broadcast. online holds how many members each user has.
type fakeDispatcher struct {
	mu     sync.Mutex
	online map[uuid.UUID]int
	sent   []broadcast
}

func (f *fakeDispatcher) Broadcast(userID uuid.UUID, event models.ServerEvent) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, broadcast{userID: userID, event: event})
	return f.online[userID]
}

func (f *fakeDispatcher) recipients() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(f.sent))
	for _, b := range f.sent {
		ids = append(ids, b.userID)
	}
	return ids
}

type fakeNotifier struct {
	notified chan *models.Message
}

func (f *fakeNotifier) NotifyNewMessage(_ context.Context, m *models.Message) error {
	f.notified <- m
	return nil
}

type fakeProfiles map[uuid.UUID]models.UserProfile

func (f fakeProfiles) FindProfilesByIDs(ids []uuid.UUID) (map[uuid.UUID]models.UserProfile, error) {
	out := make(map[uuid.UUID]models.UserProfile)
	for _, id := range ids {
		if p, ok := f[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeMailer struct {
	sent chan string
}

func (f *fakeMailer) SendMail(_ context.Context, _, _, recipient string) error {
	f.sent <- recipient
	return nil
}
