package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/eventhub/internal/dbx"
	"github.com/dmitrijs2005/eventhub/internal/logging"
	"github.com/dmitrijs2005/eventhub/internal/server/auth"
	"github.com/dmitrijs2005/eventhub/internal/server/config"
	"github.com/dmitrijs2005/eventhub/internal/server/models"
	"github.com/dmitrijs2005/eventhub/internal/server/notify"
	"github.com/dmitrijs2005/eventhub/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.Kind)
	}
	return out
}

type fakeImageStore struct {
	uploads []string
	err     error
}

func (f *fakeImageStore) PresignUpload(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, key)
	return "https://images.test/put/" + key, nil
}

func (f *fakeImageStore) PresignDownload(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://images.test/get/" + key, nil
}

type testEnv struct {
	db            *gorm.DB
	m             repomanager.RepositoryManager
	cfg           *config.Config
	hasher        *auth.PasswordHasher
	tokens        *auth.TokenService
	notifier      *recordingNotifier
	images        *fakeImageStore
	users         *UserService
	events        *EventService
	registrations *RegistrationService
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "services-test-secret"
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := dbx.OpenSQLite("file:services_" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m := repomanager.NewSQLiteRepositoryManager()
	require.NoError(t, m.RunMigrations(context.Background(), db))

	cfg := testConfig()
	tokens, err := auth.NewTokenService(auth.SigningConfigFrom(cfg))
	require.NoError(t, err)

	env := &testEnv{
		db:       db,
		m:        m,
		cfg:      cfg,
		hasher:   auth.NewPasswordHasher(cfg.BcryptCost),
		tokens:   tokens,
		notifier: &recordingNotifier{},
		images:   &fakeImageStore{},
	}
	l := logging.Nop{}
	env.users = NewUserService(db, m, env.hasher, tokens, nil, cfg, l)
	env.events = NewEventService(db, m, env.images, env.notifier, l)
	env.registrations = NewRegistrationService(db, m, env.notifier, l)
	return env
}

// signup registers a user and returns a context carrying its identity.
func (e *testEnv) signup(t *testing.T, name string) (context.Context, *models.User) {
	t.Helper()
	u, err := e.users.Register(context.Background(), name+"@example.com", "Secret1!", name)
	require.NoError(t, err)
	ctx := auth.WithIdentity(context.Background(), auth.Identity{UserID: u.ID, Email: u.Email, UserName: u.UserName})
	return ctx, u
}

func (e *testEnv) createEvent(t *testing.T, ctx context.Context, title string) *models.Event {
	t.Helper()
	ev, err := e.events.Create(ctx, EventInput{
		Title:    title,
		Date:     time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC),
		Location: "Riga",
	})
	require.NoError(t, err)
	return ev
}
