package events

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/tessellate-io/slackwise/internal/blobstore/memory"
	"github.com/tessellate-io/slackwise/internal/installstore"
	"github.com/tessellate-io/slackwise/internal/tenant"
	"github.com/tessellate-io/slackwise/internal/tenantconfig"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeInstalls tracks grants in memory with idempotent deletes.
type fakeInstalls struct {
	users map[string]bool // userID -> has grant
	bot   bool
}

var _ installstore.Store = (*fakeInstalls)(nil)

func newFakeInstalls(bot bool, users ...string) *fakeInstalls {
	f := &fakeInstalls{users: make(map[string]bool), bot: bot}
	for _, u := range users {
		f.users[u] = true
	}
	return f
}

func (f *fakeInstalls) Save(ctx context.Context, inst installstore.Installation) error {
	if inst.IsBot {
		f.bot = true
	} else {
		f.users[inst.UserID] = true
	}
	return nil
}

func (f *fakeInstalls) DeleteInstallation(ctx context.Context, enterpriseID, teamID, userID string) error {
	delete(f.users, userID)
	return nil
}

func (f *fakeInstalls) DeleteBot(ctx context.Context, enterpriseID, teamID string) error {
	f.bot = false
	return nil
}

func (f *fakeInstalls) DeleteAll(ctx context.Context, enterpriseID, teamID string) error {
	f.bot = false
	f.users = make(map[string]bool)
	return nil
}

func newConfiguredStore(t *testing.T, teamID string) *tenantconfig.Store {
	t.Helper()
	configs := tenantconfig.NewStore(memory.New(), discardLogger())
	if err := configs.Save(context.Background(), teamID, tenantconfig.Record{APIKey: "sk-x"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return configs
}

func revoked(oauth []string, bot []string) TokensRevoked {
	var ev TokensRevoked
	ev.Tokens.OAuth = oauth
	ev.Tokens.Bot = bot
	return ev
}

func TestTokensRevokedUserOnly(t *testing.T) {
	installs := newFakeInstalls(true, "U1", "U2")
	configs := newConfiguredStore(t, "T1")
	h := NewHandler(installs, configs, discardLogger())
	ctx := context.Background()
	id := tenant.Identity{TeamID: "T1"}

	h.HandleTokensRevoked(ctx, id, revoked([]string{"U1"}, nil))

	if installs.users["U1"] {
		t.Error("U1 grant should be deleted")
	}
	if !installs.users["U2"] {
		t.Error("U2 grant should remain")
	}
	if !installs.bot {
		t.Error("bot grant should remain")
	}
	if got := configs.Load(ctx, "T1").Status; got != tenantconfig.Configured {
		t.Errorf("config status = %v, want Configured: user-only revocation must not purge credentials", got)
	}
}

func TestTokensRevokedBot(t *testing.T) {
	installs := newFakeInstalls(true, "U1")
	configs := newConfiguredStore(t, "T1")
	h := NewHandler(installs, configs, discardLogger())
	ctx := context.Background()
	id := tenant.Identity{TeamID: "T1"}

	h.HandleTokensRevoked(ctx, id, revoked(nil, []string{"B1"}))

	if installs.bot {
		t.Error("bot grant should be deleted")
	}
	if got := configs.Load(ctx, "T1").Status; got != tenantconfig.Unconfigured {
		t.Errorf("config status = %v, want Unconfigured after bot revocation", got)
	}

	// At-least-once delivery: a second identical event is a no-op.
	h.HandleTokensRevoked(ctx, id, revoked(nil, []string{"B1"}))
	if got := configs.Load(ctx, "T1").Status; got != tenantconfig.Unconfigured {
		t.Errorf("config status after redelivery = %v, want Unconfigured", got)
	}
}

func TestAppUninstalled(t *testing.T) {
	installs := newFakeInstalls(true, "U1", "U2")
	configs := newConfiguredStore(t, "T1")
	h := NewHandler(installs, configs, discardLogger())
	ctx := context.Background()
	id := tenant.Identity{TeamID: "T1"}

	h.HandleAppUninstalled(ctx, id)

	if installs.bot || len(installs.users) != 0 {
		t.Errorf("installs remain after uninstall: bot=%v users=%v", installs.bot, installs.users)
	}
	if got := configs.Load(ctx, "T1").Status; got != tenantconfig.Unconfigured {
		t.Errorf("config status = %v, want Unconfigured", got)
	}

	h.HandleAppUninstalled(ctx, id)
	if got := configs.Load(ctx, "T1").Status; got != tenantconfig.Unconfigured {
		t.Errorf("config status after redelivery = %v, want Unconfigured", got)
	}
}
