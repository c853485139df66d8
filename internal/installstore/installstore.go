// Package installstore defines the contract for the workspace
// installation store. The OAuth install flow that writes these records
// lives outside this service; the revocation handlers only need
// delete-by-scope.
package installstore

import (
	"context"
	"time"
)

// Installation is one installed grant: a bot grant for the workspace or a
// user-scoped token grant.
type Installation struct {
	EnterpriseID string
	TeamID       string
	UserID       string
	IsBot        bool
	BotToken     string
	UserToken    string
	InstalledAt  time.Time
}

// Store persists installations keyed by (enterprise, team, user) and
// supports the scoped deletes the revocation lifecycle needs. All deletes
// are idempotent: removing what is already gone is success.
type Store interface {
	Save(ctx context.Context, inst Installation) error
	// DeleteInstallation removes the user-scoped grant for one user.
	DeleteInstallation(ctx context.Context, enterpriseID, teamID, userID string) error
	// DeleteBot removes the workspace's bot grant.
	DeleteBot(ctx context.Context, enterpriseID, teamID string) error
	// DeleteAll removes every grant for the workspace, all scopes.
	DeleteAll(ctx context.Context, enterpriseID, teamID string) error
}
