// Package events reacts to Slack lifecycle notifications: partial or full
// token revocation and app uninstall. All cleanup here is best effort and
// idempotent — events are delivered at least once, and one workspace's
// failure must never abort another's cleanup.
package events

import (
	"context"
	"log/slog"

	"github.com/tessellate-io/slackwise/internal/installstore"
	"github.com/tessellate-io/slackwise/internal/tenant"
	"github.com/tessellate-io/slackwise/internal/tenantconfig"
)

// TokensRevoked is the tokens_revoked event payload: user ids whose
// user-scoped tokens were revoked, and bot user ids if the bot token
// itself was revoked.
type TokensRevoked struct {
	Tokens struct {
		OAuth []string `json:"oauth"`
		Bot   []string `json:"bot"`
	} `json:"tokens"`
}

// Handler owns the cascading deletes across the install store and the
// workspace credential store.
type Handler struct {
	installs installstore.Store
	configs  *tenantconfig.Store
	logger   *slog.Logger
}

// NewHandler creates the revocation handler.
func NewHandler(installs installstore.Store, configs *tenantconfig.Store, logger *slog.Logger) *Handler {
	return &Handler{
		installs: installs,
		configs:  configs,
		logger:   logger,
	}
}

// HandleTokensRevoked removes the install record of every revoked user
// token. When the bot token itself was revoked, the workspace's bot
// install record and its credential record are removed too — a user-only
// revocation leaves the credential record alone. The two stores are
// independent; a failure in one does not stop the other, and the
// resulting partial state is an accepted inconsistency window.
func (h *Handler) HandleTokensRevoked(ctx context.Context, id tenant.Identity, ev TokensRevoked) {
	for _, userID := range ev.Tokens.OAuth {
		if err := h.installs.DeleteInstallation(ctx, id.EnterpriseID, id.TeamID, userID); err != nil {
			h.logger.Error("failed to delete user installation",
				slog.String("team_id", id.TeamID),
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	if len(ev.Tokens.Bot) == 0 {
		return
	}

	if err := h.installs.DeleteBot(ctx, id.EnterpriseID, id.TeamID); err != nil {
		h.logger.Error("failed to delete bot installation",
			slog.String("team_id", id.TeamID),
			slog.String("error", err.Error()),
		)
	}
	// Store.Delete logs its own failures; cleanup carries on regardless.
	h.configs.Delete(ctx, id.TeamID)

	h.logger.Info("bot token revoked, workspace state purged",
		slog.String("team_id", id.TeamID),
	)
}

// HandleAppUninstalled removes every install record for the workspace and
// its credential record unconditionally.
func (h *Handler) HandleAppUninstalled(ctx context.Context, id tenant.Identity) {
	if err := h.installs.DeleteAll(ctx, id.EnterpriseID, id.TeamID); err != nil {
		h.logger.Error("failed to delete workspace installations",
			slog.String("team_id", id.TeamID),
			slog.String("error", err.Error()),
		)
	}
	h.configs.Delete(ctx, id.TeamID)

	h.logger.Info("app uninstalled, workspace state purged",
		slog.String("team_id", id.TeamID),
	)
}
