package tenant

import (
	"context"

	"github.com/tessellate-io/slackwise/internal/config"
)

// Identity names the owning scope of install and credential records.
// Credential records are keyed by team id only; install records may be
// further scoped by user id.
type Identity struct {
	EnterpriseID string
	TeamID       string
	UserID       string
}

// Context is the per-request projection of a workspace's credentials plus
// the static process-wide connection settings. It is built once by the
// enrichment middleware and passed down immutably; it is never persisted
// and never authoritative — the blob store is.
type Context struct {
	APIKey               string
	Model                string
	ImageGenerationModel string
	Temperature          float64
	Locale               string

	APIType                string
	APIBase                string
	APIVersion             string
	DeploymentID           string
	OrgID                  string
	FunctionCallModuleName string
}

// Configured reports whether the workspace has a usable credential. An
// empty key means the tenant has not set one up yet; handlers degrade
// rather than fail.
func (c Context) Configured() bool {
	return c.APIKey != ""
}

// Static returns a Context carrying only the process-wide connection
// settings, as used for unconfigured workspaces.
func Static(cfg config.OpenAIConfig) Context {
	return Context{
		APIType:                cfg.APIType,
		APIBase:                cfg.APIBase,
		APIVersion:             cfg.APIVersion,
		DeploymentID:           cfg.DeploymentID,
		OrgID:                  cfg.OrgID,
		FunctionCallModuleName: cfg.FunctionCallModuleName,
	}
}

type contextKey struct{}

// WithContext returns a copy of ctx carrying the tenant context.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext extracts the tenant context set by the enrichment
// middleware. The zero value is returned when no middleware ran.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(Context)
	return tc, ok
}
