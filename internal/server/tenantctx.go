package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tessellate-io/slackwise/internal/config"
	"github.com/tessellate-io/slackwise/internal/tenant"
	"github.com/tessellate-io/slackwise/internal/tenantconfig"
)

// maxPeekBytes bounds how much of a request body the resolver will read
// while extracting the workspace identity.
const maxPeekBytes = 1 << 20

// RequestInfo is what the enrichment middleware needs to know about an
// inbound request before any handler runs.
type RequestInfo struct {
	Identity tenant.Identity
	Locale   string
}

// Resolver extracts the workspace identity from an inbound request.
type Resolver func(r *http.Request) RequestInfo

// ResolveSlackRequest is the default resolver. It peeks at the request
// body — a JSON event envelope or a form-encoded interaction payload —
// and restores it for the handler. A request it cannot make sense of
// resolves to an empty identity, which enriches as unconfigured.
func ResolveSlackRequest(r *http.Request) RequestInfo {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes))
	if err != nil {
		return RequestInfo{}
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		return resolveInteraction(body)
	}
	return resolveEvent(body)
}

func resolveEvent(body []byte) RequestInfo {
	var env struct {
		TeamID       string `json:"team_id"`
		EnterpriseID string `json:"enterprise_id"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return RequestInfo{}
	}
	return RequestInfo{Identity: tenant.Identity{
		EnterpriseID: env.EnterpriseID,
		TeamID:       env.TeamID,
	}}
}

func resolveInteraction(body []byte) RequestInfo {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return RequestInfo{}
	}

	var payload struct {
		Team struct {
			ID           string `json:"id"`
			EnterpriseID string `json:"enterprise_id"`
		} `json:"team"`
		User struct {
			ID     string `json:"id"`
			Locale string `json:"locale"`
		} `json:"user"`
	}
	if err := json.Unmarshal([]byte(values.Get("payload")), &payload); err != nil {
		return RequestInfo{}
	}
	return RequestInfo{
		Identity: tenant.Identity{
			EnterpriseID: payload.Team.EnterpriseID,
			TeamID:       payload.Team.ID,
			UserID:       payload.User.ID,
		},
		Locale: payload.User.Locale,
	}
}

// TenantConfigMiddleware loads the workspace credential record and builds
// the immutable per-request tenant context. It fails open: a missing
// record, a decode problem, or a blob store outage all degrade the
// request to "unconfigured" rather than aborting it, and the static
// connection settings are populated either way.
func TenantConfigMiddleware(store *tenantconfig.Store, static config.OpenAIConfig, logger *slog.Logger, resolve Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := resolve(r)

			tc := tenant.Static(static)
			tc.Locale = info.Locale

			if teamID := info.Identity.TeamID; teamID != "" {
				res := store.Load(r.Context(), teamID)
				switch res.Status {
				case tenantconfig.Configured:
					tc.APIKey = res.Record.APIKey
					tc.Model = res.Record.Model
					tc.ImageGenerationModel = res.Record.ImageGenerationModel
					tc.Temperature = static.Temperature
					if tc.Model == "" {
						tc.Model = static.Model
					}
					if tc.ImageGenerationModel == "" {
						tc.ImageGenerationModel = static.ImageGenerationModel
					}
					if res.Record.Temperature != nil {
						tc.Temperature = *res.Record.Temperature
					}
				case tenantconfig.StoreError:
					logger.Warn("credential load failed, continuing unconfigured",
						slog.String("request_id", GetRequestID(r.Context())),
						slog.String("team_id", teamID),
						slog.String("error", res.Err.Error()),
					)
				}
			}

			next.ServeHTTP(w, r.WithContext(tenant.WithContext(r.Context(), tc)))
		})
	}
}
