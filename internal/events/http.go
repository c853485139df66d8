package events

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/tessellate-io/slackwise/internal/tenant"
)

// envelope is the outer shape of an Events API delivery. Signature
// verification happens upstream of this handler.
type envelope struct {
	Type         string          `json:"type"`
	Challenge    string          `json:"challenge,omitempty"`
	TeamID       string          `json:"team_id"`
	EnterpriseID string          `json:"enterprise_id,omitempty"`
	Event        json.RawMessage `json:"event"`
}

type eventHeader struct {
	Type string `json:"type"`
}

// ServeHTTP dispatches Events API deliveries to the lifecycle handlers.
// Unknown event types are acknowledged and dropped; Slack retries
// anything that does not get a 2xx, so the response is 200 even when a
// handler logged failures.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	if env.Type == "url_verification" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"challenge": env.Challenge})
		return
	}

	var header eventHeader
	if len(env.Event) > 0 {
		if err := json.Unmarshal(env.Event, &header); err != nil {
			http.Error(w, "bad event", http.StatusBadRequest)
			return
		}
	}

	id := tenant.Identity{EnterpriseID: env.EnterpriseID, TeamID: env.TeamID}

	switch header.Type {
	case "tokens_revoked":
		var ev TokensRevoked
		if err := json.Unmarshal(env.Event, &ev); err != nil {
			http.Error(w, "bad event", http.StatusBadRequest)
			return
		}
		h.HandleTokensRevoked(r.Context(), id, ev)
	case "app_uninstalled":
		h.HandleAppUninstalled(r.Context(), id)
	default:
		h.logger.Debug("ignoring event", slog.String("type", header.Type))
	}

	w.WriteHeader(http.StatusOK)
}
