package configure

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tessellate-io/slackwise/internal/tenant"
)

// callbackID identifies the credential modal among view submissions.
const callbackID = "configure"

// viewSubmissionPayload is the slice of Slack's interaction payload this
// handler reads. Signature verification happens upstream.
type viewSubmissionPayload struct {
	Type string `json:"type"`
	Team struct {
		ID string `json:"id"`
	} `json:"team"`
	User struct {
		ID string `json:"id"`
	} `json:"user"`
	View struct {
		CallbackID string `json:"callback_id"`
		State      struct {
			Values map[string]map[string]blockValue `json:"values"`
		} `json:"state"`
	} `json:"view"`
}

type blockValue struct {
	Value          string `json:"value"`
	SelectedOption struct {
		Value string `json:"value"`
	} `json:"selected_option"`
}

// parseSubmission pulls the api key input and the selected model out of
// the modal state.
func parseSubmission(p *viewSubmissionPayload) (Submission, error) {
	values := p.View.State.Values

	key, ok := values[FieldAPIKey]
	if !ok {
		return Submission{}, fmt.Errorf("missing %s block", FieldAPIKey)
	}
	model, ok := values[FieldModel]
	if !ok {
		return Submission{}, fmt.Errorf("missing %s block", FieldModel)
	}

	sub := Submission{
		APIKey: key["input"].Value,
		Model:  model["input"].SelectedOption.Value,
	}
	if sub.APIKey == "" {
		return Submission{}, fmt.Errorf("empty %s value", FieldAPIKey)
	}
	if sub.Model == "" {
		return Submission{}, fmt.Errorf("empty %s value", FieldModel)
	}
	return sub, nil
}

// Handler serves the interactivity endpoint for the credential modal. The
// HTTP response is the ack: an errors response_action re-opens the modal
// with field messages, an empty 200 closes it. Persistence happens after
// the response, on the flow's commit goroutine.
type Handler struct {
	flow   *Flow
	logger *slog.Logger
}

// NewHandler creates the interactivity handler.
func NewHandler(flow *Flow, logger *slog.Logger) *Handler {
	return &Handler{flow: flow, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	var payload viewSubmissionPayload
	if err := json.Unmarshal([]byte(r.FormValue("payload")), &payload); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	if payload.Type != "view_submission" || payload.View.CallbackID != callbackID {
		// Not ours; acknowledge so Slack stops retrying.
		w.WriteHeader(http.StatusOK)
		return
	}

	sub, err := parseSubmission(&payload)
	if err != nil {
		h.logger.Warn("malformed credential submission",
			slog.String("team_id", payload.Team.ID),
			slog.String("error", err.Error()),
		)
		w.WriteHeader(http.StatusOK)
		return
	}

	// The enrichment middleware already resolved the currently active
	// credential; rejection messages are localized with it.
	active, _ := tenant.FromContext(r.Context())

	result := h.flow.Validate(r.Context(), active, sub)
	if !result.Accepted {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"response_action": "errors",
			"errors":          result.FieldErrors,
		})
		return
	}

	h.flow.ScheduleCommit(r.Context(), payload.Team.ID, sub)
	w.WriteHeader(http.StatusOK)
}
