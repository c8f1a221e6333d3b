package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"insideredge/internal/domain/fivefactor"
	"insideredge/internal/domain/optionsflow"
	"insideredge/internal/ingest"
	"insideredge/internal/services/options"
	"insideredge/pkg/errors"
	"insideredge/pkg/logger"
)

// maxRequestBody bounds POSTed alert batches
const maxRequestBody = 8 << 20

// OptionsService is the analytics surface served over HTTP
type OptionsService interface {
	AnalyzeFlow(ctx context.Context, req options.FlowRequest) (*optionsflow.Report, error)
	BuildFiveFactors(ctx context.Context, ticker string, refresh bool) (*fivefactor.Snapshot, error)
	Overview(ctx context.Context, ticker string, refresh bool) (*options.Overview, error)
}

// OptionsHandler serves flow reports and five-factor snapshots
type OptionsHandler struct {
	svc OptionsService
	log *logger.Logger
}

// NewOptionsHandler creates a new options HTTP handler
func NewOptionsHandler(svc OptionsService, log *logger.Logger) *OptionsHandler {
	return &OptionsHandler{svc: svc, log: log.Component("options_api")}
}

// SnapshotResponse makes the absent snapshot explicit
type SnapshotResponse struct {
	Ticker   string               `json:"ticker"`
	HasData  bool                 `json:"has_data"`
	Snapshot *fivefactor.Snapshot `json:"snapshot"`
}

// AnalyzeAlertsRequest is the body of POST /api/v1/options/flow
type AnalyzeAlertsRequest struct {
	Ticker            string          `json:"ticker"`
	Alerts            []ingest.Record `json:"alerts"`
	MinClusterPremium float64         `json:"min_cluster_premium"`
	Limit             int             `json:"limit"`
	MinAction         string          `json:"min_action"`
}

// Flow handles GET /api/v1/options/{ticker}/flow
func (h *OptionsHandler) Flow(w http.ResponseWriter, r *http.Request) {
	opts, err := flowOptions(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	report, err := h.svc.AnalyzeFlow(r.Context(), options.FlowRequest{
		Ticker:  mux.Vars(r)["ticker"],
		Options: opts,
		Refresh: refresh(r),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// AnalyzeAlerts handles POST /api/v1/options/flow with caller-supplied alerts
func (h *OptionsHandler) AnalyzeAlerts(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeAlertsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_body", "request body must be a JSON object")
		return
	}

	if len(body.Alerts) == 0 {
		writeError(w, r, http.StatusBadRequest, "invalid_body", "alerts must not be empty")
		return
	}

	action, err := parseAction(body.MinAction)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	// Rows that do not normalize must not read as "no activity"
	alerts := ingest.Alerts(body.Alerts)
	if len(alerts) == 0 {
		writeError(w, r, http.StatusBadRequest, "invalid_body", "no alert has a ticker and a call/put type")
		return
	}

	report, err := h.svc.AnalyzeFlow(r.Context(), options.FlowRequest{
		Ticker: body.Ticker,
		Alerts: alerts,
		Options: optionsflow.Options{
			MinClusterPremium: body.MinClusterPremium,
			Limit:             body.Limit,
			MinAction:         action,
		},
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// FiveFactors handles GET /api/v1/options/{ticker}/five-factors
func (h *OptionsHandler) FiveFactors(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	snapshot, err := h.svc.BuildFiveFactors(r.Context(), ticker, refresh(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SnapshotResponse{
		Ticker:   ticker,
		HasData:  snapshot != nil,
		Snapshot: snapshot,
	})
}

// Overview handles GET /api/v1/options/{ticker}/overview
func (h *OptionsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.Overview(r.Context(), mux.Vars(r)["ticker"], refresh(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

// fail maps service errors to HTTP statuses. An upstream fetch failure is a
// 502, never an empty 200.
func (h *OptionsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errors.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, errors.ErrFetchFailed):
		h.log.Errorw("Row fetch failed", "request_id", requestID(r), "error", err)
		writeError(w, r, http.StatusBadGateway, "fetch_failed", "upstream data could not be loaded")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		h.log.Errorw("Request failed", "request_id", requestID(r), "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func flowOptions(r *http.Request) (optionsflow.Options, error) {
	q := r.URL.Query()
	var opts optionsflow.Options
	var err error

	if opts.MinClusterPremium, err = floatParam(q.Get("min_cluster_premium")); err != nil {
		return opts, errors.Wrap(err, "min_cluster_premium")
	}
	if opts.MinRowPremium, err = floatParam(q.Get("min_row_premium")); err != nil {
		return opts, errors.Wrap(err, "min_row_premium")
	}
	if v := q.Get("lookback"); v != "" {
		if opts.Lookback, err = time.ParseDuration(v); err != nil {
			return opts, errors.Wrap(err, "lookback")
		}
	}
	if v := q.Get("limit"); v != "" {
		if opts.Limit, err = strconv.Atoi(v); err != nil {
			return opts, errors.Wrap(err, "limit")
		}
	}
	if v := q.Get("fetch_limit"); v != "" {
		if opts.FetchLimit, err = strconv.Atoi(v); err != nil {
			return opts, errors.Wrap(err, "fetch_limit")
		}
	}
	if opts.MinAction, err = parseAction(q.Get("min_action")); err != nil {
		return opts, err
	}
	return opts, nil
}

func floatParam(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

func parseAction(v string) (optionsflow.Action, error) {
	switch a := optionsflow.Action(strings.ToUpper(v)); a {
	case "", optionsflow.ActionIgnore, optionsflow.ActionWatch, optionsflow.ActionInvestigate:
		return a, nil
	default:
		return "", errors.Wrapf(errors.ErrInvalidInput, "unknown min_action %q", v)
	}
}

func refresh(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return v
}

// ErrorResponse is the standard error body
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Code:      code,
		Message:   message,
		RequestID: requestID(r),
		Timestamp: time.Now().UTC(),
	})
}
