package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jsonata-lang/jsonata"
	jerrors "github.com/jsonata-lang/jsonata/compiler/errors"
	"github.com/jsonata-lang/jsonata/runtime/value"
)

// Limits bound each evaluation handled by the service
type Limits struct {
	MaxDepth  int
	TimeLimit time.Duration
}

// DefaultLimits are conservative bounds for a shared service
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:  1000,
		TimeLimit: 5 * time.Second,
	}
}

// EvaluateRequest is the POST /evaluate request body
type EvaluateRequest struct {
	Expression string                 `json:"expression"`
	Input      json.RawMessage        `json:"input,omitempty"`
	Bindings   map[string]interface{} `json:"bindings,omitempty"`
}

// EvaluateResponse is the POST /evaluate response body
type EvaluateResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ErrorBody      `json:"error,omitempty"`
}

// ErrorBody carries a coded evaluation error to the client
type ErrorBody struct {
	Code     string `json:"code"`
	Position int    `json:"position,omitempty"`
	Message  string `json:"message"`
}

// NewHandler builds the service router
func NewHandler(logger *zap.Logger, limits Limits) http.Handler {
	h := &handler{logger: logger, limits: limits}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", h.health)
	r.Post("/evaluate", h.evaluate)
	return r
}

type handler struct {
	logger *zap.Logger
	limits Limits
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *handler) evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("malformed request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, EvaluateResponse{
			Error: &ErrorBody{Code: "S0500", Message: "malformed request body: " + err.Error()},
		})
		return
	}
	if req.Expression == "" {
		writeJSON(w, http.StatusBadRequest, EvaluateResponse{
			Error: &ErrorBody{Code: "S0500", Message: "expression is required"},
		})
		return
	}

	start := time.Now()
	expr, err := jsonata.New(req.Expression)
	if err != nil {
		h.writeError(w, req.Expression, err)
		return
	}

	for name, binding := range req.Bindings {
		v, err := value.FromGo(expr.Arena(), binding)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, EvaluateResponse{
				Error: &ErrorBody{Code: "S0500", Message: "invalid binding " + name + ": " + err.Error()},
			})
			return
		}
		expr.AssignVar(name, v)
	}

	result, err := expr.EvaluateTimeboxed(string(req.Input), h.limits.MaxDepth, h.limits.TimeLimit)
	if err != nil {
		h.writeError(w, req.Expression, err)
		return
	}

	out := value.Serialize(result, false)
	if out == "" {
		// no result: an expression can legitimately evaluate to nothing
		out = "null"
	}

	h.logger.Info("evaluated expression",
		zap.Int("expression_length", len(req.Expression)),
		zap.Duration("elapsed", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, EvaluateResponse{Result: json.RawMessage(out)})
}

func (h *handler) writeError(w http.ResponseWriter, expression string, err error) {
	body := &ErrorBody{Code: "U0000", Position: -1, Message: err.Error()}
	if coded, ok := err.(*jerrors.Error); ok {
		body.Code = coded.Code
		body.Position = coded.Position
		body.Message = coded.Message
	}

	status := http.StatusUnprocessableEntity
	if jerrors.Phase(body.Code) == "static" {
		status = http.StatusBadRequest
	}

	h.logger.Info("evaluation failed",
		zap.String("code", body.Code),
		zap.Int("expression_length", len(expression)),
	)
	writeJSON(w, status, EvaluateResponse{Error: body})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
