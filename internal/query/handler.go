package query

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-logr/logr"
)

// maxBodyBytes bounds the request body.
const maxBodyBytes = 1 << 20

// corsHeaders are sent on every response.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Headers": "*",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "OPTIONS,POST,GET",
}

type request struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves queries over HTTP and API Gateway.
type Handler struct {
	querier Querier
	log     logr.Logger
}

// NewHandler creates a query handler.
func NewHandler(q Querier, log logr.Logger) *Handler {
	return &Handler{querier: q, log: log}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var (
		status  int
		payload any
	)
	if err != nil {
		status, payload = h.fail(fmt.Errorf("failed to read request body: %w", err))
	} else {
		status, payload = h.handle(r.Context(), body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error(err, "failed to write response")
	}
}

// handle runs one query. It never panics and never returns an error; any
// failure becomes a 500 with an error body.
func (h *Handler) handle(ctx context.Context, body []byte) (status int, payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			status, payload = h.fail(fmt.Errorf("panic: %v", rec))
		}
	}()

	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		return h.fail(fmt.Errorf("invalid request body: %w", err))
	}
	h.log.V(1).Info("received query", "query", req.Query)

	answer, err := h.querier.Query(ctx, req.Query)
	if err != nil {
		return h.fail(err)
	}
	h.log.Info("answered query", "citations", len(answer.Citations))
	return http.StatusOK, answer
}

func (h *Handler) fail(err error) (int, any) {
	h.log.Error(err, "query failed")
	return http.StatusInternalServerError, errorResponse{Error: err.Error()}
}
