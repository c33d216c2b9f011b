package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
)

const proxyPath = "/attendance"

// Forwarder performs the raw upstream attendance call.
type Forwarder interface {
	Forward(ctx context.Context, creds attendance.Credentials, cycle string) (int, []byte, error)
}

type ProxyHandler interface {
	Forward(w http.ResponseWriter, r *http.Request)
	Preflight(w http.ResponseWriter, r *http.Request)
	MethodNotAllowed(w http.ResponseWriter, r *http.Request)
	NotFound(w http.ResponseWriter, r *http.Request)
}

type proxyHandlerImpl struct {
	forwarder Forwarder
}

func NewProxyHandler(forwarder Forwarder) ProxyHandler {
	return &proxyHandlerImpl{forwarder: forwarder}
}

type proxyError struct {
	Error string `json:"error"`
}

func writeProxyJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Forward relays GET /attendance?emCode=&cycle= with the caller's
// Authorization header and returns the upstream body as-is.
func (h *proxyHandlerImpl) Forward(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	creds := attendance.Credentials{
		EmCode:        query.Get("emCode"),
		Authorization: r.Header.Get("Authorization"),
	}
	cycle := query.Get("cycle")

	status, body, err := h.forwarder.Forward(r.Context(), creds, cycle)
	if err != nil {
		slog.Warn("Proxy request failed", "em_code", creds.EmCode, "cycle", cycle, "error", err)
		if status == 0 {
			status = http.StatusInternalServerError
		}
		writeProxyJSON(w, status, proxyError{Error: err.Error()})
		return
	}

	if status < 200 || status > 299 {
		writeProxyJSON(w, status, proxyError{Error: fmt.Sprintf("Request failed with status code %d", status)})
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Preflight implements ProxyHandler.
func (h *proxyHandlerImpl) Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// MethodNotAllowed implements ProxyHandler.
func (h *proxyHandlerImpl) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeProxyJSON(w, http.StatusMethodNotAllowed, proxyError{Error: "Method not allowed."})
}

// NotFound implements ProxyHandler.
func (h *proxyHandlerImpl) NotFound(w http.ResponseWriter, r *http.Request) {
	writeProxyJSON(w, http.StatusNotFound, proxyError{Error: "Not found."})
}

// NewProxyRouter serves only the forwarding endpoint, open to any origin.
func NewProxyRouter(h ProxyHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{"GET", "OPTIONS"},
		AllowedHeaders:     []string{"Content-Type", "Authorization"},
		OptionsPassthrough: true,
	}))
	r.Use(chiMiddleware.Recoverer)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get(proxyPath, h.Forward)
	r.Options(proxyPath, h.Preflight)

	return r
}
