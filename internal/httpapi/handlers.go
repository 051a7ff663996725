// Package httpapi is the HTTP surface: routing, the response envelope, the
// access-control guard and the middleware chain.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"streetpoints.org/internal/ledger"
	"streetpoints.org/internal/obs"
	"streetpoints.org/internal/session"
	"streetpoints.org/internal/stream"
)

// ReadyProbe reports readiness, e.g. by pinging the database.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options wires the API to its collaborators.
type Options struct {
	Sessions *session.Service
	Cookies  *session.CookieWriter
	Ledger   ledger.Service
	Stream   *stream.Stream

	ReadyProbe   ReadyProbe
	Version      string
	ClientOrigin string

	RateBurst     int
	RatePerSecond int
	MaxBodyBytes  int64
}

// API is the HTTP layer.
type API struct {
	mux      *http.ServeMux
	sessions *session.Service
	cookies  *session.CookieWriter
	ledger   ledger.Service
	stream   *stream.Stream

	readyProbe   ReadyProbe
	version      string
	clientOrigin string

	rateBurst     int
	ratePerSecond int
	maxBodyBytes  int64
}

func New(opts Options) *API {
	a := &API{
		mux:           http.NewServeMux(),
		sessions:      opts.Sessions,
		cookies:       opts.Cookies,
		ledger:        opts.Ledger,
		stream:        opts.Stream,
		readyProbe:    opts.ReadyProbe,
		version:       opts.Version,
		clientOrigin:  opts.ClientOrigin,
		rateBurst:     opts.RateBurst,
		ratePerSecond: opts.RatePerSecond,
		maxBodyBytes:  opts.MaxBodyBytes,
	}
	if a.maxBodyBytes <= 0 {
		a.maxBodyBytes = 1 << 20
	}

	// Session endpoints.
	a.mux.HandleFunc("POST /api/auth/login", a.handleLogin)
	a.mux.HandleFunc("POST /api/auth/logout", a.handleLogout)
	a.mux.HandleFunc("POST /api/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("GET /api/auth/me", a.requireAuth(a.handleMe))
	a.mux.HandleFunc("GET /api/auth/verify", a.requireAuth(a.handleMe))

	// Beneficiaries. QR lookup is public: kiosk screens scan without a session.
	a.mux.HandleFunc("GET /api/homeless/{qrCode}", a.handleBeneficiaryByQR)
	a.mux.HandleFunc("GET /api/homeless",
		a.requireAuth(a.requireRole(a.handleBeneficiaries, ngoRoles...)))
	a.mux.HandleFunc("PATCH /api/homeless/{id}/balance", a.requireAuth(a.handleUpdateBalance))

	// Partner stores.
	a.mux.HandleFunc("GET /api/store/{qrCode}", a.handleStoreByQR)
	a.mux.HandleFunc("GET /api/store",
		a.requireAuth(a.requireRole(a.handleStores, ngoRoles...)))

	// Debits.
	a.mux.HandleFunc("POST /api/transaction",
		a.requireAuth(a.requireRole(a.handleDebit, debitRoles...)))
	a.mux.HandleFunc("GET /api/transaction", a.requireAuth(a.handleTransactions))

	// Live debit feed.
	a.mux.HandleFunc("GET /api/events",
		a.requireAuth(a.requireRole(a.handleEvents, ngoRoles...)))

	// Ops endpoints.
	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	a.mux.HandleFunc("GET /readyz", a.handleReadyz)
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusNotFound, "not found")
	})

	return a
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = RateLimit(h, a.rateBurst, a.ratePerSecond)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = CORS(h, a.clientOrigin)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "streetpoints-api",
		"version": a.version,
	})
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// envelope is the uniform response shape the browser client consumes.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	User    any    `json:"user,omitempty"`
	Expired bool   `json:"expired,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, envelope{Success: true, Data: data})
}

func writeUser(w http.ResponseWriter, code int, message string, user any) {
	writeJSON(w, code, envelope{Success: true, Message: message, User: user})
}

func writeMessage(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Success: true, Message: message})
}

func writeFailure(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Success: false, Message: message})
}

// writeExpired flags the failure so the client triggers a silent refresh.
func writeExpired(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: message, Expired: true})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
