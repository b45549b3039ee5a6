package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"customshipping/internal/db"
	"customshipping/internal/logging"
	"customshipping/internal/rate"
	"customshipping/internal/validation"
)

const (
	errCalculate      = "CALCULATE_ERR"
	errInvalidJSON    = "INVALID_JSON"
	errInvalidParams  = "INVALID_PARAMS"
	defaultMaxBody    = 1 << 20
	quoteRecordBudget = 2 * time.Second
)

// QuoteStore records calculated quotes. *db.QuoteLog implements it.
type QuoteStore interface {
	Record(ctx context.Context, q db.Quote) error
	Get(ctx context.Context, id uuid.UUID) (db.Quote, error)
}

type Options struct {
	Logger       *zap.Logger
	Quotes       QuoteStore // optional
	MaxBodyBytes int64
}

type Server struct {
	calc     *rate.Calculator
	validate *validation.Validator
	quotes   QuoteStore
	log      *zap.Logger
	maxBody  int64
}

func New(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	s := &Server{
		calc:     rate.NewCalculator(log.Named("rate")),
		validate: validation.New(),
		quotes:   opts.Quotes,
		log:      log,
		maxBody:  maxBody,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(logging.Middleware(log.Named("http")))
	r.Get("/healthz", s.handleHealth)
	r.Post("/ecom/modules/calculate-shipping", s.handleCalculateShipping)
	r.Get("/quotes/{id}", s.handleGetQuote)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleCalculateShipping(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	var req rate.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorJSON(w, http.StatusRequestEntityTooLarge, errInvalidJSON, "request body too large")
			return
		}
		writeErrorJSON(w, http.StatusBadRequest, errInvalidJSON, "invalid json")
		return
	}

	cfg, err := rate.MergeConfig(req.Application)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, errInvalidParams, err.Error())
		return
	}
	if err := s.validate.MerchantConfig(&cfg); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, errInvalidParams, "application: "+err.Error())
		return
	}
	if err := s.validate.Params(&req.Params); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, errInvalidParams, "params: "+err.Error())
		return
	}

	resp, err := s.calc.Calculate(cfg, req.Params)
	if err != nil {
		if errors.Is(err, rate.ErrOriginUnresolved) {
			writeErrorJSON(w, http.StatusBadRequest, errCalculate, err.Error())
			return
		}
		s.log.Error("calculate shipping", zap.Error(err))
		writeErrorJSON(w, http.StatusInternalServerError, errCalculate, "calculation failed")
		return
	}

	if id, ok := s.recordQuote(r.Context(), w.Header().Get("X-Request-ID"), req.Params, resp); ok {
		w.Header().Set("X-Quote-ID", id.String())
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// recordQuote stores the calculation in the quote log. A failing log never
// fails the calculation.
func (s *Server) recordQuote(ctx context.Context, requestID string, params rate.Params, resp *rate.Response) (uuid.UUID, bool) {
	if s.quotes == nil {
		return uuid.Nil, false
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		s.log.Warn("marshal quote params", zap.Error(err))
		return uuid.Nil, false
	}
	respJSON, err := json.Marshal(resp)
	if err != nil {
		s.log.Warn("marshal quote response", zap.Error(err))
		return uuid.Nil, false
	}
	q := db.Quote{
		ID:               uuid.New(),
		RequestID:        requestID,
		DestinationZip:   rate.NewDestination(params.To).Zip,
		ServiceCount:     len(resp.ShippingServices),
		FreeShippingFrom: resp.FreeShippingFromValue,
		Params:           paramsJSON,
		Response:         respJSON,
		CreatedAt:        time.Now().UTC(),
	}
	ctx, cancel := context.WithTimeout(ctx, quoteRecordBudget)
	defer cancel()
	if err := s.quotes.Record(ctx, q); err != nil {
		s.log.Warn("record quote", zap.Error(err), zap.String("request_id", requestID))
		return uuid.Nil, false
	}
	return q.ID, true
}

func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "invalid quote id")
		return
	}
	if s.quotes == nil {
		writeErrorJSON(w, http.StatusServiceUnavailable, "quote_log_disabled", "quote log is not configured")
		return
	}
	q, err := s.quotes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrQuoteNotFound) {
			writeErrorJSON(w, http.StatusNotFound, "resource_not_found", "quote not found")
			return
		}
		s.log.Error("get quote", zap.Error(err), zap.String("quote_id", id.String()))
		writeErrorJSON(w, http.StatusInternalServerError, "db_error", "db error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(q)
}

// writeErrorJSON writes the module error body:
// {"error": code, "message": message}
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}

// requestIDMiddleware ensures X-Request-ID is set on the response.
// If provided in the request header, it is propagated; otherwise a UUID is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if rid == "" {
			rid = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r)
	})
}
