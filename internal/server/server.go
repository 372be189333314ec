// Package server exposes a trained tokenizer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/example/go-bytepair/internal/config"
	"github.com/example/go-bytepair/internal/tokenizer"
)

// Codec encodes and decodes text against a fixed vocabulary.
type Codec interface {
	Encode(text string) []tokenizer.Code
	Decode(codes []tokenizer.Code) (string, error)
	Vocabulary() *tokenizer.Vocabulary
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes int
	workers      int
	logger       *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes: 1 << 20,
		workers:      4,
		logger:       slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes for POST /encode
// and for the expanded output of POST /decode. The decode request body is
// capped at four times this value.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithWorkers sets the maximum number of concurrent encode and decode
// calls. Zero disables the limit.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

type handler struct {
	codec Codec
	opts  options
	sem   chan struct{} // semaphore for worker pool
	log   *slog.Logger
}

// NewHandler returns an http.Handler that serves /health, /vocab, POST /encode
// and POST /decode.
func NewHandler(codec Codec, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		codec: codec,
		opts:  opts,
		log:   opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/vocab", h.handleVocab)
	mux.HandleFunc("/encode", h.handleEncode)
	mux.HandleFunc("/decode", h.handleDecode)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

type vocabResponse struct {
	Size      int   `json:"size"`
	Merges    int   `json:"merges"`
	NextCode  int64 `json:"next_code"`
	ByteCodes int   `json:"byte_codes"`
}

func (h *handler) handleVocab(w http.ResponseWriter, _ *http.Request) {
	v := h.codec.Vocabulary()
	writeJSON(w, http.StatusOK, vocabResponse{
		Size:      v.Len(),
		Merges:    v.Merges(),
		NextCode:  int64(v.NextCode()),
		ByteCodes: v.Len() - v.Merges(),
	})
}

type encodeRequest struct {
	Text string `json:"text"`
}

type encodeResponse struct {
	Codes  []tokenizer.Code `json:"codes"`
	Tokens int              `json:"tokens"`
}

func (h *handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	if !h.requirePost(w, r) {
		return
	}

	var req encodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if len(req.Text) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	release, ok := h.acquire(w, r)
	if !ok {
		return
	}
	defer release()

	start := time.Now()
	codes := h.codec.Encode(req.Text)
	if codes == nil {
		codes = []tokenizer.Code{}
	}

	h.log.InfoContext(r.Context(), "encode complete",
		slog.Int("text_len", len(req.Text)),
		slog.Int("tokens", len(codes)),
		slog.Int64("duration_us", time.Since(start).Microseconds()),
	)

	writeJSON(w, http.StatusOK, encodeResponse{Codes: codes, Tokens: len(codes)})
}

type decodeRequest struct {
	Codes []tokenizer.Code `json:"codes"`
}

type decodeResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func (h *handler) handleDecode(w http.ResponseWriter, r *http.Request) {
	if !h.requirePost(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(h.opts.maxTextBytes)*4)

	var req decodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if n := h.codec.Vocabulary().DecodedLen(req.Codes); n > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("codes expand to %d bytes, maximum is %d", n, h.opts.maxTextBytes))
		return
	}

	release, ok := h.acquire(w, r)
	if !ok {
		return
	}
	defer release()

	text, err := h.codec.Decode(req.Codes)
	if errors.Is(err, tokenizer.ErrDecodeTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	if err != nil {
		h.log.WarnContext(r.Context(), "decode failed",
			slog.Int("codes", len(req.Codes)),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusUnprocessableEntity, decodeResponse{Text: text, Error: err.Error()})
		return
	}

	h.log.InfoContext(r.Context(), "decode complete",
		slog.Int("codes", len(req.Codes)),
		slog.Int("text_len", len(text)),
	)

	writeJSON(w, http.StatusOK, decodeResponse{Text: text})
}

func (h *handler) requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}

	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return false
	}
	return true
}

// acquire takes a worker slot, honouring request cancellation while
// waiting. The returned func releases the slot.
func (h *handler) acquire(w http.ResponseWriter, r *http.Request) (func(), bool) {
	if h.sem == nil {
		return func() {}, true
	}

	select {
	case h.sem <- struct{}{}:
		return func() { <-h.sem }, true
	case <-r.Context().Done():
		writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
		return nil, false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	codec           Codec
	shutdownTimeout time.Duration
}

func New(cfg config.Config, codec Codec) *Server {
	return &Server{
		cfg:             cfg,
		codec:           codec,
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s.codec == nil {
		return errors.New("server: no codec")
	}

	h := NewHandler(s.codec,
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithLogger(slog.Default()),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	slog.Info("server listening", "addr", s.cfg.Server.ListenAddr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

// ProbeHTTP checks GET /health on addr.
func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
