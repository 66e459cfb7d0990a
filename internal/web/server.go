// Package web exposes a read-only HTTP surface over the ledger: scalar
// queries and an SSE stream tailing the event log. Mutations stay off the
// wire; caller identity belongs to the embedding transport layer.
package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/assetbook/internal/entity"
	"golang.org/x/crypto/acme/autocert"
)

const eventPollInterval = 2 * time.Second

type ledgerReader interface {
	BalanceOf(account entity.Account, assetID uint64) decimal.Decimal
	TotalSupply(assetID uint64) decimal.Decimal
	URI(assetID uint64) string
	IsFrozen(account entity.Account) bool
	HasRole(role string, account entity.Account) bool
	AssetCount() uint64
	Asset(assetID uint64) (entity.Asset, error)
}

type eventReader interface {
	EventsAfter(index uint64) ([]entity.EventRecord, error)
}

// Server exposes HTTP endpoints serving ledger queries and an SSE event stream.
type Server struct {
	Addr   string
	Ledger ledgerReader
	Events eventReader
}

// NewServer creates a new web server instance.
func NewServer(addr string, ledger ledgerReader, events eventReader) *Server {
	return &Server{Addr: addr, Ledger: ledger, Events: events}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/balance", s.handleBalance)
	mux.HandleFunc("/supply", s.handleSupply)
	mux.HandleFunc("/uri", s.handleURI)
	mux.HandleFunc("/frozen", s.handleFrozen)
	mux.HandleFunc("/role", s.handleRole)
	mux.HandleFunc("/asset", s.handleAsset)
	mux.HandleFunc("/assets/count", s.handleAssetCount)
	mux.HandleFunc("/events/stream", s.handleEventStream)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic TLS certificates via
// ACME. It also starts an HTTP server on port 80 to handle ACME HTTP-01
// challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(domains) == 0 {
		return fmt.Errorf("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	// HTTP server on port 80 for ACME challenges and HTTP->HTTPS redirects.
	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		_ = httpsSrv.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("acme challenge server: %v", err)
		}
	}()

	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	account, ok := accountParam(w, r, "account")
	if !ok {
		return
	}
	assetID, ok := assetParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]string{"balance": s.Ledger.BalanceOf(account, assetID).String()})
}

func (s *Server) handleSupply(w http.ResponseWriter, r *http.Request) {
	assetID, ok := assetParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]string{"total_supply": s.Ledger.TotalSupply(assetID).String()})
}

func (s *Server) handleURI(w http.ResponseWriter, r *http.Request) {
	assetID, ok := assetParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]string{"uri": s.Ledger.URI(assetID)})
}

func (s *Server) handleFrozen(w http.ResponseWriter, r *http.Request) {
	account, ok := accountParam(w, r, "account")
	if !ok {
		return
	}
	writeJSON(w, map[string]bool{"frozen": s.Ledger.IsFrozen(account)})
}

func (s *Server) handleRole(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role == "" {
		http.Error(w, "role query parameter is required", http.StatusBadRequest)
		return
	}
	account, ok := accountParam(w, r, "account")
	if !ok {
		return
	}
	writeJSON(w, map[string]bool{"has_role": s.Ledger.HasRole(role, account)})
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	assetID, ok := assetParam(w, r)
	if !ok {
		return
	}
	asset, err := s.Ledger.Asset(assetID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"id":           asset.ID,
		"metadata":     asset.Metadata,
		"total_supply": asset.TotalSupply.String(),
	})
}

func (s *Server) handleAssetCount(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]uint64{"count": s.Ledger.AssetCount()})
}

func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	if s.Events == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "event log not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// send a comment heartbeat every 30s so proxies keep connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(eventPollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	sendEvents := func() error {
		records, err := s.Events.EventsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			payload, err := json.Marshal(record.Event)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: %s\n", record.Event.Kind)
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendEvents(); err != nil {
		http.Error(w, "failed to load events", http.StatusInternalServerError)
		log.Printf("event stream initial load: %v", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendEvents(); err != nil {
				log.Printf("event stream poll err: %v", err)
			}
		}
	}
}

func accountParam(w http.ResponseWriter, r *http.Request, name string) (entity.Account, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		http.Error(w, name+" query parameter is required", http.StatusBadRequest)
		return entity.Account{}, false
	}
	account, err := entity.ParseAccount(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return entity.Account{}, false
	}
	return account, true
}

func assetParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.URL.Query().Get("asset")
	if raw == "" {
		http.Error(w, "asset query parameter is required", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid asset id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
