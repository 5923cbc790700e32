/*
Copyright 2025 The Routely Authors
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
    http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package dispatch owns the serving side of the gateway: the HTTP
// server lifecycle, the handler registry and the live route table.
// The table reference is swapped atomically on reload, so an in-flight
// request observes either the fully-old or fully-new table, never a
// partially built one.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/routely/routely/internal/pkg/core/routing"
	"github.com/routely/routely/internal/pkg/loggerfactory"
)

const (
	componentName   = "dispatch"
	shutdownTimeout = 10 * time.Second
)

// DispatcherService resolves incoming requests against the live route
// table and invokes the registered handler for the winning route's
// action.
type DispatcherService struct {
	server   *http.Server
	port     string // :8290
	hostname string
	logger   *slog.Logger
	registry *Registry
	cors     CORSConfig
	table    atomic.Pointer[routing.RouteTable]
}

// NewDispatcherService creates a dispatcher bound to the given port
// and hostname. The route table starts empty; publish one with
// SwapTable before serving traffic.
func NewDispatcherService(port string, hostname string, registry *Registry) *DispatcherService {
	ds := &DispatcherService{
		port:     port,
		hostname: hostname,
		registry: registry,
		cors:     DefaultCORSConfig(),
	}
	ds.logger = loggerfactory.GetLogger(componentName, ds)
	return ds
}

func (ds *DispatcherService) UpdateLogger() {
	ds.logger = loggerfactory.GetLogger(componentName, ds)
}

// SetCORSConfig replaces the CORS configuration. Call before
// StartServer; the middleware chain is assembled once at startup.
func (ds *DispatcherService) SetCORSConfig(config CORSConfig) {
	ds.cors = config
}

// SwapTable atomically publishes a new route table and returns the
// previous one. In-flight matches keep using the table they loaded.
func (ds *DispatcherService) SwapTable(table *routing.RouteTable) *routing.RouteTable {
	old := ds.table.Swap(table)
	if table != nil {
		ds.logger.Info("Published route table", slog.Int("routes", table.Len()))
	}
	return old
}

// Table returns the currently published route table, or nil before
// the first SwapTable.
func (ds *DispatcherService) Table() *routing.RouteTable {
	return ds.table.Load()
}

// ServeHTTP resolves the request against the live table. A routing
// miss is a normal outcome and maps to 404; a matched route whose
// action has no registered handler is a deployment defect and maps
// to 500.
func (ds *DispatcherService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	table := ds.table.Load()
	if table == nil {
		http.Error(w, "no route table loaded", http.StatusServiceUnavailable)
		return
	}

	// Match on the escaped form: the engine percent-decodes captured
	// parameters itself, and decoding must happen exactly once.
	result, err := table.Match(r.Method, r.URL.EscapedPath())
	if err != nil {
		var nre *routing.NoRouteError
		if errors.As(err, &nre) {
			ds.logger.Debug("no route found",
				slog.String("method", nre.Method),
				slog.String("path", nre.Path))
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	handler, ok := ds.registry.Lookup(result.Route.Action)
	if !ok {
		ds.logger.Error("no handler registered for action",
			slog.String("action", result.Route.Action.Ref()),
			slog.String("path", r.URL.Path))
		http.Error(w, "no handler registered for action "+result.Route.Action.Ref(),
			http.StatusInternalServerError)
		return
	}

	handler(w, r, result)
}

// Handler assembles the full serving chain: diagnostics endpoints
// plus the CORS-wrapped dispatcher.
func (ds *DispatcherService) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", ds.handleLiveness)
	mux.HandleFunc("GET /routez", ds.handleRouteDump)
	mux.Handle("/", CORSMiddleware(ds, ds.cors))
	return mux
}

// StartServer starts the HTTP server in a goroutine.
func (ds *DispatcherService) StartServer(ctx context.Context) {
	addr := ds.hostname + ds.port
	ds.server = &http.Server{
		Addr:    addr,
		Handler: ds.Handler(),
	}

	go func() {
		ds.logger.Info("Starting HTTP server", slog.String("address", addr))
		if err := ds.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			ds.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
		ds.logger.Info("HTTP server stopped serving new connections")
	}()
}

func (ds *DispatcherService) StopServer() {
	if ds.server != nil {
		ds.logger.Info("Shutting down HTTP server...")
		shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownRelease()
		if err := ds.server.Shutdown(shutdownCtx); err != nil {
			ds.logger.Error("Error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}
}

func (ds *DispatcherService) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "UP",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// routeSummary is one entry of the route table dump.
type routeSummary struct {
	Order  int               `json:"order" yaml:"order"`
	Method string            `json:"method" yaml:"method"`
	Path   string            `json:"path" yaml:"path"`
	Action string            `json:"action" yaml:"action"`
	Args   map[string]string `json:"args,omitempty" yaml:"args,omitempty"`
	Params []string          `json:"params,omitempty" yaml:"params,omitempty"`
}

// handleRouteDump serves the live route table for inspection, as JSON
// by default or YAML when requested with ?yaml.
func (ds *DispatcherService) handleRouteDump(w http.ResponseWriter, r *http.Request) {
	table := ds.table.Load()
	if table == nil {
		http.Error(w, "no route table loaded", http.StatusServiceUnavailable)
		return
	}

	summaries := make([]routeSummary, 0, table.Len())
	for _, route := range table.Routes() {
		summaries = append(summaries, routeSummary{
			Order:  route.Order,
			Method: route.Method,
			Path:   route.Template,
			Action: route.Action.Ref(),
			Args:   route.Action.StaticArgs,
			Params: route.ParamNames(),
		})
	}

	query := r.URL.Query()
	if _, exists := query["yaml"]; exists {
		w.Header().Set("Content-Type", "application/yaml")
		data, err := yaml.Marshal(summaries)
		if err != nil {
			http.Error(w, "cannot render route table", http.StatusInternalServerError)
			return
		}
		w.Write(data)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}
