// Package management is an admin console for hosts that keep several named
// keyboard layouts loaded at once — a desktop IME switching between user
// profiles, or a server offering layout previews over HTTP. It consumes the
// engine exclusively through engine.Engine's public API (spec.md §2.K);
// none of spec.md's Non-goals (OS input-pipeline integration, on-disk
// keyboard *management* beyond a path string) are touched here.
package management

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GoFeGroup/keymagic-go/core"
	"github.com/GoFeGroup/keymagic-go/engine"
	"github.com/GoFeGroup/keymagic-go/glog"
)

// ConsoleConfig configures the admin console's HTTP listener.
type ConsoleConfig struct {
	ListenAddr string `json:"listen_addr"`
}

// DefaultConsoleConfig returns default console configuration
func DefaultConsoleConfig() *ConsoleConfig {
	return &ConsoleConfig{ListenAddr: "127.0.0.1:4560"}
}

// EngineInfo is the console's public view of one pool entry.
type EngineInfo struct {
	Name          string    `json:"name"`
	KeyboardPath  string    `json:"keyboard_path"`
	LoadedAt      time.Time `json:"loaded_at"`
	ComposingText string    `json:"composing_text"`
}

// namedEngine pairs an engine with the mutex a host must hold around it
// (spec.md §5: "a host that shares one Engine across threads must wrap it
// in its own mutex") and the bookkeeping the console's EngineInfo reports.
type namedEngine struct {
	mu           sync.Mutex
	eng          *engine.Engine
	keyboardPath string
	loadedAt     time.Time
}

// Console manages a pool of named *engine.Engine instances: load, switch,
// list, reset, and process-key dispatch by name, plus a concurrent
// diagnostics sweep across the whole pool.
type Console struct {
	mu      sync.RWMutex
	engines map[string]*namedEngine
	active  string

	config *ConsoleConfig
	logger *glog.StructuredLogger
	server *http.Server
}

// NewConsole creates a new admin console. A nil cfg uses
// DefaultConsoleConfig; a nil logger uses glog's global logger.
func NewConsole(cfg *ConsoleConfig, logger *glog.StructuredLogger) *Console {
	if cfg == nil {
		cfg = DefaultConsoleConfig()
	}
	if logger == nil {
		logger = glog.GetStructuredLogger()
	}
	return &Console{
		engines: make(map[string]*namedEngine),
		config:  cfg,
		logger:  logger,
	}
}

// LoadKeyboard reads a km2 file from disk and registers it under name,
// replacing any existing engine with that name. The first keyboard loaded
// becomes the active engine.
func (c *Console) LoadKeyboard(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		c.logger.LogKeyboardLoad(name, data, 0, err)
		return core.WrapErrorWithContextf(err, "read keyboard %q", path)
	}

	eng := engine.NewEngine()
	if err := eng.LoadKeyboard(data); err != nil {
		c.logger.LogKeyboardLoad(name, data, 0, err)
		return core.WrapErrorWithContextf(err, "load keyboard %q", path)
	}
	c.logger.LogKeyboardLoad(name, data, eng.RuleCount(), nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.engines[name] = &namedEngine{eng: eng, keyboardPath: path, loadedAt: time.Now()}
	if c.active == "" {
		c.active = name
	}
	return nil
}

// RemoveEngine unregisters a named engine.
func (c *Console) RemoveEngine(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.engines[name]; !ok {
		return fmt.Errorf("engine %q not found", name)
	}
	delete(c.engines, name)
	if c.active == name {
		c.active = ""
	}
	return nil
}

// Switch makes name the active engine.
func (c *Console) Switch(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.engines[name]; !ok {
		return fmt.Errorf("engine %q not found", name)
	}
	c.active = name
	return nil
}

// Active returns the name of the currently active engine, or "" if none.
func (c *Console) Active() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// List returns info for every registered engine.
func (c *Console) List() []EngineInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]EngineInfo, 0, len(c.engines))
	for name, ne := range c.engines {
		ne.mu.Lock()
		infos = append(infos, EngineInfo{
			Name:          name,
			KeyboardPath:  ne.keyboardPath,
			LoadedAt:      ne.loadedAt,
			ComposingText: ne.eng.ComposingText(),
		})
		ne.mu.Unlock()
	}
	return infos
}

// Reset clears the named engine's composing state.
func (c *Console) Reset(name string) error {
	ne, err := c.lookup(name)
	if err != nil {
		return err
	}
	ne.mu.Lock()
	defer ne.mu.Unlock()
	ne.eng.Reset()
	return nil
}

// ProcessKey dispatches one key event to the named engine.
func (c *Console) ProcessKey(name string, input engine.KeyInput) (engine.Output, error) {
	ne, err := c.lookup(name)
	if err != nil {
		return engine.Output{}, err
	}
	ne.mu.Lock()
	defer ne.mu.Unlock()
	out, err := ne.eng.ProcessKey(input)
	if err == nil {
		c.logger.LogKeyEvent(input.KeyCode, out.Action, nil)
	}
	return out, err
}

func (c *Console) lookup(name string) (*namedEngine, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ne, ok := c.engines[name]
	if !ok {
		return nil, fmt.Errorf("engine %q not found", name)
	}
	return ne, nil
}

// RunDiagnostics times a no-op ProcessKeyTest round trip against every
// registered engine concurrently and logs each as a performance
// measurement, fanning out with errgroup rather than a sequential loop —
// the pool's size is unbounded, and a sequential sweep would serialize on
// the slowest engine's lock contention.
func (c *Console) RunDiagnostics(ctx context.Context) error {
	c.mu.RLock()
	names := make([]string, 0, len(c.engines))
	nes := make([]*namedEngine, 0, len(c.engines))
	for name, ne := range c.engines {
		names = append(names, name)
		nes = append(nes, ne)
	}
	c.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	for i := range names {
		name, ne := names[i], nes[i]
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			start := time.Now()
			ne.mu.Lock()
			_, err := ne.eng.ProcessKeyTest(engine.KeyInput{})
			ne.mu.Unlock()
			c.logger.LogPerformance("diagnostics_round_trip", time.Since(start), map[string]interface{}{
				"engine": name,
			})
			return err
		})
	}
	return g.Wait()
}

// Start serves the console's JSON API until the context is canceled or
// Stop is called.
func (c *Console) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/engines", c.handleEnginesAPI)
	mux.HandleFunc("/api/engines/active", c.handleActiveAPI)
	mux.HandleFunc("/api/engines/process", c.handleProcessKeyAPI)
	mux.HandleFunc("/api/engines/reset", c.handleResetAPI)
	mux.HandleFunc("/api/diagnostics", c.handleDiagnosticsAPI)

	c.server = &http.Server{Addr: c.config.ListenAddr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- c.server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return c.Stop()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Stop gracefully shuts down the console's HTTP listener.
func (c *Console) Stop() error {
	if c.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.server.Shutdown(ctx)
}

func (c *Console) handleEnginesAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{"engines": c.List()})
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
			Path string `json:"keyboard_path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := c.LoadKeyboard(req.Name, req.Path); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	case http.MethodDelete:
		name := r.URL.Query().Get("name")
		if err := c.RemoveEngine(name); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (c *Console) handleActiveAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{"active": c.Active()})
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := c.Switch(req.Name); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (c *Console) handleProcessKeyAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Name  string          `json:"name"`
		Input engine.KeyInput `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	out, err := c.ProcessKey(req.Name, req.Input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *Console) handleResetAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := r.URL.Query().Get("name")
	if err := c.Reset(name); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (c *Console) handleDiagnosticsAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := c.RunDiagnostics(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
