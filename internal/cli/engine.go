package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/config"
	ctxpkg "github.com/tienhdsn-000001/eidoid-pet-robot/internal/context"
	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/db"
	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/introspect"
	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/memory"
)

// engine bundles the wired-up subsystems every command needs: config,
// record database, memory manager, context renderer, and the optional
// model client.
type engine struct {
	mu       sync.Mutex // guards cfg after live reload
	cfg      config.Config
	database *db.DB
	manager  *memory.Manager
	renderer *ctxpkg.Renderer
	client   introspect.Client // nil when no API key is configured
}

// openEngine loads config, opens the persona database, and wires the
// memory engine together.
func openEngine() (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v — using defaults\n", err)
	}

	database, err := db.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	client := buildClient(cfg)

	var source memory.ProposalSource
	if client != nil {
		source = introspect.NewProposer(client)
	}
	scheduler := memory.NewScheduler(cfg.Evolution.Period, source)

	manager := memory.NewManager(db.NewRecords(database), tuningFromConfig(cfg), scheduler)
	renderer := ctxpkg.NewRenderer(manager, ctxpkg.NewCounter())

	return &engine{
		cfg:      cfg,
		database: database,
		manager:  manager,
		renderer: renderer,
		client:   client,
	}, nil
}

// close flushes loaded personas and closes the database.
func (e *engine) close() {
	if err := e.manager.SaveAll(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: flush personas: %v\n", err)
	}
	_ = e.database.Close()
}

// contextOptions derives renderer options from the current config.
func (e *engine) contextOptions() ctxpkg.Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ctxpkg.Options{
		MaxTokens:      e.cfg.Context.MaxTokens,
		LongTermTokens: e.cfg.Context.LongTermTokens,
	}
}

// reloadConfig re-reads the config file, picking up edits made while a
// session is running. Only settings read per-call (context budgets,
// auto-save schedule) take effect; structural wiring keeps its startup
// values.
func (e *engine) reloadConfig() {
	cfg, err := config.Load()
	if err != nil {
		return
	}
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
}

// buildClient constructs the model client from config, or nil when no API
// key is available for the chosen provider.
func buildClient(cfg config.Config) introspect.Client {
	var key string
	switch cfg.Model.Provider {
	case introspect.ProviderOpenAI:
		key = cfg.Model.OpenAIKey
	default:
		key = cfg.Model.AnthropicKey
	}
	if key == "" {
		return nil
	}
	client, err := introspect.New(cfg.Model.Provider, key, cfg.Model.Name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v — running without a model\n", err)
		return nil
	}
	return client
}

func tuningFromConfig(cfg config.Config) memory.Tuning {
	t := memory.DefaultTuning()
	if cfg.Memory.BufferSize > 0 {
		t.BufferSize = cfg.Memory.BufferSize
	}
	if cfg.Memory.MaxFacts > 0 {
		t.MaxFacts = cfg.Memory.MaxFacts
	}
	if cfg.Memory.MaxImportantMemories > 0 {
		t.MaxImportantMemories = cfg.Memory.MaxImportantMemories
	}
	if cfg.Memory.InitialConfidence > 0 {
		t.InitialConfidence = cfg.Memory.InitialConfidence
	}
	if cfg.Memory.ConfidenceDelta > 0 {
		t.ConfidenceDelta = cfg.Memory.ConfidenceDelta
	}
	if cfg.Memory.FamiliarityStep > 0 {
		t.FamiliarityStep = cfg.Memory.FamiliarityStep
	}
	return t
}

// confirmPrompt asks a y/N question on stdin.
func confirmPrompt(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// readLineBuf reads a trimmed line from a bufio.Reader.
func readLineBuf(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
