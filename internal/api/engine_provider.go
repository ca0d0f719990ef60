package api

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samcharles93/charseed/internal/inference"
	"github.com/samcharles93/charseed/internal/model"
)

var errNoModel = errors.New("no model configured")

// ModelLoader is satisfied by inference.Loader.
type ModelLoader interface {
	Load(ctx context.Context, path string) (*inference.LoadResult, error)
}

type EngineProvider interface {
	Status() ProviderStatus
	Load(ctx context.Context) (*inference.LoadResult, error)
	WithEngine(ctx context.Context, fn func(engine inference.Engine, defaults inference.GenDefaults) error) error
}

// ProviderStatus snapshots what the provider knows about its model.
type ProviderStatus struct {
	Path        string
	Available   bool
	Loaded      bool
	Metadata    *model.Metadata
	Fingerprint string
}

// Line renders the status the demo page shows.
func (s ProviderStatus) Line() string {
	switch {
	case s.Loaded:
		return inference.StatusModelLoaded(s.Path)
	case s.Available:
		return inference.StatusModelAvailable(s.Path)
	default:
		return inference.StatusStandingBy
	}
}

type EngineProviderConfig struct {
	ModelPath string
	Loader    ModelLoader
}

// CachedEngineProvider loads the configured model on first use and keeps it
// until Close. Generations on the loaded engine run one at a time.
type CachedEngineProvider struct {
	cfg EngineProviderConfig

	loadMu sync.Mutex // held while loading
	mu     sync.Mutex // guards entry
	entry  *engineEntry
}

type engineEntry struct {
	result *inference.LoadResult
	mu     sync.Mutex
}

func NewCachedEngineProvider(cfg EngineProviderConfig) *CachedEngineProvider {
	if strings.TrimSpace(cfg.ModelPath) != "" {
		cfg.ModelPath = filepath.Clean(cfg.ModelPath)
	}
	return &CachedEngineProvider{cfg: cfg}
}

func (p *CachedEngineProvider) Status() ProviderStatus {
	st := ProviderStatus{
		Path:      p.cfg.ModelPath,
		Available: inference.Available(p.cfg.ModelPath),
	}
	p.mu.Lock()
	entry := p.entry
	p.mu.Unlock()
	if entry != nil {
		meta := entry.result.Metadata
		st.Loaded = true
		st.Metadata = &meta
		st.Fingerprint = entry.result.Fingerprint
	}
	return st
}

// Load loads the model if needed. Calling it again returns the cached result.
func (p *CachedEngineProvider) Load(ctx context.Context) (*inference.LoadResult, error) {
	entry, err := p.getOrLoad(ctx)
	if err != nil {
		return nil, err
	}
	return entry.result, nil
}

func (p *CachedEngineProvider) WithEngine(ctx context.Context, fn func(engine inference.Engine, defaults inference.GenDefaults) error) error {
	entry, err := p.getOrLoad(ctx)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(entry.result.Engine, entry.result.GenerationDefaults)
}

func (p *CachedEngineProvider) getOrLoad(ctx context.Context) (*engineEntry, error) {
	p.mu.Lock()
	entry := p.entry
	p.mu.Unlock()
	if entry != nil {
		return entry, nil
	}
	if p.cfg.ModelPath == "" || p.cfg.Loader == nil {
		return nil, errNoModel
	}

	p.loadMu.Lock()
	defer p.loadMu.Unlock()
	p.mu.Lock()
	entry = p.entry
	p.mu.Unlock()
	if entry != nil {
		return entry, nil
	}

	result, err := p.cfg.Loader.Load(ctx, p.cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	entry = &engineEntry{result: result}
	p.mu.Lock()
	p.entry = entry
	p.mu.Unlock()
	return entry, nil
}

// Close releases the loaded engine, waiting for a running generation.
func (p *CachedEngineProvider) Close() error {
	p.mu.Lock()
	entry := p.entry
	p.entry = nil
	p.mu.Unlock()
	if entry == nil {
		return nil
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.result.Engine.Close()
}
