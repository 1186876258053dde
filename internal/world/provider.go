package world

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"adventure-server/internal/models"
)

// Summary is the listing view of a world.
type Summary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Provider serves validated, immutable world definitions to the game
// service. Implementations cache aggressively; worlds never change while
// sessions are playing them.
type Provider interface {
	GetWorld(ctx context.Context, worldID string) (*models.WorldData, error)
	ListWorlds(ctx context.Context) ([]Summary, error)
}

// FileProvider loads every .yaml/.yml world from a directory at startup
// and serves them from memory.
type FileProvider struct {
	mu     sync.RWMutex
	worlds map[string]*models.WorldData
	logger *zap.Logger
}

var _ Provider = (*FileProvider)(nil)

// NewFileProvider scans dir for world files. A file that fails validation
// aborts startup; a world author finds out immediately, not mid-session.
func NewFileProvider(dir string, logger *zap.Logger) (*FileProvider, error) {
	log := logger.Named("FileWorldProvider")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading worlds directory %s: %w", dir, err)
	}

	p := &FileProvider{
		worlds: make(map[string]*models.WorldData),
		logger: log,
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(dir, name)
		w, warnings, err := LoadFile(path)
		for _, warning := range warnings {
			log.Warn("World definition warning", zap.String("file", name), zap.String("warning", warning))
		}
		if err != nil {
			return nil, err
		}
		if _, dup := p.worlds[w.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate world id %q in %s", models.ErrWorldInvalid, w.ID, name)
		}
		p.worlds[w.ID] = w
		log.Info("World loaded", zap.String("worldID", w.ID), zap.String("title", w.Title), zap.String("file", name))
	}
	if len(p.worlds) == 0 {
		return nil, fmt.Errorf("no world files found in %s", dir)
	}
	return p, nil
}

func (p *FileProvider) GetWorld(_ context.Context, worldID string) (*models.WorldData, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	w, ok := p.worlds[worldID]
	if !ok {
		return nil, models.ErrWorldNotFound
	}
	return w, nil
}

func (p *FileProvider) ListWorlds(_ context.Context) ([]Summary, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	summaries := make([]Summary, 0, len(p.worlds))
	for _, w := range p.worlds {
		summaries = append(summaries, Summary{ID: w.ID, Title: w.Title})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}
