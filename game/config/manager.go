package config

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/robo-path/game/engine"
	"github.com/wricardo/robo-path/game/service"
)

//go:embed levels/*.yaml
var defaultLevels embed.FS

// SourceEmbedded names the built-in level set
const SourceEmbedded = "embedded"

var (
	ErrLevelNotFound  = service.ErrLevelNotFound
	ErrInvalidLevel   = engine.ErrInvalidLevel
	ErrDuplicateLevel = errors.New("duplicate level id")
	ErrUnwinnable     = errors.New("level cannot be won within its command limit")
)

// Option configures a Manager
type Option func(*Manager)

// WithStrict rejects levels that no program within MaxCommands can win
func WithStrict(strict bool) Option {
	return func(m *Manager) {
		m.strict = strict
	}
}

// Manager holds the level catalog. Levels are loaded once and never
// mutated; Reload swaps the whole set atomically.
type Manager struct {
	levelDir string
	strict   bool
	source   string
	levels   map[int]*engine.Level
	ordered  []*engine.Level
	infos    []*service.LevelInfo
	mu       sync.RWMutex
}

// NewManager loads every level file in levelDir. An empty levelDir, or a
// directory without level files, falls back to the embedded levels. Any
// malformed level fails the whole load.
func NewManager(levelDir string, opts ...Option) (*Manager, error) {
	if levelDir != "" {
		if _, err := os.Stat(levelDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("level directory does not exist: %s", levelDir)
		}
	}

	m := &Manager{levelDir: levelDir}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload re-reads the level files and replaces the catalog
func (m *Manager) Reload() error {
	var (
		defs   []levelFile
		source = SourceEmbedded
		err    error
	)

	if m.levelDir != "" {
		defs, err = readLevelFiles(os.DirFS(m.levelDir), ".")
		if err != nil {
			return err
		}
		source = m.levelDir
	}
	if len(defs) == 0 {
		defs, err = readLevelFiles(defaultLevels, "levels")
		if err != nil {
			return fmt.Errorf("failed to load embedded levels: %w", err)
		}
		source = SourceEmbedded
	}

	levels := make(map[int]*engine.Level, len(defs))
	ordered := make([]*engine.Level, 0, len(defs))
	infos := make([]*service.LevelInfo, 0, len(defs))

	for _, f := range defs {
		level, err := engine.CompileLevel(f.def)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		if prev, exists := levels[level.ID]; exists {
			return fmt.Errorf("%s: %w %d (also used by %q)", f.name, ErrDuplicateLevel, level.ID, prev.Name)
		}

		solution, winnable := engine.Solve(level)
		if m.strict && !winnable {
			return fmt.Errorf("%s: level %d: %w", f.name, level.ID, ErrUnwinnable)
		}

		levels[level.ID] = level
		ordered = append(ordered, level)
		infos = append(infos, &service.LevelInfo{
			ID:               level.ID,
			Name:             level.Name,
			Description:      level.Description,
			GridSize:         level.GridSize,
			MaxCommands:      level.MaxCommands,
			MinStarsToWin:    level.MinStarsToWin,
			Stars:            level.TotalStars(),
			Winnable:         winnable,
			ShortestSolution: solution.Length,
			Source:           f.name,
		})
	}

	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels = levels
	m.ordered = ordered
	m.infos = infos
	m.source = source
	return nil
}

// Get returns the level with the given id
func (m *Manager) Get(id int) (*engine.Level, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	level, exists := m.levels[id]
	if !exists {
		return nil, fmt.Errorf("%w: %d", ErrLevelNotFound, id)
	}
	return level, nil
}

// List returns all levels sorted by id
func (m *Manager) List() []*engine.Level {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*engine.Level, len(m.ordered))
	copy(out, m.ordered)
	return out
}

// First returns the lowest-id level
func (m *Manager) First() *engine.Level {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.ordered) == 0 {
		return nil
	}
	return m.ordered[0]
}

// Next returns the level following id in unlock order
func (m *Manager) Next(id int) (*engine.Level, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, level := range m.ordered {
		if level.ID > id {
			return level, true
		}
	}
	return nil, false
}

// Count returns the number of loaded levels
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ordered)
}

// Infos returns summary information for every level. The returned values
// are copies and may be modified by the caller.
func (m *Manager) Infos() []*service.LevelInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*service.LevelInfo, len(m.infos))
	for i, info := range m.infos {
		c := *info
		out[i] = &c
	}
	return out
}

// Source returns the directory the catalog was loaded from, or
// SourceEmbedded
func (m *Manager) Source() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.source
}

type levelFile struct {
	name string
	def  engine.LevelDef
}

func readLevelFiles(fsys fs.FS, dir string) ([]levelFile, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	var files []levelFile
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || !isSupportedExtension(ext) {
			continue
		}

		data, err := fs.ReadFile(fsys, pathJoin(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read level file %s: %w", entry.Name(), err)
		}

		def, err := parseByExtension(data, ext)
		if err != nil {
			return nil, fmt.Errorf("failed to parse level file %s: %w", entry.Name(), err)
		}
		files = append(files, levelFile{name: entry.Name(), def: def})
	}
	return files, nil
}

// IsLevelFile reports whether name has a level file extension
func IsLevelFile(name string) bool {
	return isSupportedExtension(strings.ToLower(filepath.Ext(name)))
}

// ParseLevelFile decodes one level file, choosing the format by the
// extension of name
func ParseLevelFile(name string, data []byte) (engine.LevelDef, error) {
	return parseByExtension(data, strings.ToLower(filepath.Ext(name)))
}

func isSupportedExtension(ext string) bool {
	switch ext {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// parseByExtension decodes a level definition, rejecting unknown fields
func parseByExtension(data []byte, ext string) (engine.LevelDef, error) {
	var def engine.LevelDef

	switch ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&def); err != nil {
			return def, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return def, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
		}
	default:
		return def, fmt.Errorf("unsupported level format: %s", ext)
	}
	return def, nil
}

// pathJoin joins fs.FS paths, which always use forward slashes
func pathJoin(dir, name string) string {
	if dir == "." || dir == "" {
		return name
	}
	return dir + "/" + name
}
