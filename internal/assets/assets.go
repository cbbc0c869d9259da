// Package assets loads footstep data assets, character profiles and sound
// files from a data directory.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/surface-footsteps/internal/footstep"
	"github.com/Faultbox/surface-footsteps/internal/logger"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// Directories under the data root.
const (
	FootstepsDir  = "footsteps"
	CharactersDir = "characters"
)

// ErrNotFound is returned for files and assets that do not exist.
var ErrNotFound = errors.New("asset not found")

// Manager handles asset loading from a file system.
type Manager struct {
	fsys  fs.FS
	cache *Cache

	mu         sync.RWMutex
	dataAssets map[string]*footstep.DataAsset
	profiles   map[string]*Profile
}

// NewManager creates a manager reading from fsys.
func NewManager(fsys fs.FS) *Manager {
	return &Manager{
		fsys:       fsys,
		cache:      NewCache(),
		dataAssets: make(map[string]*footstep.DataAsset),
		profiles:   make(map[string]*Profile),
	}
}

// Load reads a file, caching its contents. It implements audio.Loader.
func (m *Manager) Load(name string) ([]byte, error) {
	name = path.Clean(strings.TrimPrefix(name, "/"))
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	data, err := fs.ReadFile(m.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	m.cache.Set(name, data)
	return data, nil
}

// Cache returns the file cache.
func (m *Manager) Cache() *Cache { return m.cache }

// dataAssetFile is the YAML form of a data asset. Missing playback fields
// keep the asset defaults.
type dataAssetFile struct {
	Name          string                         `yaml:"name"`
	Volume        *float32                       `yaml:"volume"`
	Pitch         *float32                       `yaml:"pitch"`
	ParticleScale *math.Vec3                     `yaml:"particle_scale"`
	LifeSpan      *time.Duration                 `yaml:"lifespan"`
	Attenuation   string                         `yaml:"attenuation"`
	Concurrency   string                         `yaml:"concurrency"`
	FX            map[string]footstep.CategoryFX `yaml:"fx"`
}

// LoadDataAssets loads every data asset under footsteps/. Categories the
// catalog does not know are kept and logged.
func (m *Manager) LoadDataAssets(catalog *footstep.Catalog) error {
	files, err := fs.Glob(m.fsys, FootstepsDir+"/*.yaml")
	if err != nil {
		return err
	}

	loaded := make(map[string]*footstep.DataAsset, len(files))
	for _, file := range files {
		asset, err := m.loadDataAsset(file)
		if err != nil {
			return err
		}
		if _, dup := loaded[asset.Name]; dup {
			return fmt.Errorf("%s: duplicate data asset %q", file, asset.Name)
		}
		for cat := range asset.FX {
			if !catalog.Contains(cat) {
				logger.Warn("data asset names unknown category",
					zap.String("asset", asset.Name),
					zap.String("category", string(cat)),
				)
			}
		}
		loaded[asset.Name] = asset
	}

	m.mu.Lock()
	m.dataAssets = loaded
	m.mu.Unlock()

	logger.Info("data assets loaded", zap.Int("count", len(loaded)))
	return nil
}

func (m *Manager) loadDataAsset(file string) (*footstep.DataAsset, error) {
	data, err := m.Load(file)
	if err != nil {
		return nil, err
	}
	var f dataAssetFile
	if err := decodeStrict(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	name := f.Name
	if name == "" {
		name = strings.TrimSuffix(path.Base(file), path.Ext(file))
	}
	asset := footstep.NewDataAsset(name)
	if f.Volume != nil {
		asset.Volume = *f.Volume
	}
	if f.Pitch != nil {
		asset.Pitch = *f.Pitch
	}
	if f.ParticleScale != nil {
		asset.ParticleScale = *f.ParticleScale
	}
	if f.LifeSpan != nil {
		asset.LifeSpan = *f.LifeSpan
	}
	asset.AttenuationOverride = f.Attenuation
	asset.ConcurrencyOverride = f.Concurrency
	for cat, fx := range f.FX {
		asset.FX[footstep.Category(cat)] = fx
	}
	return asset, nil
}

// DataAsset returns a loaded data asset by name.
func (m *Manager) DataAsset(name string) (*footstep.DataAsset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.dataAssets[name]
	return d, ok
}

// DataAssetNames returns the loaded asset names in order.
func (m *Manager) DataAssetNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.dataAssets))
	for name := range m.dataAssets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SoundRefs returns every sound referenced by a loaded asset, in order.
func (m *Manager) SoundRefs() []footstep.SoundRef {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[footstep.SoundRef]bool)
	var refs []footstep.SoundRef
	for _, asset := range m.dataAssets {
		for _, fx := range asset.FX {
			if fx.Sound != "" && !seen[fx.Sound] {
				seen[fx.Sound] = true
				refs = append(refs, fx.Sound)
			}
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}
