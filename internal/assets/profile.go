package assets

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/surface-footsteps/internal/footstep"
	"github.com/Faultbox/surface-footsteps/internal/logger"
	"github.com/Faultbox/surface-footsteps/internal/physics"
	"github.com/Faultbox/surface-footsteps/pkg/math"
)

// Profile is the authored footstep setup of a character.
type Profile struct {
	Name              string               `yaml:"name"`
	TraceLength       float32              `yaml:"trace_length"`
	ShowDebug         bool                 `yaml:"show_debug"`
	LocallyControlled bool                 `yaml:"locally_controlled"`
	Sockets           map[string]math.Vec3 `yaml:"sockets"`
	// Surfaces maps surface names to data asset names.
	Surfaces map[string]string `yaml:"surfaces"`
}

// SurfaceResolver maps surface names to surface types.
type SurfaceResolver func(name string) (physics.SurfaceType, bool)

// LoadProfiles loads every character profile under characters/.
func (m *Manager) LoadProfiles() error {
	files, err := fs.Glob(m.fsys, CharactersDir+"/*.yaml")
	if err != nil {
		return err
	}

	loaded := make(map[string]*Profile, len(files))
	for _, file := range files {
		data, err := m.Load(file)
		if err != nil {
			return err
		}
		p := &Profile{}
		if err := decodeStrict(data, p); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if p.Name == "" {
			p.Name = strings.TrimSuffix(path.Base(file), path.Ext(file))
		}
		if _, dup := loaded[p.Name]; dup {
			return fmt.Errorf("%s: duplicate profile %q", file, p.Name)
		}
		loaded[p.Name] = p
	}

	m.mu.Lock()
	m.profiles = loaded
	m.mu.Unlock()

	logger.Info("character profiles loaded", zap.Int("count", len(loaded)))
	return nil
}

// Profile returns a loaded profile by name.
func (m *Manager) Profile(name string) (*Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[name]
	return p, ok
}

// ProfileNames returns the loaded profile names in order.
func (m *Manager) ProfileNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.profiles))
	for name := range m.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ComponentConfig resolves the profile's surface table against the loaded
// data assets.
func (m *Manager) ComponentConfig(p *Profile, owner physics.ActorID, surfaces SurfaceResolver) (footstep.ComponentConfig, error) {
	cfg := footstep.ComponentConfig{
		Owner:       owner,
		FX:          make(map[physics.SurfaceType]*footstep.DataAsset, len(p.Surfaces)),
		TraceLength: p.TraceLength,
		ShowDebug:   p.ShowDebug,
	}
	if p.LocallyControlled {
		cfg.LocallyControlled = func() bool { return true }
	}

	for surfaceName, assetName := range p.Surfaces {
		id, ok := surfaces(surfaceName)
		if !ok {
			return footstep.ComponentConfig{}, fmt.Errorf("profile %s: %w: surface %q", p.Name, ErrNotFound, surfaceName)
		}
		asset, ok := m.DataAsset(assetName)
		if !ok {
			return footstep.ComponentConfig{}, fmt.Errorf("profile %s: %w: data asset %q", p.Name, ErrNotFound, assetName)
		}
		cfg.FX[id] = asset
	}
	return cfg, nil
}
