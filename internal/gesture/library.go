package gesture

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"theo/internal/motion"
)

// Store persists the library's on-disk document. The real filesystem
// adapter lives outside this module's scope (per §1, persistence is an
// external collaborator); InMemoryStore is the reference implementation
// exercised by tests.
type Store interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// InMemoryStore is a Store backed by a byte slice, letting tests exercise
// the round-trip law from §8 without touching a filesystem.
type InMemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func (s *InMemoryStore) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

func (s *InMemoryStore) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	return nil
}

// Library is the persistent table of gesture definitions, keyed by name.
type Library struct {
	mu          sync.RWMutex
	store       Store
	definitions map[string]Definition
}

// Load constructs a Library, reading any existing document from store and
// seeding the defaults for any gesture not already present.
func Load(store Store) (*Library, error) {
	lib := &Library{store: store, definitions: make(map[string]Definition)}
	if err := lib.loadExisting(); err != nil {
		return nil, err
	}
	lib.EnsureDefaults()
	return lib, nil
}

func (l *Library) loadExisting() error {
	raw, err := l.store.Load()
	if err != nil {
		return fmt.Errorf("load gesture library: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		log.Warn().Err(err).Msg("gesture_library_decode_failed")
		return nil
	}
	for _, def := range doc.Gestures {
		l.definitions[def.Name] = def
	}
	return nil
}

// ListGestures returns every gesture name, sorted.
func (l *Library) ListGestures() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.definitions))
	for name := range l.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a gesture definition by name.
func (l *Library) Get(name string) (Definition, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.definitions[name]
	return d, ok
}

// Register adds or replaces a definition, persisting the library when
// persist is true.
func (l *Library) Register(def Definition, persist bool) error {
	l.mu.Lock()
	l.definitions[def.Name] = def
	l.mu.Unlock()
	if persist {
		return l.persist()
	}
	return nil
}

// EnsureDefaults seeds any default definition not already present,
// persisting once if anything was added.
func (l *Library) EnsureDefaults() {
	l.mu.Lock()
	added := false
	for _, def := range DefaultDefinitions {
		if _, ok := l.definitions[def.Name]; !ok {
			l.definitions[def.Name] = def
			added = true
		}
	}
	l.mu.Unlock()
	if added {
		if err := l.persist(); err != nil {
			log.Warn().Err(err).Msg("gesture_library_persist_failed")
		}
	}
}

func (l *Library) persist() error {
	l.mu.RLock()
	defs := make([]Definition, 0, len(l.definitions))
	for _, d := range l.definitions {
		defs = append(defs, d)
	}
	l.mu.RUnlock()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })

	data, err := yaml.Marshal(document{Gestures: defs})
	if err != nil {
		return fmt.Errorf("marshal gesture library: %w", err)
	}
	if err := l.store.Save(data); err != nil {
		return fmt.Errorf("save gesture library: %w", err)
	}
	return nil
}

// ServoLimits reports the [min, max] angle bounds for a named axis, used to
// clamp gesture offsets against hardware limits.
type ServoLimits struct {
	Min, Max float64
}

// BuildAction reads the current pose for each axis referenced by the
// gesture's frames, scales the gesture's offsets by intensity, clamps
// against limits, links the frames, and returns an Action scheduled
// delayMs from now.
func (l *Library) BuildAction(name string, delayMs int64, intensity float64, currentPose map[string]float64, limits map[string]ServoLimits, nowMs int64) (*motion.Action, error) {
	def, ok := l.Get(name)
	if !ok {
		return nil, fmt.Errorf("gesture %q not found", name)
	}

	var head, tail *motion.Keyframe
	for _, spec := range def.Frames {
		panTarget := clampToLimit(currentPose["pan"]+spec.PanOffset*intensity, limits["pan"])
		tiltTarget := clampToLimit(currentPose["tilt"]+spec.TiltOffset*intensity, limits["tilt"])
		frame := &motion.Keyframe{
			Name:            spec.Name,
			Target:          map[string]float64{"pan": panTarget, "tilt": tiltTarget},
			FinalTargetTime: spec.DurationMs,
		}
		if head == nil {
			head = frame
		} else {
			tail.Next = frame
		}
		tail = frame
	}

	return motion.NewAction(def.Priority, nowMs+delayMs, def.Name, head), nil
}

func clampToLimit(v float64, limit ServoLimits) float64 {
	if limit == (ServoLimits{}) {
		return v
	}
	if v < limit.Min {
		return limit.Min
	}
	if v > limit.Max {
		return limit.Max
	}
	return v
}
