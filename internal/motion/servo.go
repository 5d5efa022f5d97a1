package motion

// Servo is the minimal contract the motion controller needs from a
// physical (or simulated) servo. Real I2C/PWM bring-up (PCA9685) lives
// outside this module per the specification's scope — this interface is
// the seam a hardware adapter implements.
type Servo interface {
	Name() string
	Read() float64
	Write(angleDeg float64)
	Relax()
	MinAngle() float64
	MaxAngle() float64
}

// Registry resolves named servos for the controller and gesture library.
type Registry interface {
	Servo(name string) (Servo, bool)
	Names() []string
}

// memServo is an in-memory Servo used by tests and the diagnostics binary
// when no real hardware is attached.
type memServo struct {
	name           string
	pos            float64
	min, max       float64
	writeCount     int
	relaxed        bool
}

// NewMemoryServo returns a simple in-memory Servo for tests/diagnostics.
func NewMemoryServo(name string, initial, min, max float64) Servo {
	return &memServo{name: name, pos: initial, min: min, max: max}
}

func (s *memServo) Name() string       { return s.name }
func (s *memServo) Read() float64      { return s.pos }
func (s *memServo) Write(a float64)    { s.pos = clamp(a, s.min, s.max); s.writeCount++ }
func (s *memServo) Relax()             { s.relaxed = true }
func (s *memServo) MinAngle() float64  { return s.min }
func (s *memServo) MaxAngle() float64  { return s.max }

type memRegistry struct {
	servos map[string]Servo
	order  []string
}

// NewMemoryRegistry builds a Registry over the given servos, keyed by name.
func NewMemoryRegistry(servos ...Servo) Registry {
	r := &memRegistry{servos: make(map[string]Servo, len(servos))}
	for _, s := range servos {
		r.servos[s.Name()] = s
		r.order = append(r.order, s.Name())
	}
	return r
}

func (r *memRegistry) Servo(name string) (Servo, bool) { s, ok := r.servos[name]; return s, ok }
func (r *memRegistry) Names() []string                 { return r.order }
