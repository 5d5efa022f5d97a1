package sensors

import "math"

// IMUConfig tunes tilt/spin/shake classification thresholds, matching
// services/imu_monitor.py's ImuMonitor defaults.
type IMUConfig struct {
	TiltThresholdDeg    float64
	GyroThresholdDPS    float64
	RollRateThreshold   float64
	MinEventIntervalMs  int64
}

// DefaultIMUConfig returns the reference tuning.
func DefaultIMUConfig() IMUConfig {
	return IMUConfig{
		TiltThresholdDeg:   45.0,
		GyroThresholdDPS:   180.0,
		RollRateThreshold:  30.0,
		MinEventIntervalMs: 500,
	}
}

// IMUSample is a single orientation/motion reading.
type IMUSample struct {
	TimestampMs int64
	Roll        float64
	Pitch       float64
	Yaw         float64
	Gyro        [3]float64
}

// MotionEvent is a derived tilt/spin/shake classification, §6's imu event
// metadata contract (event_type, severity, details).
type MotionEvent struct {
	EventType string // tilt | spin | shake
	Severity  string
	Details   map[string]float64
}

// IMUClassifier derives MotionEvents from successive samples, matching
// ImuMonitor._detect_events + _rate_limit_events.
type IMUClassifier struct {
	cfg           IMUConfig
	previous      *IMUSample
	lastEventMs   map[string]int64
}

// NewIMUClassifier constructs a classifier with no prior sample.
func NewIMUClassifier(cfg IMUConfig) *IMUClassifier {
	return &IMUClassifier{cfg: cfg, lastEventMs: make(map[string]int64)}
}

// Classify returns the rate-limited motion events detected between the
// classifier's previous sample and sample.
func (c *IMUClassifier) Classify(sample IMUSample) []MotionEvent {
	var events []MotionEvent

	if math.Abs(sample.Roll) > c.cfg.TiltThresholdDeg || math.Abs(sample.Pitch) > c.cfg.TiltThresholdDeg {
		events = append(events, MotionEvent{
			EventType: "tilt",
			Severity:  "warning",
			Details:   map[string]float64{"roll": sample.Roll, "pitch": sample.Pitch},
		})
	}

	gyroMag := math.Sqrt(sample.Gyro[0]*sample.Gyro[0] + sample.Gyro[1]*sample.Gyro[1] + sample.Gyro[2]*sample.Gyro[2])
	if gyroMag > c.cfg.GyroThresholdDPS {
		events = append(events, MotionEvent{
			EventType: "spin",
			Severity:  "notice",
			Details:   map[string]float64{"gyro_dps": gyroMag},
		})
	}

	if c.previous != nil {
		rollRate := math.Abs(sample.Roll - c.previous.Roll)
		pitchRate := math.Abs(sample.Pitch - c.previous.Pitch)
		if rollRate > c.cfg.RollRateThreshold || pitchRate > c.cfg.RollRateThreshold {
			events = append(events, MotionEvent{
				EventType: "shake",
				Severity:  "notice",
				Details:   map[string]float64{"roll_delta": rollRate, "pitch_delta": pitchRate},
			})
		}
	}

	c.previous = &sample
	return c.rateLimit(events, sample.TimestampMs)
}

func (c *IMUClassifier) rateLimit(events []MotionEvent, nowMs int64) []MotionEvent {
	filtered := make([]MotionEvent, 0, len(events))
	for _, e := range events {
		last, ok := c.lastEventMs[e.EventType]
		if !ok || nowMs-last >= c.cfg.MinEventIntervalMs {
			filtered = append(filtered, e)
			c.lastEventMs[e.EventType] = nowMs
		}
	}
	return filtered
}

// Severity maps an IMU event type to the bus priority it should carry;
// tilt is the only type that can reach "critical" territory upstream via
// alert policy configuration, so this stays a direct passthrough of the
// classifier's own severity label.
func Severity(event MotionEvent) string { return event.Severity }
