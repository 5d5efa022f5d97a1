// Package sensors defines the typed SensorSample -> Event/Alert translation
// contracts the companion core's battery/IMU/environment monitors use to
// shape bus stimuli (§6's event metadata contract). The physical I2C reads
// themselves (ADS1015/LPS22HB/ICM20948) remain external collaborators per
// §1; this package is the pure, independently-testable classification
// logic grounded on services/battery_monitor.py and services/imu_monitor.py.
package sensors

// BatteryConfig tunes the severity thresholds and response policy,
// matching battery_monitor.py's _load_config defaults.
type BatteryConfig struct {
	MinVoltage         float64
	MaxVoltage         float64
	WarningPercent     float64
	CriticalPercent    float64
	HysteresisPercent  float64
	RapidDropPercent   float64
}

// DefaultBatteryConfig returns the reference tuning.
func DefaultBatteryConfig() BatteryConfig {
	return BatteryConfig{
		MinVoltage:        7.0,
		MaxVoltage:        8.4,
		WarningPercent:    50.0,
		CriticalPercent:   25.0,
		HysteresisPercent: 0.0,
		RapidDropPercent:  5.0,
	}
}

// BatteryStatus is the derived battery status event §6 publishes with
// source="battery".
type BatteryStatus struct {
	Voltage        float64
	PercentOfRange float64
	Severity       string // info | warning | critical
	EventType      string // status | clear
	Transition     string
	DeltaPercent   float64
	RapidDrop      bool
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func (c BatteryConfig) warningThreshold() float64 {
	return clampUnit(c.WarningPercent / 100.0)
}

func (c BatteryConfig) criticalThreshold() float64 {
	critical := clampUnit(c.CriticalPercent / 100.0)
	warning := c.warningThreshold()
	if critical < warning {
		return critical
	}
	return warning
}

func (c BatteryConfig) rapidDropThresholdPercent() float64 {
	if c.RapidDropPercent > c.HysteresisPercent {
		return c.RapidDropPercent
	}
	return c.HysteresisPercent
}

// BatteryMonitor derives BatteryStatus events from raw voltage readings,
// retaining only the previous event needed for hysteresis/transition
// classification (services/battery_monitor.py's _build_event).
type BatteryMonitor struct {
	cfg      BatteryConfig
	previous *BatteryStatus
}

// NewBatteryMonitor constructs a monitor with no prior reading.
func NewBatteryMonitor(cfg BatteryConfig) *BatteryMonitor {
	return &BatteryMonitor{cfg: cfg}
}

// Sample derives a BatteryStatus (and, on a warning/critical -> info
// recovery, a companion clear event) from a fresh voltage reading.
func (m *BatteryMonitor) Sample(voltage float64) (status BatteryStatus, clear *BatteryStatus) {
	percent := clampUnit((voltage - m.cfg.MinVoltage) / (m.cfg.MaxVoltage - m.cfg.MinVoltage))
	severity := m.deriveSeverity(percent)

	prevPercent := percent
	if m.previous != nil {
		prevPercent = m.previous.PercentOfRange
	}
	deltaPercent := (percent - prevPercent) * 100.0
	transition := m.deriveTransition(severity, deltaPercent)
	rapidDrop := deltaPercent <= -m.cfg.rapidDropThresholdPercent()

	status = BatteryStatus{
		Voltage:        voltage,
		PercentOfRange: percent,
		Severity:       severity,
		EventType:      "status",
		Transition:     transition,
		DeltaPercent:   deltaPercent,
		RapidDrop:      rapidDrop,
	}

	if m.previous != nil && (m.previous.Severity == "warning" || m.previous.Severity == "critical") && severity == "info" {
		clearEvent := BatteryStatus{
			Voltage:        voltage,
			PercentOfRange: percent,
			Severity:       "info",
			EventType:      "clear",
			Transition:     "recover_info",
			DeltaPercent:   deltaPercent,
			RapidDrop:      rapidDrop,
		}
		clear = &clearEvent
	}

	m.previous = &status
	return status, clear
}

func (m *BatteryMonitor) deriveSeverity(percent float64) string {
	warning := m.cfg.warningThreshold()
	critical := m.cfg.criticalThreshold()
	hysteresis := clampUnit(m.cfg.HysteresisPercent / 100.0)

	if m.previous == nil {
		switch {
		case percent <= critical:
			return "critical"
		case percent <= warning:
			return "warning"
		default:
			return "info"
		}
	}

	switch m.previous.Severity {
	case "critical":
		switch {
		case percent <= critical+hysteresis:
			return "critical"
		case percent <= warning:
			return "warning"
		default:
			return "info"
		}
	case "warning":
		switch {
		case percent <= critical:
			return "critical"
		case percent <= warning+hysteresis:
			return "warning"
		default:
			return "info"
		}
	default: // info
		switch {
		case percent <= critical:
			return "critical"
		case percent <= maxFloat(0, warning-hysteresis):
			return "warning"
		default:
			return "info"
		}
	}
}

func (m *BatteryMonitor) deriveTransition(severity string, deltaPercent float64) string {
	if m.previous == nil {
		return "initial_" + severity
	}
	if m.previous.Severity != severity {
		switch severity {
		case "warning":
			return "enter_warning"
		case "critical":
			return "enter_critical"
		default:
			return "recover_info"
		}
	}
	if deltaPercent <= -m.cfg.rapidDropThresholdPercent() {
		return "delta_drop"
	}
	return "steady_" + severity
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// EnteredWarningOrCritical reports whether transition crosses into a
// warning/critical state, the input realtime.ShouldRequestBatteryResponse
// needs for §4.L criterion (b).
func EnteredWarningOrCritical(transition string) bool {
	return transition == "enter_warning" || transition == "enter_critical"
}
