package realtime

import (
	"strings"
	"sync"
	"time"
)

// battery-mention keyword matcher used to detect whether the user recently
// asked about the robot's power state, per §4.L criterion (c).
var batteryKeywords = []string{"battery", "charge", "charging", "power level", "how much power"}

// MentionsBattery reports whether text appears to ask about battery/power.
func MentionsBattery(text string) bool {
	normalized := strings.ToLower(text)
	for _, kw := range batteryKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// BatteryQueryTracker remembers the last time the user asked about battery
// status, so the response policy can honor the 45s recency window.
type BatteryQueryTracker struct {
	mu      sync.Mutex
	lastAsk time.Time
	haveAsk bool
}

// RecordIfMentioned records now as the last battery query if text mentions
// battery/power.
func (t *BatteryQueryTracker) RecordIfMentioned(text string, now time.Time) {
	if !MentionsBattery(text) {
		return
	}
	t.mu.Lock()
	t.lastAsk = now
	t.haveAsk = true
	t.mu.Unlock()
}

// AskedRecently reports whether a battery-related query was recorded within
// window of now.
func (t *BatteryQueryTracker) AskedRecently(now time.Time, window time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.haveAsk {
		return false
	}
	return now.Sub(t.lastAsk) <= window
}

// BatteryResponseRecencyWindow is the §4.L default recency window for
// criterion (c): "asked about battery within the last 45 s".
const BatteryResponseRecencyWindow = 45 * time.Second

// BatteryUpdateSignal carries the inputs the response policy needs from an
// incoming battery status event.
type BatteryUpdateSignal struct {
	Severity                 string // info | warning | critical
	EnteredWarningOrCritical bool
}

// ShouldRequestBatteryResponse implements §4.L's default-silent battery
// response policy: a model response is requested only when the severity is
// critical, the transition crosses into warning/critical, or the user
// explicitly asked about battery within the recency window.
func ShouldRequestBatteryResponse(signal BatteryUpdateSignal, askedRecently bool) bool {
	if signal.Severity == "critical" {
		return true
	}
	if signal.EnteredWarningOrCritical {
		return true
	}
	return askedRecently
}
