package realtime

import (
	"time"

	"theo/internal/budget"
	"theo/internal/eventbus"
)

// StimulusAdmitter implements can_accept_external_stimulus from §4.L:
// critical battery/IMU events always get through; everything else is
// denied while a confirmation is pending or a response is in flight, and
// is further gated by an injection-response rolling-window budget plus
// per-trigger cooldowns.
type StimulusAdmitter struct {
	responseBudget  *budget.Window
	triggerCooldown time.Duration
	lastByTrigger   map[string]time.Time
}

// NewStimulusAdmitter constructs an admitter. responsesPerMinute <= 0 means
// unlimited.
func NewStimulusAdmitter(responsesPerMinute int, triggerCooldown time.Duration) *StimulusAdmitter {
	return &StimulusAdmitter{
		responseBudget:  budget.New(responsesPerMinute, time.Minute, "injection_responses_per_minute"),
		triggerCooldown: triggerCooldown,
		lastByTrigger:   make(map[string]time.Time),
	}
}

// CanAccept reports whether an externally triggered stimulus may request a
// model response right now.
func (a *StimulusAdmitter) CanAccept(event eventbus.Event, phase Phase, responseInProgress bool, now time.Time) bool {
	if event.Priority == eventbus.PriorityCritical && (event.Source == "battery" || event.Source == "imu") {
		return true
	}

	if phase == PhaseAwaitingConfirmation || responseInProgress {
		return false
	}

	if !a.responseBudget.Allow(now) {
		return false
	}

	if event.DedupeKey != "" && a.triggerCooldown > 0 {
		if last, ok := a.lastByTrigger[event.DedupeKey]; ok && now.Sub(last) < a.triggerCooldown {
			return false
		}
	}

	return true
}

// RecordAccepted records that event was admitted, counting it against the
// response budget and the per-trigger cooldown.
func (a *StimulusAdmitter) RecordAccepted(event eventbus.Event, now time.Time) {
	a.responseBudget.Record(now)
	if event.DedupeKey != "" {
		a.lastByTrigger[event.DedupeKey] = now
	}
}
