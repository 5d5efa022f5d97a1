package realtime

// Phase is the session controller's orchestration phase, distinct from the
// interaction state manager's UX state. It governs whether externally
// triggered response.create requests are sent immediately or queued.
type Phase string

const (
	PhaseNormal               Phase = "normal"
	PhaseAwaitingConfirmation Phase = "awaiting_confirmation"
)
