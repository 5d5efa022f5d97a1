package realtime

// ResponseCreateRequest is a pending `response.create` send, parked when the
// confirmation flow is gating it (§4.L confirmation-flow gating).
type ResponseCreateRequest struct {
	Trigger      string
	Origin       string // "user_text", "injection", "assistant_message", ...
	ApprovalFlow bool
	Payload      map[string]any
}

// CanSendResponseCreate reports whether req may be sent immediately given
// the session's current phase. Outside confirmation, everything is
// admitted. While awaiting confirmation, only user-text triggers and the
// approval-flow prompt itself pass through; everything else (in practice,
// externally injected stimuli) is held back.
func CanSendResponseCreate(phase Phase, req ResponseCreateRequest) bool {
	if phase != PhaseAwaitingConfirmation {
		return true
	}
	return req.Origin == "user_text" || req.ApprovalFlow
}

// DrainResponseCreateQueue scans queue in order, sending every request that
// CanSendResponseCreate admits and leaving the rest in place (in their
// original relative order). It does not stop at the first blocked entry:
// a later approval-flow prompt can be released while an earlier injected
// trigger remains parked.
func DrainResponseCreateQueue(queue []ResponseCreateRequest, phase Phase, send func(ResponseCreateRequest) error) ([]ResponseCreateRequest, error) {
	remaining := make([]ResponseCreateRequest, 0, len(queue))
	for _, req := range queue {
		if !CanSendResponseCreate(phase, req) {
			remaining = append(remaining, req)
			continue
		}
		if err := send(req); err != nil {
			return nil, err
		}
	}
	return remaining, nil
}
