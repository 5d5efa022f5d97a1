// Package realtime implements the realtime session controller (§4.L): the
// websocket-driven conversation loop that configures the remote voice
// session, dispatches incoming frames, gates tool calls through governance,
// and admits externally injected stimuli under the confirmation-flow and
// battery-response policies.
package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	sdk "github.com/openai/openai-go/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"theo/internal/eventbus"
	"theo/internal/governance"
	"theo/internal/interaction"
	"theo/internal/research"
	"theo/internal/sensors"
	"theo/internal/stimuli"
	"theo/internal/tools"
)

const (
	pingPeriod            = 9 * time.Second
	micSuppressionWindow  = 1200 * time.Millisecond
	audioFlushThresholdB  = 9600 // ~200ms of 24kHz mono 16-bit PCM
)

// Player accepts decoded PCM audio for local playback. The real
// implementation wraps the onboard speaker; tests use a recording fake.
type Player interface {
	PlayChunk(pcm []byte) error
}

// Dependencies bundles every collaborator the session controller wires
// together. Tools and Interaction are used without a nil check and must be
// set. For every other pointer/interface field, a nil value disables that
// piece of behavior (e.g. a nil Governance treats every tool call as
// pre-approved).
type Dependencies struct {
	Tools          tools.Registry
	Governance     *governance.Layer
	Admitter       *StimulusAdmitter
	BatteryTracker *BatteryQueryTracker
	Interaction    *interaction.Manager
	Research       research.Service
	Player         Player
	// Dialer redials the wire connection after a reconnectable close cause
	// (§4.L item 4). A nil Dialer disables reconnection: Run returns the
	// read error directly, matching the zero-value-disables convention
	// used throughout Dependencies.
	Dialer Dialer
}

// Dialer establishes a fresh wire connection, used to reconnect after a
// transient close per §9's explicit close-cause classification.
type Dialer func(ctx context.Context) (WireConn, error)

// reconnectBackoff is the short linear backoff applied before redialing
// after a reconnectable close cause, matching §4.L item 4's "wait 1 s and
// reconnect".
const reconnectBackoff = time.Second

type pendingFunctionCall struct {
	Name string
	Args string
}

type pendingConfirmation struct {
	action  governance.ActionPacket
	rawArgs map[string]any
}

// Session is one realtime voice-session connection and its orchestration
// state. It is safe for concurrent use; the read loop, mic loop, ping loop,
// and external callers (HandleUserText, Inject) all serialize through mu
// and writeMu.
type Session struct {
	connMu  sync.Mutex
	conn    WireConn
	dialer  Dialer
	writeMu sync.Mutex
	config  SessionConfig

	tools          tools.Registry
	governance     *governance.Layer
	admitter       *StimulusAdmitter
	batteryTracker *BatteryQueryTracker
	interactionMgr *interaction.Manager
	researchSvc    research.Service
	player         Player

	mu                  sync.Mutex
	phase               Phase
	responseInProgress  bool
	responseQueue       []ResponseCreateRequest
	pendingCalls        map[string]*pendingFunctionCall
	pendingConfirmation *pendingConfirmation
	audioBuf            []byte
	micSuppressedUntil  time.Time
	rateLimits          []RateLimit
}

// NewSession constructs a Session bound to conn, ready for Configure and Run.
func NewSession(conn WireConn, cfg SessionConfig, deps Dependencies) *Session {
	return &Session{
		conn:           conn,
		dialer:         deps.Dialer,
		config:         cfg,
		tools:          deps.Tools,
		governance:     deps.Governance,
		admitter:       deps.Admitter,
		batteryTracker: deps.BatteryTracker,
		interactionMgr: deps.Interaction,
		researchSvc:    deps.Research,
		player:         deps.Player,
		phase:          PhaseNormal,
		pendingCalls:   make(map[string]*pendingFunctionCall),
	}
}

func (s *Session) currentConn() WireConn {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.conn
}

// Phase reports the session's current orchestration phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Configure sends session.update with the configured voice/audio/VAD
// parameters and the full tool catalog rendered from the tool registry.
func (s *Session) Configure() error {
	cfg := s.config
	cfg.Tools = toolCatalog(s.tools)
	return s.sendFrame(outboundFrame{Type: "session.update", Session: &cfg})
}

// toolCatalog renders the registry's schemas as the wire's tool-catalog
// shape. Each schema is round-tripped through the OpenAI SDK's
// FunctionDefinitionParam (the same typed parameter-schema construction
// the teacher's AdaptSchemas uses for Chat Completions tools) so the
// catalog's name/description/parameters triple is built and validated by
// the SDK's own types even though the realtime wire protocol itself is a
// hand-rolled JSON frame, not a Chat Completions request.
func toolCatalog(reg tools.Registry) []ToolCatalogEntry {
	if reg == nil {
		return nil
	}
	schemas := reg.Schemas()
	out := make([]ToolCatalogEntry, 0, len(schemas))
	for _, sc := range schemas {
		def := sdk.FunctionDefinitionParam{
			Name:        sc.Name,
			Description: sdk.String(sc.Description),
			Parameters:  sc.Parameters,
		}
		out = append(out, ToolCatalogEntry{
			Type:        "function",
			Name:        def.Name,
			Description: def.Description.Value,
			Parameters:  def.Parameters,
		})
	}
	return out
}

// Run drives the incoming-frame loop, the keepalive ping loop, and (when
// mic is non-nil) the outgoing microphone loop until ctx is canceled or an
// unrecoverable error occurs. Per §4.L item 4, a connection loss classified
// as reconnectable (keepalive timeout, transient network error) waits
// reconnectBackoff and redials through the configured Dialer, re-sending
// session.update before resuming; any other close cause, or a nil Dialer,
// returns the error straight through.
func (s *Session) Run(ctx context.Context, mic <-chan []byte) error {
	for {
		err := s.runOnce(ctx, mic)
		if err == nil || ctx.Err() != nil {
			return err
		}

		cause := ClassifyCloseCause(err)
		if s.dialer == nil || !cause.Reconnectable() {
			return err
		}
		log.Warn().Err(err).Str("cause", cause.String()).Msg("realtime_connection_lost_reconnecting")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectBackoff):
		}

		conn, dialErr := s.dialer(ctx)
		if dialErr != nil {
			return fmt.Errorf("realtime reconnect dial: %w", dialErr)
		}
		s.connMu.Lock()
		s.conn = conn
		s.connMu.Unlock()
		s.resetForReconnect()

		if cfgErr := s.Configure(); cfgErr != nil {
			return fmt.Errorf("realtime reconnect configure: %w", cfgErr)
		}
	}
}

// resetForReconnect clears turn-in-progress state that no longer applies
// once the wire connection has been torn down and redialed, matching §9's
// "session reset" clearing point for responseInProgress.
func (s *Session) resetForReconnect() {
	s.mu.Lock()
	s.responseInProgress = false
	s.audioBuf = nil
	s.pendingCalls = make(map[string]*pendingFunctionCall)
	s.phase = PhaseNormal
	s.pendingConfirmation = nil
	s.mu.Unlock()
}

// runOnce drives one connection's worth of incoming-frame loop, keepalive
// ping loop, and (when mic is non-nil) outgoing microphone loop until ctx
// is canceled or any of them errors, mirroring the errgroup-of-goroutines
// shape used for the reference client's socket transport.
func (s *Session) runOnce(ctx context.Context, mic <-chan []byte) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(ctx) })
	g.Go(func() error { return s.pingLoop(ctx) })
	if mic != nil {
		g.Go(func() error { return s.micLoop(ctx, mic) })
	}
	return g.Wait()
}

func (s *Session) readLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var env inboundEnvelope
		if err := s.currentConn().ReadJSON(&env); err != nil {
			return fmt.Errorf("realtime read: %w", err)
		}
		s.handleInbound(ctx, env)
	}
}

type controlWriter interface {
	WriteControl(messageType int, data []byte, deadline time.Time) error
}

// Ping sends a websocket ping control frame if the underlying connection
// supports it (the real gorilla connection does; test fakes need not).
func (s *Session) Ping(deadline time.Time) error {
	cw, ok := s.currentConn().(controlWriter)
	if !ok {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return cw.WriteControl(websocket.PingMessage, nil, deadline)
}

func (s *Session) pingLoop(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Ping(time.Now().Add(5 * time.Second)); err != nil {
				return fmt.Errorf("realtime ping: %w", err)
			}
		}
	}
}

// micLoop streams mic chunks out as input_audio_buffer.append frames,
// dropping chunks while playback-induced mic suppression is active so the
// session never hears its own voice.
func (s *Session) micLoop(ctx context.Context, mic <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-mic:
			if !ok {
				return nil
			}
			if s.micSuppressed(time.Now()) {
				continue
			}
			encoded := base64.StdEncoding.EncodeToString(chunk)
			if err := s.sendFrame(outboundFrame{Type: "input_audio_buffer.append", Audio: encoded}); err != nil {
				return fmt.Errorf("realtime mic send: %w", err)
			}
		}
	}
}

func (s *Session) sendFrame(frame outboundFrame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.currentConn().WriteJSON(frame)
}

func (s *Session) sendAssistantMessage(text string) error {
	return s.sendFrame(outboundFrame{Type: "conversation.item.create", Item: conversationMessageItem{
		Type: "message", Role: "assistant", Content: []conversationContentPart{{Type: "text", Text: text}},
	}})
}

func (s *Session) sendSystemContext(text string) error {
	return s.sendFrame(outboundFrame{Type: "conversation.item.create", Item: conversationMessageItem{
		Type: "message", Role: "system", Content: []conversationContentPart{{Type: "input_text", Text: text}},
	}})
}

func (s *Session) sendUserMessage(text string) error {
	return s.sendFrame(outboundFrame{Type: "conversation.item.create", Item: conversationMessageItem{
		Type: "message", Role: "user", Content: []conversationContentPart{{Type: "input_text", Text: text}},
	}})
}

// handleInbound dispatches a single decoded frame per §4.L's incoming-event
// table.
func (s *Session) handleInbound(ctx context.Context, env inboundEnvelope) {
	switch env.Type {
	case "session.created", "session.updated":
		// nothing to react to; the session configuration is authoritative locally.
	case "input_audio_buffer.speech_started":
		s.interactionMgr.UpdateState(interaction.Listening, "speech_started")
	case "input_audio_buffer.speech_stopped":
		s.interactionMgr.UpdateState(interaction.Thinking, "speech_stopped")
	case "response.created":
		s.onResponseCreated()
	case "response.output_item.added":
		if env.Item.Type == "function_call" {
			s.registerPendingCall(env.Item.CallID, env.Item.Name)
		}
	case "response.function_call_arguments.delta":
		s.appendCallArgs(env.CallID, env.Delta)
	case "response.function_call_arguments.done":
		s.finalizeCallArgs(env.CallID, env.Arguments)
		go s.dispatchToolCall(ctx, env.CallID)
	case "response.text.delta", "response.output_audio_transcript.delta":
		s.interactionMgr.UpdateState(interaction.Speaking, "assistant_output")
	case "response.output_audio.delta":
		s.handlePlaybackAudioDelta(env.Delta)
	case "response.output_audio.done":
		s.onPlaybackDone()
	case "rate_limits.updated":
		s.recordRateLimits(env.RateLimits)
	case "error":
		s.handleProtocolError(env.Error.Message)
	default:
		log.Debug().Str("type", env.Type).Msg("realtime_unhandled_frame")
	}
}

// handleProtocolError classifies a provider "error" frame by substring, per
// §4.L's incoming-event table and §7's protocol-error taxonomy: a
// buffer-is-empty complaint is routine noise and silently ignored; an
// active-response complaint means the provider disagrees with our belief
// that no response is in flight, so we correct the flag defensively rather
// than desync; anything else is logged and the session continues.
func (s *Session) handleProtocolError(message string) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "buffer is empty"):
	case strings.Contains(lower, "active response"):
		s.mu.Lock()
		s.responseInProgress = true
		s.mu.Unlock()
	default:
		log.Error().Str("message", message).Msg("realtime_server_error")
	}
}

func (s *Session) onResponseCreated() {
	s.mu.Lock()
	s.responseInProgress = true
	s.audioBuf = nil
	s.mu.Unlock()
}

func (s *Session) registerPendingCall(callID, name string) {
	s.mu.Lock()
	s.pendingCalls[callID] = &pendingFunctionCall{Name: name}
	s.mu.Unlock()
}

func (s *Session) appendCallArgs(callID, delta string) {
	s.mu.Lock()
	if pc, ok := s.pendingCalls[callID]; ok {
		pc.Args += delta
	}
	s.mu.Unlock()
}

func (s *Session) finalizeCallArgs(callID, full string) {
	if full == "" {
		return
	}
	s.mu.Lock()
	if pc, ok := s.pendingCalls[callID]; ok {
		pc.Args = full
	}
	s.mu.Unlock()
}

func (s *Session) recordRateLimits(limits []RateLimit) {
	s.mu.Lock()
	s.rateLimits = limits
	s.mu.Unlock()
}

// RateLimits reports the most recently received rate_limits.updated values.
func (s *Session) RateLimits() []RateLimit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RateLimit, len(s.rateLimits))
	copy(out, s.rateLimits)
	return out
}

// dispatchToolCall runs governance review (when configured) on a completed
// function call and either executes it, parks it awaiting confirmation, or
// rejects it outright.
func (s *Session) dispatchToolCall(ctx context.Context, callID string) {
	s.mu.Lock()
	pc, ok := s.pendingCalls[callID]
	if ok {
		delete(s.pendingCalls, callID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	var args map[string]any
	if pc.Args != "" {
		_ = json.Unmarshal([]byte(pc.Args), &args)
	}
	if args == nil {
		args = map[string]any{}
	}

	if s.governance == nil {
		s.executeTool(ctx, callID, pc.Name, args, nil)
		return
	}

	action := s.governance.BuildActionPacket(pc.Name, callID, args)
	decision := s.governance.Review(action)

	switch decision.Status {
	case governance.Denied:
		payload, _ := json.Marshal(map[string]string{"error": "action denied: " + decision.Reason})
		s.finishToolCall(callID, payload, true)
	case governance.NeedsConfirmation:
		s.mu.Lock()
		s.phase = PhaseAwaitingConfirmation
		s.pendingConfirmation = &pendingConfirmation{action: action, rawArgs: args}
		s.mu.Unlock()
		if err := s.requestConfirmation(action); err != nil {
			log.Error().Err(err).Msg("realtime_confirmation_prompt_failed")
		}
	default:
		s.executeTool(ctx, callID, pc.Name, args, &action)
	}
}

func (s *Session) requestConfirmation(action governance.ActionPacket) error {
	text := fmt.Sprintf("I need your confirmation before I %s. Should I go ahead?", action.Name)
	if err := s.sendAssistantMessage(text); err != nil {
		return err
	}
	return s.enqueueResponseCreate(ResponseCreateRequest{
		Trigger: "confirmation_prompt", Origin: "assistant_message", ApprovalFlow: true,
		Payload: map[string]any{"tool": action.Name},
	})
}

func (s *Session) executeTool(ctx context.Context, callID, name string, args map[string]any, action *governance.ActionPacket) {
	raw, _ := json.Marshal(args)
	out := s.tools.Dispatch(ctx, name, raw)
	if action != nil && s.governance != nil {
		s.governance.RecordExecution(*action)
	}
	s.finishToolCall(callID, out, payloadHasError(out))
}

func payloadHasError(b []byte) bool {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return false
	}
	_, ok := m["error"]
	return ok
}

// finishToolCall sends the function_call_output item back, narrates a
// failure in plain language when the payload carried an error, and queues
// the follow-up response.create.
func (s *Session) finishToolCall(callID string, output []byte, isError bool) {
	item := functionCallOutputItem{Type: "function_call_output", CallID: callID, Output: string(output)}
	if err := s.sendFrame(outboundFrame{Type: "conversation.item.create", Item: item}); err != nil {
		log.Error().Err(err).Msg("realtime_function_output_send_failed")
		return
	}
	if isError {
		var errPayload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(output, &errPayload)
		if err := s.sendAssistantMessage("I couldn't complete that: " + errPayload.Error); err != nil {
			log.Error().Err(err).Msg("realtime_failure_narration_send_failed")
		}
	}
	if err := s.enqueueResponseCreate(ResponseCreateRequest{Trigger: "tool_result", Origin: "tool_result"}); err != nil {
		log.Error().Err(err).Msg("realtime_tool_followup_send_failed")
	}
}

func (s *Session) enqueueResponseCreate(req ResponseCreateRequest) error {
	s.mu.Lock()
	phase := s.phase
	s.mu.Unlock()

	if CanSendResponseCreate(phase, req) {
		return s.sendResponseCreate(req)
	}

	s.mu.Lock()
	s.responseQueue = append(s.responseQueue, req)
	s.mu.Unlock()
	return nil
}

func (s *Session) sendResponseCreate(req ResponseCreateRequest) error {
	return s.sendFrame(outboundFrame{Type: "response.create", Response: &responseCreateBody{Metadata: req.Payload}})
}

func (s *Session) drainResponseQueue() {
	s.mu.Lock()
	queue := s.responseQueue
	phase := s.phase
	s.mu.Unlock()

	remaining, err := DrainResponseCreateQueue(queue, phase, s.sendResponseCreate)
	if err != nil {
		log.Error().Err(err).Msg("realtime_queue_drain_failed")
	}

	s.mu.Lock()
	s.responseQueue = remaining
	s.mu.Unlock()
}

// HandleUserText processes one piece of transcribed (or typed) user input:
// it resolves a pending confirmation, short-circuits into the research
// subsystem when the text reads as a lookup request, and otherwise forwards
// it as a normal conversation turn.
func (s *Session) HandleUserText(ctx context.Context, text string) error {
	now := time.Now()
	if s.batteryTracker != nil {
		s.batteryTracker.RecordIfMentioned(text, now)
	}

	s.mu.Lock()
	phase := s.phase
	pending := s.pendingConfirmation
	s.mu.Unlock()

	if phase == PhaseAwaitingConfirmation && pending != nil {
		if isApproval(text) {
			s.mu.Lock()
			s.phase = PhaseNormal
			s.pendingConfirmation = nil
			s.mu.Unlock()
			s.executeTool(ctx, pending.action.CallID, pending.action.Name, pending.rawArgs, &pending.action)
			s.drainResponseQueue()
			return nil
		}
		if isDenial(text) {
			s.mu.Lock()
			s.phase = PhaseNormal
			s.pendingConfirmation = nil
			s.mu.Unlock()
			payload, _ := json.Marshal(map[string]string{"error": "user declined"})
			s.finishToolCall(pending.action.CallID, payload, true)
			s.drainResponseQueue()
			return nil
		}
		// Ambiguous reply: fall through and treat it as ordinary conversation
		// while the confirmation stays parked.
	}

	if HasResearchIntent(text) && s.researchSvc != nil {
		return s.handleResearchShortCircuit(ctx, text)
	}

	if err := s.sendUserMessage(text); err != nil {
		return err
	}
	return s.enqueueResponseCreate(ResponseCreateRequest{Trigger: "user_text", Origin: "user_text"})
}

func (s *Session) handleResearchShortCircuit(ctx context.Context, text string) error {
	packet, err := s.researchSvc.Request(ctx, research.Request{Prompt: text})
	if err != nil {
		log.Error().Err(err).Msg("realtime_research_request_failed")
	}
	b, _ := json.Marshal(packet)
	if err := s.sendSystemContext("research_result:" + string(b)); err != nil {
		return err
	}
	return s.enqueueResponseCreate(ResponseCreateRequest{Trigger: "research_result", Origin: "user_text"})
}

// Inject is the injector.InjectFunc the background event drain loop calls
// for each bus event. Battery-sourced events are additionally filtered
// through the default-silent battery response policy before admission.
func (s *Session) Inject(ctx context.Context, event eventbus.Event) error {
	now := time.Now()
	s.mu.Lock()
	phase := s.phase
	inProgress := s.responseInProgress
	s.mu.Unlock()

	if event.Source == "battery" && event.Priority != eventbus.PriorityCritical {
		signal := BatteryUpdateSignal{
			Severity:                 batteryMetadataString(event, "severity"),
			EnteredWarningOrCritical: sensors.EnteredWarningOrCritical(batteryMetadataString(event, "transition")),
		}
		askedRecently := s.batteryTracker != nil && s.batteryTracker.AskedRecently(now, BatteryResponseRecencyWindow)
		if !ShouldRequestBatteryResponse(signal, askedRecently) {
			return s.injectSilently(event)
		}
	}

	if s.admitter != nil && !s.admitter.CanAccept(event, phase, inProgress, now) {
		return nil
	}
	if s.admitter != nil {
		s.admitter.RecordAccepted(event, now)
	}

	if err := s.injectSilently(event); err != nil {
		return err
	}
	return s.enqueueResponseCreate(ResponseCreateRequest{
		Trigger: event.Kind, Origin: "injection", Payload: map[string]any{"source": event.Source},
	})
}

func (s *Session) injectSilently(event eventbus.Event) error {
	return s.sendSystemContext(event.Content)
}

func batteryMetadataString(event eventbus.Event, key string) string {
	if v, ok := event.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// Ready reports whether the session can currently accept injected events,
// matching injector.ReadyFunc's contract.
func (s *Session) Ready() bool {
	return true
}

// StimuliEmitFunc adapts the session's Inject method into a
// stimuli.EmitFunc for a debounce coordinator.
func (s *Session) StimuliEmitFunc() stimuli.EmitFunc {
	return func(trigger string, summary stimuli.Summary) {
		event := eventbus.Event{
			Source:    "stimuli",
			Kind:      trigger,
			Priority:  eventbus.PriorityNormal,
			Content:   fmt.Sprintf("stimulus %q occurred %d time(s) in the last window", trigger, summary.EventCount),
			Metadata:  map[string]any{"triggers": summary.Triggers, "counts": summary.Counts},
			DedupeKey: trigger,
			CreatedAt: time.Now(),
		}
		if err := s.Inject(context.Background(), event); err != nil {
			log.Error().Err(err).Msg("realtime_stimuli_inject_failed")
		}
	}
}

func (s *Session) handlePlaybackAudioDelta(b64 string) {
	chunk, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		log.Error().Err(err).Msg("realtime_audio_delta_decode_failed")
		return
	}

	s.mu.Lock()
	s.audioBuf = append(s.audioBuf, chunk...)
	flush := len(s.audioBuf) >= audioFlushThresholdB
	var out []byte
	if flush {
		out = s.audioBuf
		s.audioBuf = nil
	}
	s.mu.Unlock()

	if flush && s.player != nil {
		if err := s.player.PlayChunk(out); err != nil {
			log.Error().Err(err).Msg("realtime_playback_chunk_failed")
		}
	}
}

// onPlaybackDone flushes any residual buffered audio, suppresses the mic for
// micSuppressionWindow, clears the server-side input buffer so stray
// capture during suppression is discarded, and resumes the idle state.
func (s *Session) onPlaybackDone() {
	s.mu.Lock()
	out := s.audioBuf
	s.audioBuf = nil
	s.responseInProgress = false
	s.mu.Unlock()

	if len(out) > 0 && s.player != nil {
		if err := s.player.PlayChunk(out); err != nil {
			log.Error().Err(err).Msg("realtime_playback_flush_failed")
		}
	}

	s.suppressMic(micSuppressionWindow)
	if err := s.sendFrame(outboundFrame{Type: "input_audio_buffer.clear"}); err != nil {
		log.Error().Err(err).Msg("realtime_buffer_clear_failed")
	}

	s.interactionMgr.UpdateState(interaction.Idle, "playback_done")
	s.drainResponseQueue()
}

func (s *Session) suppressMic(d time.Duration) {
	s.mu.Lock()
	s.micSuppressedUntil = time.Now().Add(d)
	s.mu.Unlock()
}

func (s *Session) micSuppressed(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Before(s.micSuppressedUntil)
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.currentConn().Close()
}
