// Command theo is the companion core's main entry point: it wires every
// subsystem from §4 into a single running process and drives the realtime
// session against the external streaming conversational service.
//
// Hardware bring-up (I2C, PWM, camera, audio device enumeration) is an
// external collaborator per the specification's scope (§1); this binary
// wires the in-memory reference adapters the rest of the module ships with
// (memory-backed servos, fixed-reading sensor fakes, an in-memory gesture
// store) so the control loop runs end-to-end without real hardware
// attached. A deployment with real hardware supplies its own Servo /
// BatteryReader / EnvironmentReader / IMUReader / realtime.Player at this
// same seam — see wireSystem.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"theo/internal/alerts"
	"theo/internal/attention"
	"theo/internal/budget"
	"theo/internal/config"
	"theo/internal/eventbus"
	"theo/internal/gesture"
	"theo/internal/governance"
	"theo/internal/injector"
	"theo/internal/interaction"
	"theo/internal/logging"
	"theo/internal/memory"
	"theo/internal/motion"
	"theo/internal/realtime"
	"theo/internal/research"
	"theo/internal/sensors"
	"theo/internal/stimuli"
	"theo/internal/telemetry"
	"theo/internal/tools"
	"theo/internal/vision"
	"theo/internal/volume"
)

const localUserID = "local"

// stringSlice accumulates a repeated flag value; also absorbs trailing
// positional args so "--prompts a b c" and "--prompts a --prompts b" are
// both accepted, matching §6's "--prompts <text> [<text> …]" CLI contract.
type stringSlice []string

func (s *stringSlice) String() string { return strings.Join(*s, ",") }
func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load(".env.local")
	}

	var prompts stringSlice
	flag.Var(&prompts, "prompts", "an opening user prompt to send once connected (repeatable)")
	flag.Parse()
	prompts = append(prompts, flag.Args()...)

	if err := run(prompts); err != nil {
		log.Fatal().Err(err).Msg("theo_exited")
	}
}

func run(prompts []string) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireOpenAIKey(); err != nil {
		return err
	}
	logging.Init(cfg.LogPath, cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	otelHandle, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer func() { _ = otelHandle.Shutdown(context.Background()) }()

	sys, err := wireSystem(ctx, cfg)
	if err != nil {
		return fmt.Errorf("wire system: %w", err)
	}
	defer sys.Close()

	if err := sys.Session.Configure(); err != nil {
		return fmt.Errorf("configure session: %w", err)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return sys.Session.Run(gctx, nil) })
	group.Go(func() error { sys.Injector.Run(gctx); return nil })
	group.Go(func() error { return runSensorLoops(gctx, sys) })

	for _, p := range prompts {
		prompt := p
		group.Go(func() error { return sys.Session.HandleUserText(gctx, prompt) })
	}

	if err := group.Wait(); err != nil && gctx.Err() == nil {
		return err
	}
	return nil
}

// system bundles every long-lived collaborator the composition root
// constructs, torn down in reverse dependency order by Close, matching
// §5's singleton-teardown rule.
type system struct {
	Bus              *eventbus.Bus
	MotionController *motion.Controller
	Session          *realtime.Session
	Injector         *injector.Injector

	batteryReader tools.BatteryReader
	imuReader     tools.IMUReader
	batteryMon    *sensors.BatteryMonitor
	imuClassifier *sensors.IMUClassifier
	alertPolicy   *alerts.Policy

	// Attention, Camera, and Stimuli are armed for a real camera/vision
	// worker to drive (camera bring-up is an external collaborator per
	// §1): this binary constructs and wires them but has no frame source
	// to feed, so they sit idle rather than producing events.
	Attention *attention.Controller
	Camera    *vision.CameraChangePolicy
	Stimuli   *stimuli.Coordinator

	redisClient redis.UniversalClient
	kafkaMirror *eventbus.KafkaMirror
}

func (s *system) Close() {
	s.MotionController.StopControlLoop()
	s.Bus.Close()
	if s.kafkaMirror != nil {
		s.kafkaMirror.Close()
	}
	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}
	_ = s.Session.Close()
}

// wireSystem constructs every subsystem named in §4 and threads them into
// the realtime session, the dependency-injected composition root called
// for by §9 ("the get_instance idiom disappears").
func wireSystem(ctx context.Context, cfg config.Config) (*system, error) {
	bus := eventbus.New(cfg.EventBusMaxLen)

	var mirror *eventbus.KafkaMirror
	if cfg.Kafka.Enabled {
		mirror = eventbus.NewKafkaMirror(eventbus.KafkaMirrorConfig{
			Enabled: true, Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic,
		})
		bus.SetMirror(mirror)
	}

	registry := motion.NewMemoryRegistry(
		motion.NewMemoryServo("pan", 0, -90, 90),
		motion.NewMemoryServo("tilt", 0, -45, 45),
	)
	motionCtrl := motion.NewController(registry, motion.Config{
		TickPeriod:         time.Duration(cfg.Motion.TickPeriodMs) * time.Millisecond,
		FailOpenOnDeadline: cfg.Motion.FailOpenOnDeadline,
		TransitionMs:       cfg.Motion.TransitionMs,
	})
	motionCtrl.StartControlLoop(ctx)

	gestureLib, err := gesture.Load(&gesture.InMemoryStore{})
	if err != nil {
		return nil, fmt.Errorf("load gesture library: %w", err)
	}
	servoLimits := map[string]gesture.ServoLimits{
		"pan":  {Min: -90, Max: 90},
		"tilt": {Min: -45, Max: 45},
	}

	var redisClient redis.UniversalClient
	var toolCallsBudget, expensiveBudget budget.Limiter
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		toolCallsBudget = budget.NewDistributedWindow(redisClient, "theo:tool_calls_per_minute", cfg.Autonomy.ToolCallsPerMinute, time.Minute)
		expensiveBudget = budget.NewDistributedWindow(redisClient, "theo:expensive_calls_per_day", cfg.Autonomy.ExpensiveCallsPerDay, 24*time.Hour)
	} else {
		toolCallsBudget = budget.New(cfg.Autonomy.ToolCallsPerMinute, time.Minute, "tool_calls_per_minute")
		expensiveBudget = budget.New(cfg.Autonomy.ExpensiveCallsPerDay, 24*time.Hour, "expensive_calls_per_day")
	}
	governanceLayer := governance.NewWithBudgets(nil, governance.Config{
		AutonomyLevel:        cfg.Autonomy.Level,
		ToolCallsPerMinute:   cfg.Autonomy.ToolCallsPerMinute,
		ExpensiveCallsPerDay: cfg.Autonomy.ExpensiveCallsPerDay,
		RiskThreshold:        cfg.Autonomy.RiskThreshold,
	}, toolCallsBudget, expensiveBudget)

	batteryMon := sensors.NewBatteryMonitor(sensors.DefaultBatteryConfig())
	imuClassifier := sensors.NewIMUClassifier(sensors.DefaultIMUConfig())
	alertPolicy := alerts.FromConfig(alerts.Config{})

	volumeCtrl := volume.New(volume.NewMemoryBackend(50), volume.DefaultConfig())
	profileStore := memory.NewInMemoryProfileStore()
	memoryStore := memory.NewInMemoryMemoryStore()
	reflectionStore := memory.NewInMemoryReflectionStore()

	var researchSvc research.Service = research.NewNullService()
	if cfg.Research.Enabled {
		log.Info().Msg("research_enabled_no_search_provider_configured_falling_back_to_null_service")
	}

	batteryReader := fixedBatteryReader{voltage: 8.0}
	envReader := fixedEnvironmentReader{sample: sensors.EnvironmentSample{PressureHPa: 1013.25, TemperatureC: 21.0}}
	imuReader := fixedIMUReader{}

	interactionMgr := interaction.New(interaction.DefaultCueConfig())
	wireCues(interactionMgr, motionCtrl, gestureLib, servoLimits)

	catalog := tools.NewCatalog(tools.CatalogDeps{
		BatteryReader:     batteryReader,
		EnvironmentReader: envReader,
		IMUReader:         imuReader,
		BatteryMonitor:    batteryMon,
		IMUClassifier:     imuClassifier,
		GestureLibrary:    gestureLib,
		MotionController:  motionCtrl,
		ServoRegistry:     registry,
		ServoLimits:       servoLimits,
		ProfileStore:      profileStore,
		UserID:            localUserID,
		VolumeController:  volumeCtrl,
		MemoryStore:       memoryStore,
		ResearchService:   researchSvc,
	})

	conn, err := dialRealtime(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("dial realtime endpoint: %w", err)
	}

	profile, haveProfile := profileStore.Get(localUserID)
	sessionConfig := realtime.SessionConfig{
		Model:             cfg.Voice.Model,
		Voice:             cfg.Voice.Voice,
		OutputModalities:  []string{"audio", "text"},
		InputAudioFormat:  "pcm16",
		OutputAudioFormat: "pcm16",
		TurnDetection: realtime.VADConfig{
			Type:              "server_vad",
			Threshold:         cfg.Voice.SilenceThresholdDB,
			PrefixPaddingMs:   cfg.Voice.PrefixPaddingMs,
			SilenceDurationMs: cfg.Voice.SilenceDurationMs,
			CreateResponse:    cfg.Voice.CreateResponseOnEnd,
			InterruptResponse: cfg.Voice.InterruptOnSpeech,
		},
		Instructions: instructionsFor(profile, haveProfile, reflectionStore.RecentLessons(5)),
	}

	triggerCooldown := time.Duration(cfg.StimulusCooldownMs) * time.Millisecond
	session := realtime.NewSession(conn, sessionConfig, realtime.Dependencies{
		Tools:          catalog,
		Governance:     governanceLayer,
		Admitter:       realtime.NewStimulusAdmitter(cfg.InjectionPerMinute, triggerCooldown),
		BatteryTracker: &realtime.BatteryQueryTracker{},
		Interaction:    interactionMgr,
		Research:       researchSvc,
		Player:         loggingPlayer{},
		Dialer: func(ctx context.Context) (realtime.WireConn, error) {
			return dialRealtime(ctx, cfg)
		},
	})

	stimuliCoordinator := stimuli.New(time.Duration(cfg.StimulusCooldownMs/3)*time.Millisecond, triggerCooldown, session.StimuliEmitFunc())
	attn := attention.New(attention.DefaultConfig())
	camera := vision.New(vision.DefaultConfig())

	inj := injector.New(bus, session.Ready, session.Inject, injector.Config{DefaultCooldown: triggerCooldown})

	return &system{
		Bus:              bus,
		MotionController: motionCtrl,
		Session:          session,
		Injector:         inj,
		batteryReader:    batteryReader,
		imuReader:        imuReader,
		batteryMon:       batteryMon,
		imuClassifier:    imuClassifier,
		alertPolicy:      alertPolicy,
		Attention:        attn,
		Camera:           camera,
		Stimuli:          stimuliCoordinator,
		redisClient:      redisClient,
		kafkaMirror:      mirror,
	}, nil
}

// wireCues installs the interaction manager's gesture handler, translating
// a cue-eligible state transition into a gesture Action on the motion
// controller. The gesture depends only on the state entered (see
// realtime.CueGestureForState): attention snap on LISTENING, curious tilt
// on THINKING, nod on SPEAKING, idle otherwise. The state left is not
// consulted, so there is no separate SPEAKING→IDLE nod. A cue is dropped
// while the motion controller is moving or has queued actions.
func wireCues(mgr *interaction.Manager, motionCtrl *motion.Controller, gestureLib *gesture.Library, limits map[string]gesture.ServoLimits) {
	mgr.SetGestureHandler(func(state interaction.State) {
		if motionCtrl.IsMoving() || motionCtrl.QueueLen() > 0 {
			return
		}
		name := realtime.CueGestureForState(state)
		action, err := gestureLib.BuildAction(name, 0, 1.0, motionCtrl.CurrentPosition(), limits, time.Now().UnixMilli())
		if err != nil {
			log.Warn().Err(err).Str("gesture", name).Msg("cue_gesture_build_failed")
			return
		}
		motionCtrl.AddActionToQueue(action)
	})
}

func instructionsFor(profile memory.Profile, haveProfile bool, lessons []string) string {
	var b strings.Builder
	b.WriteString(soulPrompt)
	if haveProfile {
		b.WriteString("\n\nUser profile:\n")
		fmt.Fprintf(&b, "name=%s preferences=%v favorites=%v", profile.Name, profile.Preferences, profile.Favorites)
	}
	if len(lessons) > 0 {
		b.WriteString("\n\nLessons from past reflections:\n- ")
		b.WriteString(strings.Join(lessons, "\n- "))
	}
	return b.String()
}

const soulPrompt = `You are Theo, a small companion robot. Speak briefly and warmly, ` +
	`narrate your intentions before acting, and never take an irreversible ` +
	`action without the user's explicit go-ahead.`

func runSensorLoops(ctx context.Context, s *system) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sampleBattery(ctx, s)
			sampleIMU(ctx, s)
		}
	}
}

func sampleBattery(ctx context.Context, s *system) {
	voltage, err := s.batteryReader.ReadVoltage(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("battery_read_failed")
		return
	}
	status, clear := s.batteryMon.Sample(voltage)
	publishBatteryStatus(s, status)
	if clear != nil {
		publishBatteryStatus(s, *clear)
	}
}

func publishBatteryStatus(s *system, status sensors.BatteryStatus) {
	requestResponse := status.Severity == "critical" || sensors.EnteredWarningOrCritical(status.Transition)
	s.alertPolicy.Emit(s.Bus, alerts.Alert{
		Key:      "battery:" + status.EventType,
		Source:   "battery",
		Message:  fmt.Sprintf("battery %.0f%% (%s)", status.PercentOfRange*100, status.Severity),
		Severity: status.Severity,
		Metadata: map[string]any{
			"voltage":          status.Voltage,
			"percent_of_range": status.PercentOfRange,
			"severity":         status.Severity,
			"event_type":       status.EventType,
			"transition":       status.Transition,
			"delta_percent":    status.DeltaPercent,
			"rapid_drop":       status.RapidDrop,
		},
		RequestResponse: &requestResponse,
	}, time.Now())
}

func sampleIMU(ctx context.Context, s *system) {
	sample, err := s.imuReader.ReadIMU(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("imu_read_failed")
		return
	}
	for _, ev := range s.imuClassifier.Classify(sample) {
		s.alertPolicy.Emit(s.Bus, alerts.Alert{
			Key:      "imu:" + ev.EventType,
			Source:   "imu",
			Message:  "imu event: " + ev.EventType,
			Severity: ev.Severity,
			Metadata: map[string]any{"event_type": ev.EventType, "severity": ev.Severity, "details": ev.Details},
		}, time.Now())
	}
}

// defaultRealtimeEndpoint is the provider's streaming session endpoint; a
// deployment may override it via the REALTIME_ENDPOINT env var.
const defaultRealtimeEndpoint = "wss://api.openai.com/v1/realtime"

func dialRealtime(ctx context.Context, cfg config.Config) (*websocket.Conn, error) {
	endpoint := os.Getenv("REALTIME_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultRealtimeEndpoint + "?model=" + cfg.Voice.Model
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+cfg.OpenAIAPIKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// fixedBatteryReader/fixedEnvironmentReader/fixedIMUReader are placeholders
// for the real ADS1015/LPS22HB/ICM20948 I2C adapters (external
// collaborators per §1). They report a steady, unremarkable signal so the
// control loop's wiring can be exercised without hardware attached.
type fixedBatteryReader struct{ voltage float64 }

func (r fixedBatteryReader) ReadVoltage(context.Context) (float64, error) { return r.voltage, nil }

type fixedEnvironmentReader struct{ sample sensors.EnvironmentSample }

func (r fixedEnvironmentReader) ReadEnvironment(context.Context) (sensors.EnvironmentSample, error) {
	return r.sample, nil
}

type fixedIMUReader struct{}

func (fixedIMUReader) ReadIMU(context.Context) (sensors.IMUSample, error) {
	return sensors.IMUSample{}, nil
}

// loggingPlayer stands in for the onboard speaker (audio device I/O is an
// external collaborator per §1): it just logs how much audio it would have
// played.
type loggingPlayer struct{}

func (loggingPlayer) PlayChunk(pcm []byte) error {
	log.Debug().Int("bytes", len(pcm)).Msg("playback_chunk")
	return nil
}
