package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theo/internal/gesture"
	"theo/internal/memory"
	"theo/internal/motion"
	"theo/internal/research"
	"theo/internal/sensors"
	"theo/internal/volume"
)

type fakeBattery struct{ voltage float64 }

func (f fakeBattery) ReadVoltage(context.Context) (float64, error) { return f.voltage, nil }

type fakeEnv struct{ sample sensors.EnvironmentSample }

func (f fakeEnv) ReadEnvironment(context.Context) (sensors.EnvironmentSample, error) {
	return f.sample, nil
}

type fakeIMU struct{ sample sensors.IMUSample }

func (f fakeIMU) ReadIMU(context.Context) (sensors.IMUSample, error) { return f.sample, nil }

func buildTestCatalog(t *testing.T) Registry {
	t.Helper()
	lib, err := gesture.Load(&gesture.InMemoryStore{})
	require.NoError(t, err)

	servoRegistry := motion.NewMemoryRegistry(
		motion.NewMemoryServo("pan", 0, -90, 90),
		motion.NewMemoryServo("tilt", 0, -45, 45),
	)
	controller := motion.NewController(servoRegistry, motion.Config{})

	limits := map[string]gesture.ServoLimits{
		"pan":  {Min: -90, Max: 90},
		"tilt": {Min: -45, Max: 45},
	}

	deps := CatalogDeps{
		BatteryReader:     fakeBattery{voltage: 8.0},
		EnvironmentReader: fakeEnv{sample: sensors.EnvironmentSample{PressureHPa: 1013, TemperatureC: 21}},
		IMUReader:         fakeIMU{sample: sensors.IMUSample{}},
		BatteryMonitor:    sensors.NewBatteryMonitor(sensors.DefaultBatteryConfig()),
		IMUClassifier:     sensors.NewIMUClassifier(sensors.DefaultIMUConfig()),
		GestureLibrary:    lib,
		MotionController:  controller,
		ServoRegistry:     servoRegistry,
		ServoLimits:       limits,
		ProfileStore:      memory.NewInMemoryProfileStore(),
		UserID:            "alice",
		VolumeController:  volume.New(volume.NewMemoryBackend(50), volume.DefaultConfig()),
		MemoryStore:       memory.NewInMemoryMemoryStore(),
		ResearchService:   research.NewNullService(),
	}
	return NewCatalog(deps)
}

func TestCatalogRegistersEveryToolFromTheCatalogList(t *testing.T) {
	reg := buildTestCatalog(t)
	schemas := reg.Schemas()

	expected := []string{
		"read_battery_voltage", "read_environment", "read_imu_data",
		"gesture_idle", "gesture_nod", "gesture_no", "gesture_look_around", "gesture_curious_tilt", "gesture_attention_snap",
		"set_pan", "set_tilt", "get_servo_position",
		"update_user_profile",
		"get_output_volume", "set_output_volume",
		"remember_memory", "recall_memories", "forget_memory",
		"perform_research",
	}
	names := make(map[string]bool, len(schemas))
	for _, s := range schemas {
		names[s.Name] = true
	}
	for _, want := range expected {
		assert.True(t, names[want], "expected tool %q to be registered", want)
	}
}

func TestDispatchReadBatteryVoltage(t *testing.T) {
	reg := buildTestCatalog(t)
	out := reg.Dispatch(context.Background(), "read_battery_voltage", nil)
	var status sensors.BatteryStatus
	require.NoError(t, json.Unmarshal(out, &status))
	assert.Equal(t, 8.0, status.Voltage)
}

func TestDispatchSetPanQueuesAction(t *testing.T) {
	reg := buildTestCatalog(t)
	out := reg.Dispatch(context.Background(), "set_pan", json.RawMessage(`{"degrees": 30}`))
	var result map[string]any
	require.NoError(t, json.Unmarshal(out, &result))
	assert.Equal(t, "queued", result["status"])
}

func TestDispatchGestureQueuesAction(t *testing.T) {
	reg := buildTestCatalog(t)
	out := reg.Dispatch(context.Background(), "gesture_nod", json.RawMessage(`{"delay_ms": 0, "intensity": 1.0}`))
	var result map[string]any
	require.NoError(t, json.Unmarshal(out, &result))
	assert.Equal(t, "queued", result["status"])
}

func TestDispatchMemoryRoundTrip(t *testing.T) {
	reg := buildTestCatalog(t)
	reg.Dispatch(context.Background(), "remember_memory", json.RawMessage(`{"content": "likes jazz", "importance": 3}`))
	out := reg.Dispatch(context.Background(), "recall_memories", json.RawMessage(`{"query": "jazz", "limit": 5}`))
	var entries []memory.Entry
	require.NoError(t, json.Unmarshal(out, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "likes jazz", entries[0].Content)
}

func TestCatalogDispatchUnknownToolReturnsErrorPayload(t *testing.T) {
	reg := buildTestCatalog(t)
	out := reg.Dispatch(context.Background(), "nonexistent_tool", nil)
	var result map[string]string
	require.NoError(t, json.Unmarshal(out, &result))
	assert.Contains(t, result["error"], "not found")
}

func TestDispatchSetOutputVolumeOutOfRangeReturnsErrorPayload(t *testing.T) {
	reg := buildTestCatalog(t)
	out := reg.Dispatch(context.Background(), "set_output_volume", json.RawMessage(`{"percent": 500}`))
	var result map[string]string
	require.NoError(t, json.Unmarshal(out, &result))
	assert.NotEmpty(t, result["error"])
}

func TestDispatchPerformResearchReturnsDisabledPacket(t *testing.T) {
	reg := buildTestCatalog(t)
	out := reg.Dispatch(context.Background(), "perform_research", json.RawMessage(`{"query": "voltage regulator datasheet"}`))
	var packet research.Packet
	require.NoError(t, json.Unmarshal(out, &packet))
	assert.Equal(t, "disabled", packet.Status)
}
