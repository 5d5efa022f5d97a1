package tools

import (
	"theo/internal/gesture"
	"theo/internal/memory"
	"theo/internal/motion"
	"theo/internal/research"
	"theo/internal/sensors"
	"theo/internal/volume"
)

// CatalogDeps collects every collaborator the full tool catalog needs.
// The composition root builds one of these once at startup and passes it
// to NewCatalog.
type CatalogDeps struct {
	BatteryReader     BatteryReader
	EnvironmentReader EnvironmentReader
	IMUReader         IMUReader
	BatteryMonitor    *sensors.BatteryMonitor
	IMUClassifier     *sensors.IMUClassifier

	GestureLibrary    *gesture.Library
	MotionController  *motion.Controller
	ServoRegistry     motion.Registry
	ServoLimits       map[string]gesture.ServoLimits

	ProfileStore memory.ProfileStore
	UserID       string

	VolumeController *volume.Controller

	MemoryStore memory.MemoryStore

	ResearchService research.Service
}

// NewCatalog builds a Registry with every §6 tool registered against
// deps.
func NewCatalog(deps CatalogDeps) Registry {
	reg := NewRegistry()

	RegisterSensorTools(reg, deps.BatteryReader, deps.EnvironmentReader, deps.IMUReader, deps.BatteryMonitor, deps.IMUClassifier)
	RegisterGestureTools(reg, deps.GestureLibrary, deps.MotionController, deps.ServoLimits)
	RegisterMotionTools(reg, deps.MotionController, deps.ServoRegistry)
	RegisterProfileTools(reg, deps.ProfileStore, deps.UserID)
	RegisterVolumeTools(reg, deps.VolumeController)
	RegisterMemoryTools(reg, deps.MemoryStore)
	RegisterResearchTools(reg, deps.ResearchService)

	return reg
}
