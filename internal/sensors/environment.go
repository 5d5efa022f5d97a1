package sensors

// EnvironmentSample is the plain pressure/temperature reading the
// read_environment tool reports, grounded on hardware/lps22hb_sensor.py's
// read_value (air_pressure hPa, air_temperature degC). Unlike battery and
// IMU, the source applies no severity classification to environment
// readings — they are reported as-is.
type EnvironmentSample struct {
	PressureHPa    float64
	TemperatureC   float64
}
