package tools

import (
	"context"
	"encoding/json"

	"theo/internal/sensors"
)

// BatteryReader samples the current battery voltage. The real ADS1015
// I2C read is an external collaborator per the specification's scope;
// this is the seam a hardware adapter implements.
type BatteryReader interface {
	ReadVoltage(ctx context.Context) (float64, error)
}

// EnvironmentReader samples the current pressure/temperature pair. The
// real LPS22HB I2C read is an external collaborator.
type EnvironmentReader interface {
	ReadEnvironment(ctx context.Context) (sensors.EnvironmentSample, error)
}

// IMUReader samples the current IMU orientation/gyro reading. The real
// ICM20948 I2C read is an external collaborator.
type IMUReader interface {
	ReadIMU(ctx context.Context) (sensors.IMUSample, error)
}

// RegisterSensorTools adds the three read-only sensor tools to reg,
// reusing the battery/IMU classifiers so a tool call reports the same
// severity the background monitors would emit.
func RegisterSensorTools(reg Registry, battery BatteryReader, env EnvironmentReader, imu IMUReader, batteryMonitor *sensors.BatteryMonitor, imuClassifier *sensors.IMUClassifier) {
	reg.Register(NewFuncTool("read_battery_voltage", Schema{
		Description: "Read the current battery voltage and charge status.",
		Parameters:  objectSchema(nil),
	}, func(ctx context.Context, _ json.RawMessage) (any, error) {
		voltage, err := battery.ReadVoltage(ctx)
		if err != nil {
			return nil, err
		}
		status, _ := batteryMonitor.Sample(voltage)
		return status, nil
	}))

	reg.Register(NewFuncTool("read_environment", Schema{
		Description: "Read the current ambient pressure and temperature.",
		Parameters:  objectSchema(nil),
	}, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return env.ReadEnvironment(ctx)
	}))

	reg.Register(NewFuncTool("read_imu_data", Schema{
		Description: "Read the current IMU orientation and classify any motion event.",
		Parameters:  objectSchema(nil),
	}, func(ctx context.Context, _ json.RawMessage) (any, error) {
		sample, err := imu.ReadIMU(ctx)
		if err != nil {
			return nil, err
		}
		events := imuClassifier.Classify(sample)
		return map[string]any{"sample": sample, "events": events}, nil
	}))
}
