// Package config loads the machine tuning file. Every constant a
// designer might retune (speeds, thresholds, timeouts) lives here; the
// physics solver constants stay compiled in.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is relative to the process working directory.
const DefaultPath = "config/clawroom.yaml"

type Claw struct {
	MoveSpeed      float32 `yaml:"move_speed"`      // manual travel, units/sec
	DescendSpeed   float32 `yaml:"descend_speed"`   // units/sec
	AscendSpeed    float32 `yaml:"ascend_speed"`    // units/sec
	LerpRate       float32 `yaml:"lerp_rate"`       // exponential smoothing rate for delivery/return moves
	ArriveEpsilon  float32 `yaml:"arrive_epsilon"`  // completion distance for smoothed moves
	GrabThreshold  int     `yaml:"grab_threshold"`  // fingers that must touch the same object
	FingerMaxSteps int     `yaml:"finger_max_steps"`
	FingerStepSecs float32 `yaml:"finger_step_secs"`
	GrabDepth      float32 `yaml:"grab_depth"`      // how far below the top object the claw reaches
	FloorMargin    float32 `yaml:"floor_margin"`    // lowest descent above the floor
	HoldOffset     float32 `yaml:"hold_offset"`     // held object hangs this far below the head
	ReleaseTimeout float32 `yaml:"release_timeout"` // seconds before a stuck release force-resets
	SettleDelay    float32 `yaml:"settle_delay"`    // pause after fingers reopen
}

type Candy struct {
	GateTravel     float32 `yaml:"gate_travel"`
	GateSpeed      float32 `yaml:"gate_speed"`
	TransportSpeed float32 `yaml:"transport_speed"`
	DoorOpenSecs   float32 `yaml:"door_open_secs"`
	EjectSecs      float32 `yaml:"eject_secs"`
	EjectArcHeight float32 `yaml:"eject_arc_height"`
	KnobSecs       float32 `yaml:"knob_secs"`
	SequenceLimit  float32 `yaml:"sequence_limit"` // hard abort for a wedged sequence
}

type Physics struct {
	GravityY float32 `yaml:"gravity_y"`
}

type Config struct {
	Physics Physics `yaml:"physics"`
	Claw    Claw    `yaml:"claw"`
	Candy   Candy   `yaml:"candy"`
}

// Default returns the shipped tuning.
func Default() Config {
	return Config{
		Physics: Physics{GravityY: -20.0},
		Claw: Claw{
			MoveSpeed:      2.2,
			DescendSpeed:   1.6,
			AscendSpeed:    1.8,
			LerpRate:       4.0,
			ArriveEpsilon:  0.02,
			GrabThreshold:  2,
			FingerMaxSteps: 60,
			FingerStepSecs: 0.02,
			GrabDepth:      0.15,
			FloorMargin:    0.35,
			HoldOffset:     0.55,
			ReleaseTimeout: 3.0,
			SettleDelay:    0.4,
		},
		Candy: Candy{
			GateTravel:     0.6,
			GateSpeed:      0.8,
			TransportSpeed: 1.2,
			DoorOpenSecs:   0.5,
			EjectSecs:      0.9,
			EjectArcHeight: 0.45,
			KnobSecs:       1.6,
			SequenceLimit:  12.0,
		},
	}
}

// Load reads tuning from path. A missing or malformed file is not an
// error: the game must start with defaults rather than refuse to run.
func Load(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default()
	}
	return cfg
}
