package gesture

// DefaultDefinitions are seeded into the library whenever they are missing,
// matching the reference implementation's DEFAULT_GESTURES.
var DefaultDefinitions = []Definition{
	{
		Name:     "idle",
		Priority: 1,
		Frames: []FrameSpec{
			{Name: "idle-left", PanOffset: -4, TiltOffset: 2.5, DurationMs: 1200},
			{Name: "idle-right", PanOffset: 4, TiltOffset: -2.5, DurationMs: 1200},
			{Name: "idle-center", PanOffset: 0, TiltOffset: 0, DurationMs: 1000},
		},
	},
	{
		Name:     "nod",
		Priority: 2,
		Frames: []FrameSpec{
			{Name: "nod-down", PanOffset: 0, TiltOffset: -10, DurationMs: 350},
			{Name: "nod-up", PanOffset: 0, TiltOffset: 10, DurationMs: 350},
			{Name: "nod-center", PanOffset: 0, TiltOffset: 0, DurationMs: 400},
		},
	},
	{
		Name:     "no",
		Priority: 2,
		Frames: []FrameSpec{
			{Name: "no-left", PanOffset: -12, TiltOffset: 0, DurationMs: 300},
			{Name: "no-right", PanOffset: 12, TiltOffset: 0, DurationMs: 300},
			{Name: "no-left-return", PanOffset: -8, TiltOffset: 0, DurationMs: 250},
			{Name: "no-center", PanOffset: 0, TiltOffset: 0, DurationMs: 350},
		},
	},
	{
		Name:     "look_around",
		Priority: 1,
		Frames: []FrameSpec{
			{Name: "look-left", PanOffset: -16, TiltOffset: 3, DurationMs: 700},
			{Name: "look-right", PanOffset: 16, TiltOffset: 3, DurationMs: 800},
			{Name: "look-center", PanOffset: 0, TiltOffset: 0, DurationMs: 700},
		},
	},
	{
		Name:     "look_up",
		Priority: 2,
		Frames:   []FrameSpec{{Name: "look-up", PanOffset: 0, TiltOffset: 999, DurationMs: 600}},
	},
	{
		Name:     "look_left",
		Priority: 2,
		Frames:   []FrameSpec{{Name: "look-left", PanOffset: -999, TiltOffset: 0, DurationMs: 600}},
	},
	{
		Name:     "look_right",
		Priority: 2,
		Frames:   []FrameSpec{{Name: "look-right", PanOffset: 999, TiltOffset: 0, DurationMs: 600}},
	},
	{
		Name:     "look_down",
		Priority: 2,
		Frames:   []FrameSpec{{Name: "look-down", PanOffset: 0, TiltOffset: -999, DurationMs: 600}},
	},
	{
		Name:     "curious_tilt",
		Priority: 1,
		Frames: []FrameSpec{
			{Name: "tilt-up", PanOffset: 0, TiltOffset: 8, DurationMs: 500},
			{Name: "tilt-down", PanOffset: 0, TiltOffset: -8, DurationMs: 500},
			{Name: "tilt-center", PanOffset: 0, TiltOffset: 0, DurationMs: 450},
		},
	},
	{
		Name:     "attention_snap",
		Priority: 2,
		Frames: []FrameSpec{
			{Name: "snap-right", PanOffset: 10, TiltOffset: 2, DurationMs: 250},
			{Name: "snap-hold", PanOffset: 10, TiltOffset: 2, DurationMs: 300},
			{Name: "snap-center", PanOffset: 0, TiltOffset: 0, DurationMs: 400},
		},
	},
}
