package lifecycle

// Stage is the named phase of the specimen's life. Exactly one stage is
// current at any time; transitions report the destination stage immediately
// with progress ramping from 0 to 1.
type Stage int

const (
	StageHealthy Stage = iota
	StagePanic
	StageDecay
	StageDeath
	StagePirate
)

// String returns the stage name used in config files and logs
func (s Stage) String() string {
	switch s {
	case StageHealthy:
		return "healthy"
	case StagePanic:
		return "panic"
	case StageDecay:
		return "decay"
	case StageDeath:
		return "death"
	case StagePirate:
		return "pirate"
	default:
		return "unknown"
	}
}

// ParseStage maps a stage name to its Stage value
func ParseStage(name string) (Stage, bool) {
	switch name {
	case "healthy":
		return StageHealthy, true
	case "panic":
		return StagePanic, true
	case "decay":
		return StageDecay, true
	case "death":
		return StageDeath, true
	case "pirate":
		return StagePirate, true
	default:
		return StageHealthy, false
	}
}

// Stages lists all stages in lifecycle order
func Stages() []Stage {
	return []Stage{StageHealthy, StagePanic, StageDecay, StageDeath, StagePirate}
}

// Mode selects how the controller drives the lifecycle
type Mode int

const (
	// ModeStandard runs the timed decay from healthy through death
	ModeStandard Mode = iota
	// ModePermanent freezes the lifecycle at the pirate stage, no timer runs
	ModePermanent
)

// State is a read-only snapshot of the controller's condition, handed to
// subscribers on each broadcast. Subscribers must not retain or mutate it
// expecting to affect the controller.
type State struct {
	Stage         Stage
	Progress      float64
	Dead          bool
	Transitioning bool
}

// Subscriber receives stage broadcasts. A nil Subscriber is silently ignored
// at registration. Broadcast order is registration order.
type Subscriber func(stage Stage, progress float64)
