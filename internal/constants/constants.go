package constants

import "time"

// Room phase and configuration constants
const (
	PhaseSetup     = "setup"
	PhaseCountdown = "countdown"
	PhaseTest      = "test"
	PhaseResults   = "results"

	MaxParticipants = 8
	MaxUsernameLen  = 20

	CountdownStart       = 5
	CountdownTick        = time.Second
	SubmissionGrace      = 5 * time.Second
	ResultsResetDelay    = 10 * time.Second
	DefaultTimerDuration = 30

	WordsPerTest = 200

	RoomMaxIdle   = 24 * time.Hour
	SweepInterval = time.Hour
	StatsInterval = 2 * time.Minute
)

// AllowedDurations lists the timer durations (seconds) a host may configure.
var AllowedDurations = []int{15, 30, 60, 120}

func IsAllowedDuration(seconds int) bool {
	for _, d := range AllowedDurations {
		if d == seconds {
			return true
		}
	}
	return false
}
