package envconfigs

// TrackingStrategy selects how usage telemetry is emitted.
type TrackingStrategy string

const (
	TrackingStrategyLogging TrackingStrategy = "LOGGING"
	TrackingStrategySegment TrackingStrategy = "SEGMENT"
)

func matchTrackingStrategy(s string) (TrackingStrategy, bool) {
	switch ts := TrackingStrategy(s); ts {
	case TrackingStrategyLogging, TrackingStrategySegment:
		return ts, true
	}
	return "", false
}

// WorkerEnvironment selects where jobs are launched.
type WorkerEnvironment string

const (
	WorkerEnvironmentDocker     WorkerEnvironment = "DOCKER"
	WorkerEnvironmentKubernetes WorkerEnvironment = "KUBERNETES"
)

func matchWorkerEnvironment(s string) (WorkerEnvironment, bool) {
	switch we := WorkerEnvironment(s); we {
	case WorkerEnvironmentDocker, WorkerEnvironmentKubernetes:
		return we, true
	}
	return "", false
}
