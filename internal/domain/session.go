package domain

import "time"

type AgentID string

type SessionState string

const (
	SessionIdle     SessionState = "idle"
	SessionPending  SessionState = "pending"
	SessionRunning  SessionState = "running"
	SessionDraining SessionState = "draining"
)

func (s SessionState) Active() bool {
	return s == SessionPending || s == SessionRunning || s == SessionDraining
}

type Session struct {
	ID        string
	Owner     AgentID
	Profile   IntensityProfile
	StartedAt time.Time
	State     SessionState
}

// ReleaseReason records why ownership of the device was cleared.
type ReleaseReason string

const (
	ReleaseCompleted      ReleaseReason = "completed"
	ReleaseWatchdog       ReleaseReason = "watchdog"
	ReleasePendingTimeout ReleaseReason = "pending_timeout"
	ReleaseForced         ReleaseReason = "forced"
)
