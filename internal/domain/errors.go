package domain

import "errors"

var (
	ErrConnection          = errors.New("device connection error")
	ErrProtocolDesync      = errors.New("protocol frame desync")
	ErrSessionDenied       = errors.New("session denied")
	ErrCooldownActive      = errors.New("cooldown active")
	ErrDeviceBusy          = errors.New("device busy")
	ErrWatchdogTimeout     = errors.New("session watchdog timeout")
	ErrCalibrationRequired = errors.New("calibration required")
	ErrCalibrationNotFound = errors.New("calibration not found")
	ErrNotOwner            = errors.New("agent does not own the device")
	ErrNoTelemetry         = errors.New("no telemetry received")
	ErrUnknownProfile      = errors.New("unknown intensity profile")
)
