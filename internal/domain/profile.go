package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type IntensityProfile string

const (
	ProfileWeak   IntensityProfile = "weak"
	ProfileMiddle IntensityProfile = "middle"
	ProfileStrong IntensityProfile = "strong"
)

// Balance curve working range, in the same physical unit as the envelope.
const (
	balanceMin = 3.0
	balanceMax = 5.0
)

func AllProfiles() []IntensityProfile {
	return []IntensityProfile{ProfileWeak, ProfileMiddle, ProfileStrong}
}

func ParseIntensityProfile(raw string) (IntensityProfile, error) {
	switch IntensityProfile(strings.ToLower(strings.TrimSpace(raw))) {
	case ProfileWeak:
		return ProfileWeak, nil
	case ProfileMiddle, "medium":
		return ProfileMiddle, nil
	case ProfileStrong:
		return ProfileStrong, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProfile, raw)
	}
}

func (p IntensityProfile) Label() string {
	switch p {
	case ProfileWeak:
		return "Weak"
	case ProfileMiddle:
		return "Middle"
	case ProfileStrong:
		return "Strong"
	default:
		return string(p)
	}
}

// Waypoint is one breakpoint of a piecewise-linear curve.
type Waypoint struct {
	At    time.Duration
	Value float64
}

type ProfileParams struct {
	Amplitude float64
	Attack    time.Duration
	Hold      time.Duration
	Release   time.Duration
	Balance   []Waypoint
}

func DefaultProfiles() map[IntensityProfile]ProfileParams {
	base := func(amplitude float64, balance ...Waypoint) ProfileParams {
		return ProfileParams{
			Amplitude: amplitude,
			Attack:    500 * time.Millisecond,
			Hold:      3 * time.Second,
			Release:   500 * time.Millisecond,
			Balance:   balance,
		}
	}

	return map[IntensityProfile]ProfileParams{
		ProfileWeak: base(4,
			Waypoint{At: 0, Value: 3},
			Waypoint{At: time.Second, Value: 4},
			Waypoint{At: 4 * time.Second, Value: 4},
		),
		ProfileMiddle: base(6,
			Waypoint{At: 0, Value: 3},
			Waypoint{At: time.Second, Value: 4},
			Waypoint{At: 2 * time.Second, Value: 3},
			Waypoint{At: 4 * time.Second, Value: 5},
		),
		ProfileStrong: base(8,
			Waypoint{At: 0, Value: 3},
			Waypoint{At: time.Second, Value: 5},
			Waypoint{At: 2 * time.Second, Value: 3},
			Waypoint{At: 4 * time.Second, Value: 4},
		),
	}
}

func (p ProfileParams) Duration() time.Duration {
	return p.Attack + p.Hold + p.Release
}

func (p ProfileParams) Validate() error {
	if p.Amplitude <= 0 {
		return fmt.Errorf("amplitude must be positive")
	}
	if p.Attack < 0 || p.Hold < 0 || p.Release < 0 {
		return fmt.Errorf("envelope segments must not be negative")
	}
	if p.Duration() <= 0 {
		return fmt.Errorf("profile duration must be positive")
	}
	if len(p.Balance) == 0 {
		return fmt.Errorf("balance curve needs at least one waypoint")
	}
	for i := 1; i < len(p.Balance); i++ {
		if p.Balance[i].At < p.Balance[i-1].At {
			return fmt.Errorf("balance waypoints must be ordered by time")
		}
	}

	return nil
}

// Scaled stretches every breakpoint so the profile lasts d.
func (p ProfileParams) Scaled(d time.Duration) ProfileParams {
	nominal := p.Duration()
	if d <= 0 || nominal <= 0 || d == nominal {
		return p
	}

	factor := float64(d) / float64(nominal)
	scale := func(v time.Duration) time.Duration {
		return time.Duration(math.Round(float64(v) * factor))
	}

	scaled := ProfileParams{
		Amplitude: p.Amplitude,
		Attack:    scale(p.Attack),
		Hold:      scale(p.Hold),
		Balance:   make([]Waypoint, len(p.Balance)),
	}
	scaled.Release = d - scaled.Attack - scaled.Hold
	for i, wp := range p.Balance {
		scaled.Balance[i] = Waypoint{At: scale(wp.At), Value: wp.Value}
	}

	return scaled
}

// Envelope is the grip amplitude y(t) in [0, Amplitude].
func (p ProfileParams) Envelope(t time.Duration) float64 {
	switch {
	case t < 0:
		return 0
	case t < p.Attack:
		return lerp(0, p.Amplitude, float64(t)/float64(p.Attack))
	case t <= p.Attack+p.Hold:
		return p.Amplitude
	case t < p.Duration():
		u := float64(t-p.Attack-p.Hold) / float64(p.Release)
		return lerp(p.Amplitude, 0, u)
	default:
		return 0
	}
}

// BalanceAt is the contact distribution curve x(t), held flat outside the waypoints.
func (p ProfileParams) BalanceAt(t time.Duration) float64 {
	if len(p.Balance) == 0 {
		return balanceMin
	}
	if t <= p.Balance[0].At {
		return p.Balance[0].Value
	}

	for i := 1; i < len(p.Balance); i++ {
		prev, next := p.Balance[i-1], p.Balance[i]
		if t > next.At {
			continue
		}
		span := next.At - prev.At
		if span <= 0 {
			return next.Value
		}
		return lerp(prev.Value, next.Value, float64(t-prev.At)/float64(span))
	}

	return p.Balance[len(p.Balance)-1].Value
}

type MotionScale struct {
	FullScaleMM  float64
	EncoderPerMM float64
}

func DefaultMotionScale() MotionScale {
	return MotionScale{FullScaleMM: 5, EncoderPerMM: 90.8}
}

// Displacement returns the per-finger travel in millimetres at time t.
func (s MotionScale) Displacement(p ProfileParams, t time.Duration) (aMM, bMM float64) {
	fingerTotal := clamp(p.Envelope(t), 0, 1)
	ratio := clamp((p.BalanceAt(t)-balanceMin)/(balanceMax-balanceMin), 0, 1)

	aMM = fingerTotal * (1 - ratio) * s.FullScaleMM
	bMM = fingerTotal * ratio * s.FullScaleMM
	return aMM, bMM
}

// Target converts the displacement at t into relative encoder counts.
func (s MotionScale) Target(p ProfileParams, t time.Duration) EncoderPair {
	aMM, bMM := s.Displacement(p, t)
	return EncoderPair{
		Left:  int64(math.Round(aMM * s.EncoderPerMM)),
		Right: int64(math.Round(bMM * s.EncoderPerMM)),
	}
}

func lerp(from, to, u float64) float64 {
	u = clamp(u, 0, 1)
	return from + (to-from)*u
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
