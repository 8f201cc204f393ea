package analog

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind selects the actuation behaviour of a key.
type Kind uint8

const (
	Threshold Kind = iota
	Hysteresis
	RapidTrigger
	ContinuousRapidTrigger
	Disabled
	DKS
)

// dksBase is the first legacy mode code that denotes a DKS group.
const dksBase = 5

// DKSWidth is the number of logical keys driven by one DKS sensor.
const DKSWidth = 4

var kindNames = [...]string{"threshold", "hysteresis", "rapid", "continuous", "disabled", "dks"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind parses a kind name as produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown actuation kind %q", s)
}

// KeyConfig is the per-key actuation configuration. Group is only
// meaningful for DKS; the originating sensor drives the logical keys
// 4*Group..4*Group+3 on the last row of its half.
type KeyConfig struct {
	Kind  Kind
	Group uint8

	Actuation          uint8 // press point
	Release            uint8 // release point (Hysteresis)
	PressSensitivity   uint8 // re-press rise (rapid trigger)
	ReleaseSensitivity uint8 // release fall (rapid trigger)
}

// DefaultKeyConfig is a 2.0mm fixed actuation point with 0.3mm rapid
// trigger sensitivities ready for when the kind is switched.
func DefaultKeyConfig() KeyConfig {
	return KeyConfig{
		Kind:               Threshold,
		Actuation:          100,
		Release:            90,
		PressSensitivity:   15,
		ReleaseSensitivity: 15,
	}
}

// ModeFromCode maps a legacy mode code onto kind and DKS group.
func ModeFromCode(code uint8) (Kind, uint8) {
	if code >= dksBase {
		return DKS, code - dksBase
	}
	return Kind(code), 0
}

// Code returns the legacy mode code of the configuration.
func (c KeyConfig) Code() uint8 {
	if c.Kind == DKS {
		return dksBase + c.Group
	}
	return uint8(c.Kind)
}

// FanOut reports whether the key drives other logical keys.
func (c KeyConfig) FanOut() bool {
	return c.Kind == DKS
}
