package ir

import "fmt"

// Pulse is a two-valued signal.
type Pulse uint8

const (
	// Low is the zero value so freshly allocated memories start low.
	Low Pulse = iota
	High
)

// String returns "low" or "high".
func (p Pulse) String() string {
	switch p {
	case Low:
		return "low"
	case High:
		return "high"
	default:
		return fmt.Sprintf("Pulse(%d)", uint8(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Pulse) MarshalText() ([]byte, error) {
	switch p {
	case Low, High:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("invalid pulse value %d", uint8(p))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pulse) UnmarshalText(text []byte) error {
	parsed, err := ParsePulse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePulse converts "low" or "high" into a Pulse.
func ParsePulse(s string) (Pulse, error) {
	switch s {
	case "low":
		return Low, nil
	case "high":
		return High, nil
	default:
		return Low, fmt.Errorf("unknown pulse %q: must be \"low\" or \"high\"", s)
	}
}

// pulseFromBit maps a Toggle bit to the pulse it emits.
func pulseFromBit(on bool) Pulse {
	if on {
		return High
	}
	return Low
}

// PulseEvent is one delivered pulse, as seen by engine observers and the
// trace store.
type PulseEvent struct {
	Press int64  `json:"press"`
	Seq   int64  `json:"seq"`
	From  string `json:"from"`
	To    string `json:"to"`
	Pulse Pulse  `json:"pulse"`
}

// String renders the event in the conventional "from -low-> to" form.
func (e PulseEvent) String() string {
	return fmt.Sprintf("%s -%s-> %s", e.From, e.Pulse, e.To)
}
