// internal/settings/mode.go

package settings

import (
	"context"
	"errors"
	"fmt"
)

// Mode is the client's operating role.
//
//	none -> give | get   first IsGetMode, decided by the censorship signal
//	give <-> get         SetGetMode, never consults the signal
//
// There is no way back to none.
type Mode string

const (
	ModeNone Mode = "none"
	ModeGive Mode = "give"
	ModeGet  Mode = "get"
)

// ErrNoCensorshipSignal is returned when the mode has to be resolved but
// Settings was built without a signal.
var ErrNoCensorshipSignal = errors.New("settings: no censorship signal configured")

// CensorshipSignal reports whether the current network is censored. It may
// block; Settings calls it while holding the mode lock.
type CensorshipSignal interface {
	Censored(ctx context.Context) (bool, error)
}

// ParseMode accepts the three canonical mode names.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeNone, ModeGive, ModeGet:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

func (m Mode) String() string { return string(m) }

func (m Mode) MarshalText() ([]byte, error) {
	if m == "" {
		return []byte(ModeNone), nil
	}
	return []byte(m), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*m = ModeNone
		return nil
	}
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Mode returns the current mode without resolving it.
func (s *Settings) Mode() Mode {
	s.modeMu.Lock()
	defer s.modeMu.Unlock()
	return s.mode
}

// SetMode stores m as is. Setting ModeNone after the mode has been resolved
// is ignored.
func (s *Settings) SetMode(m Mode) {
	if m == "" {
		m = ModeNone
	}
	s.modeMu.Lock()
	defer s.modeMu.Unlock()
	if m == ModeNone && s.mode != ModeNone {
		return
	}
	s.mode = m
}

// SetGetMode forces get (true) or give (false).
func (s *Settings) SetGetMode(getMode bool) {
	if getMode {
		s.SetMode(ModeGet)
	} else {
		s.SetMode(ModeGive)
	}
}

// IsGetMode reports whether the client is in get mode. While the mode is
// still none it asks the censorship signal once and remembers the answer:
// censored networks get, everyone else gives. A signal error leaves the mode
// unresolved and is returned to the caller.
func (s *Settings) IsGetMode(ctx context.Context) (bool, error) {
	s.modeMu.Lock()
	defer s.modeMu.Unlock()

	if s.mode == ModeNone {
		if s.signal == nil {
			return false, ErrNoCensorshipSignal
		}
		censored, err := s.signal.Censored(ctx)
		if err != nil {
			return false, fmt.Errorf("resolve mode: %w", err)
		}
		if censored {
			s.mode = ModeGet
		} else {
			s.mode = ModeGive
		}
		s.log.Info("mode resolved", "mode", s.mode, "censored", censored)
	}
	return s.mode == ModeGet, nil
}
