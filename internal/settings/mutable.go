// internal/settings/mutable.go

package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Mutable is the part of Settings the UI may change. Callers holding a
// Mutable can write these fields but cannot read anything back.
type Mutable interface {
	SetLang(lang string)
	SetSystemProxy(v bool)
	SetProxyAllSites(v bool)
	SetGetMode(getMode bool)
	SetStartAtLogin(v bool)
	SetProxiedSites(sites []string)
}

var _ Mutable = (*Settings)(nil)

// ErrUnknownSetting is returned by Update for names outside Mutable.
var ErrUnknownSetting = errors.New("unknown setting")

// Update applies a name/value pair as sent by the UI. Names are the JSON
// field names; proxiedSites takes a comma separated list.
func Update(m Mutable, name, value string) error {
	switch name {
	case "lang":
		m.SetLang(value)
		return nil
	case "proxiedSites":
		m.SetProxiedSites(splitList(value))
		return nil
	}

	var set func(bool)
	switch name {
	case "systemProxy":
		set = m.SetSystemProxy
	case "proxyAllSites":
		set = m.SetProxyAllSites
	case "getMode":
		set = m.SetGetMode
	case "startAtLogin":
		set = m.SetStartAtLogin
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}

	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}
	set(v)
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
