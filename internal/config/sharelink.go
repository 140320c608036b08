package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/saba-futai/peerproxy/internal/settings"
)

const shareLinkScheme = "peerproxy://"

// shareLinkPayload holds the minimal fields we expose in peerproxy:// links.
type shareLinkPayload struct {
	Proxies     []string `json:"p,omitempty"` // proxy endpoints
	StunServers []string `json:"s,omitempty"` // STUN servers
	ProxyPort   int      `json:"l,omitempty"` // local proxy port
}

// BuildShareLink packs the proxy endpoints and STUN servers of s into a
// peerproxy:// link another client can import.
func BuildShareLink(s *settings.Settings) (string, error) {
	if s == nil {
		return "", errors.New("nil settings")
	}

	payload := shareLinkPayload{
		Proxies:     s.Proxies(),
		StunServers: s.StunServers(),
		ProxyPort:   s.ProxyPort(),
	}
	if len(payload.Proxies) == 0 && len(payload.StunServers) == 0 {
		return "", errors.New("nothing to share: no proxies or stun servers")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return shareLinkScheme + base64.RawURLEncoding.EncodeToString(data), nil
}

// ApplyShareLink merges a peerproxy:// link into s. Proxies go through
// AddProxy, so peer addresses in a crafted link are still dropped.
func ApplyShareLink(link string, s *settings.Settings) error {
	if !strings.HasPrefix(link, shareLinkScheme) {
		return errors.New("invalid scheme")
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(link, shareLinkScheme))
	if err != nil {
		return fmt.Errorf("decode share link failed: %w", err)
	}

	var payload shareLinkPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid share link payload: %w", err)
	}
	if len(payload.Proxies) == 0 && len(payload.StunServers) == 0 {
		return errors.New("share link missing proxies and stun servers")
	}

	for _, p := range payload.Proxies {
		s.AddProxy(p)
	}
	if len(payload.StunServers) > 0 {
		s.AddStunServers(payload.StunServers...)
	}
	if payload.ProxyPort > 0 {
		s.SetProxyPort(payload.ProxyPort)
	}
	return nil
}
