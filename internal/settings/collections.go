// internal/settings/collections.go

package settings

import (
	"slices"
	"strings"
)

// AddProxy records a proxy address. Addresses containing "@" belong to
// relaying peers and are dropped.
func (s *Settings) AddProxy(addr string) {
	if strings.Contains(addr, "@") {
		s.log.Debug("peer proxy not stored", "addr", addr)
		return
	}
	s.proxyMu.Lock()
	defer s.proxyMu.Unlock()
	if _, ok := s.proxyIndex[addr]; ok {
		return
	}
	s.proxyIndex[addr] = struct{}{}
	s.proxies = append(s.proxies, addr)
}

// RemoveProxy deletes addr if present.
func (s *Settings) RemoveProxy(addr string) {
	s.proxyMu.Lock()
	defer s.proxyMu.Unlock()
	if _, ok := s.proxyIndex[addr]; !ok {
		return
	}
	delete(s.proxyIndex, addr)
	s.proxies = slices.DeleteFunc(s.proxies, func(p string) bool { return p == addr })
}

// SetProxies replaces the whole proxy set. Order is kept, duplicates and
// peer addresses are dropped.
func (s *Settings) SetProxies(addrs []string) {
	proxies := make([]string, 0, len(addrs))
	index := make(map[string]struct{}, len(addrs))
	for _, addr := range addrs {
		if strings.Contains(addr, "@") {
			continue
		}
		if _, ok := index[addr]; ok {
			continue
		}
		index[addr] = struct{}{}
		proxies = append(proxies, addr)
	}

	s.proxyMu.Lock()
	s.proxies = proxies
	s.proxyIndex = index
	s.proxyMu.Unlock()
}

// Proxies returns a copy of the proxy set in insertion order.
func (s *Settings) Proxies() []string {
	s.proxyMu.Lock()
	defer s.proxyMu.Unlock()
	return append([]string{}, s.proxies...)
}

// InClosedBeta returns a fresh copy of the closed-beta flags, sorted.
func (s *Settings) InClosedBeta() []string {
	return append([]string{}, *s.closedBeta.Load()...)
}

// SetInClosedBeta stores a private copy of flags.
func (s *Settings) SetInClosedBeta(flags []string) {
	set := copySet(flags)
	s.closedBeta.Store(&set)
}

// copySet returns a sorted, deduplicated copy of in. Never nil.
func copySet(in []string) []string {
	out := append([]string{}, in...)
	slices.Sort(out)
	return slices.Compact(out)
}
