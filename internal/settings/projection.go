// internal/settings/projection.go

package settings

import "github.com/saba-futai/peerproxy/internal/sitelist"

// Runtime is the view handed to the UI. Field membership follows the table
// below; anything not listed here is not part of the live view.
//
//	field          runtime  persistent
//	userId            x         x
//	lang              x
//	autoStart         x         x
//	autoReport        x         x
//	mode              x         x
//	proxyPort         x         x
//	systemProxy       x         x
//	proxyAllSites     x         x
//	proxiedSites      x
//	whitelist                   x
//	useGoogleOAuth2             x
//	clientID                    x
//	clientSecret                x
//	accessToken                 x
//	refreshToken                x
//	inClosedBeta                x
//	startAtLogin      x         x
//	proxies                     x
//	stunServers       x         x
//	serverPort                  x
//
// The JSON tags also name the CBOR fields.
type Runtime struct {
	UserID        string   `json:"userId" yaml:"userId"`
	Lang          string   `json:"lang" yaml:"lang"`
	AutoStart     bool     `json:"autoStart" yaml:"autoStart"`
	AutoReport    bool     `json:"autoReport" yaml:"autoReport"`
	Mode          Mode     `json:"mode" yaml:"mode"`
	ProxyPort     int      `json:"proxyPort" yaml:"proxyPort"`
	SystemProxy   bool     `json:"systemProxy" yaml:"systemProxy"`
	ProxyAllSites bool     `json:"proxyAllSites" yaml:"proxyAllSites"`
	ProxiedSites  []string `json:"proxiedSites" yaml:"proxiedSites"`
	StartAtLogin  bool     `json:"startAtLogin" yaml:"startAtLogin"`
	StunServers   []string `json:"stunServers" yaml:"stunServers"`
}

// Persistent is what survives a restart.
type Persistent struct {
	UserID          string    `json:"userId" yaml:"userId"`
	AutoStart       bool      `json:"autoStart" yaml:"autoStart"`
	AutoReport      bool      `json:"autoReport" yaml:"autoReport"`
	Mode            Mode      `json:"mode" yaml:"mode"`
	ProxyPort       int       `json:"proxyPort" yaml:"proxyPort"`
	SystemProxy     bool      `json:"systemProxy" yaml:"systemProxy"`
	ProxyAllSites   bool      `json:"proxyAllSites" yaml:"proxyAllSites"`
	Whitelist       Whitelist `json:"whitelist" yaml:"whitelist"`
	UseGoogleOAuth2 bool      `json:"useGoogleOAuth2" yaml:"useGoogleOAuth2"`
	ClientID        string    `json:"clientID" yaml:"clientID"`
	ClientSecret    string    `json:"clientSecret" yaml:"clientSecret"`
	AccessToken     string    `json:"accessToken" yaml:"accessToken"`
	RefreshToken    string    `json:"refreshToken" yaml:"refreshToken"`
	InClosedBeta    []string  `json:"inClosedBeta" yaml:"inClosedBeta"`
	StartAtLogin    bool      `json:"startAtLogin" yaml:"startAtLogin"`
	Proxies         []string  `json:"proxies" yaml:"proxies"`
	StunServers     []string  `json:"stunServers" yaml:"stunServers"`
	ServerPort      int       `json:"serverPort" yaml:"serverPort"`
}

// Runtime builds the live view. It never resolves the mode.
func (s *Settings) Runtime() Runtime {
	mode := s.Mode()
	sites := s.ProxiedSites()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Runtime{
		UserID:        s.userID,
		Lang:          s.lang,
		AutoStart:     s.autoStart,
		AutoReport:    s.autoReport,
		Mode:          mode,
		ProxyPort:     s.proxyPort,
		SystemProxy:   s.systemProxy,
		ProxyAllSites: s.proxyAllSites,
		ProxiedSites:  sites,
		StartAtLogin:  s.startAtLogin,
		StunServers:   append([]string{}, s.stunServers...),
	}
}

// Persistent builds the on-disk view. The Whitelist field is a snapshot of
// the collaborator; later edits to either side do not show in the other.
func (s *Settings) Persistent() Persistent {
	mode := s.Mode()
	proxies := s.Proxies()
	beta := s.InClosedBeta()
	wl := snapshotWhitelist(s.Whitelist())

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Persistent{
		UserID:          s.userID,
		AutoStart:       s.autoStart,
		AutoReport:      s.autoReport,
		Mode:            mode,
		ProxyPort:       s.proxyPort,
		SystemProxy:     s.systemProxy,
		ProxyAllSites:   s.proxyAllSites,
		Whitelist:       wl,
		UseGoogleOAuth2: s.useGoogleOAuth2,
		ClientID:        s.clientID,
		ClientSecret:    s.clientSecret,
		AccessToken:     s.accessToken,
		RefreshToken:    s.refreshToken,
		InClosedBeta:    beta,
		StartAtLogin:    s.startAtLogin,
		Proxies:         proxies,
		StunServers:     append([]string{}, s.stunServers...),
		ServerPort:      s.serverPort,
	}
}

// ApplyPersistent loads p into the store. The whitelist entries are copied
// into the current collaborator, which is never replaced; a nil Whitelist
// leaves it alone. Credentials pinned by ApplyCommandLine are left alone, and
// a persisted "none" never undoes a resolved mode.
func (s *Settings) ApplyPersistent(p Persistent) {
	s.SetMode(p.Mode)
	s.SetProxies(p.Proxies)
	s.SetInClosedBeta(p.InClosedBeta)
	if p.Whitelist != nil {
		copyWhitelist(s.Whitelist(), p.Whitelist)
	}
	stun := copySet(p.StunServers)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = p.UserID
	s.autoStart = p.AutoStart
	s.autoReport = p.AutoReport
	s.proxyPort = p.ProxyPort
	s.systemProxy = p.SystemProxy
	s.proxyAllSites = p.ProxyAllSites
	s.startAtLogin = p.StartAtLogin
	s.serverPort = p.ServerPort
	s.stunServers = stun

	if !s.pinned.useGoogleOAuth2 {
		s.useGoogleOAuth2 = p.UseGoogleOAuth2
	}
	if !s.pinned.clientID {
		s.clientID = p.ClientID
	}
	if !s.pinned.clientSecret {
		s.clientSecret = p.ClientSecret
	}
	if !s.pinned.accessToken {
		s.accessToken = p.AccessToken
	}
	if !s.pinned.refreshToken {
		s.refreshToken = p.RefreshToken
	}
}

// snapshotWhitelist returns a copy of w that shares nothing with it.
func snapshotWhitelist(w Whitelist) Whitelist {
	if l, ok := w.(*sitelist.List); ok {
		return l.Clone()
	}
	return sitelist.FromSites(w.Entries())
}

func copyWhitelist(dst, src Whitelist) {
	d, dok := dst.(*sitelist.List)
	sl, sok := src.(*sitelist.List)
	if dok && sok {
		d.CopyFrom(sl)
		return
	}
	dst.SetEntries(src.Entries())
}
