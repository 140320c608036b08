package settings

import (
	"encoding/json"
	"testing"

	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/saba-futai/peerproxy/internal/sitelist"
)

var (
	runtimeKeys = []string{
		"userId", "lang", "autoStart", "autoReport", "mode", "proxyPort",
		"systemProxy", "proxyAllSites", "proxiedSites", "startAtLogin", "stunServers",
	}
	persistentKeys = []string{
		"userId", "autoStart", "autoReport", "mode", "proxyPort", "systemProxy",
		"proxyAllSites", "whitelist", "useGoogleOAuth2", "clientID", "clientSecret",
		"accessToken", "refreshToken", "inClosedBeta", "startAtLogin", "proxies",
		"stunServers", "serverPort",
	}
	runtimeOnly = []string{
		"useTrustedPeers", "useLaeProxies", "useAnonymousPeers", "useCentralProxies",
		"keychainEnabled", "uiEnabled", "bindToLocalhost", "getMode",
	}
)

func populated() *Settings {
	s := New(nil, WithServerPort(9999))
	s.SetUserID("user-1")
	s.SetLang("fa")
	s.SetGetMode(true)
	s.SetProxyPort(8888)
	s.SetProxyAllSites(true)
	s.SetProxiedSites([]string{"example.com"})
	s.SetUseGoogleOAuth2(true)
	s.SetClientID("cid")
	s.SetClientSecret("csecret")
	s.SetAccessToken("atoken")
	s.SetRefreshToken("rtoken")
	s.SetInClosedBeta([]string{"beta-ui"})
	s.AddProxy("1.2.3.4:443")
	s.SetStunServers([]string{"stun.example.com:3478"})
	s.SetUseTrustedPeers(true)
	s.SetUseLaeProxies(true)
	s.SetUseAnonymousPeers(true)
	s.SetUseCentralProxies(true)
	s.SetKeychainEnabled(true)
	s.SetBindToLocalhost(true)
	return s
}

func jsonKeys(t *testing.T, v any) []string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func yamlKeys(t *testing.T, v any) []string {
	t.Helper()
	data, err := yaml.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestRuntimeFieldSet(t *testing.T) {
	g := NewWithT(t)
	s := populated()

	g.Expect(jsonKeys(t, s.Runtime())).To(ConsistOf(runtimeKeys))
	g.Expect(yamlKeys(t, s.Runtime())).To(ConsistOf(runtimeKeys))
}

func TestPersistentFieldSet(t *testing.T) {
	g := NewWithT(t)
	s := populated()

	keys := jsonKeys(t, s.Persistent())
	g.Expect(keys).To(ConsistOf(persistentKeys))
	g.Expect(yamlKeys(t, s.Persistent())).To(ConsistOf(persistentKeys))
	for _, k := range runtimeOnly {
		g.Expect(keys).NotTo(ContainElement(k))
	}
}

func TestRuntimeValues(t *testing.T) {
	g := NewWithT(t)
	r := populated().Runtime()

	g.Expect(r.UserID).To(Equal("user-1"))
	g.Expect(r.Lang).To(Equal("fa"))
	g.Expect(r.Mode).To(Equal(ModeGet))
	g.Expect(r.ProxyPort).To(Equal(8888))
	g.Expect(r.ProxiedSites).To(ContainElement("example.com"))
	g.Expect(r.StunServers).To(Equal([]string{"stun.example.com:3478"}))
}

func TestPersistentValues(t *testing.T) {
	g := NewWithT(t)
	s := populated()
	p := s.Persistent()

	g.Expect(p.Mode).To(Equal(ModeGet))
	g.Expect(p.Proxies).To(Equal([]string{"1.2.3.4:443"}))
	g.Expect(p.InClosedBeta).To(Equal([]string{"beta-ui"}))
	g.Expect(p.ServerPort).To(Equal(9999))
	g.Expect(p.ClientSecret).To(Equal("csecret"))
	g.Expect(p.Whitelist).NotTo(BeIdenticalTo(s.Whitelist()))
	g.Expect(p.Whitelist.Entries()).To(Equal(s.ProxiedSites()))

	data, err := json.Marshal(p)
	g.Expect(err).NotTo(HaveOccurred())
	var doc struct {
		Whitelist struct {
			Entries []sitelist.Entry `json:"entries"`
		} `json:"whitelist"`
	}
	g.Expect(json.Unmarshal(data, &doc)).To(Succeed())
	g.Expect(doc.Whitelist.Entries).To(ContainElement(sitelist.Entry{Site: "example.com"}))
}

func TestProjectionDoesNotResolveMode(t *testing.T) {
	sig := &countingSignal{censored: true}
	s := New(sig)

	_ = s.Runtime()
	_ = s.Persistent()

	if s.Mode() != ModeNone {
		t.Fatalf("projection resolved the mode to %s", s.Mode())
	}
	if n := sig.calls.Load(); n != 0 {
		t.Fatalf("projection consulted the signal %d times", n)
	}
	if r := s.Runtime(); r.Mode != ModeNone {
		t.Fatalf("runtime mode = %s", r.Mode)
	}
}

func TestApplyPersistentRoundTrip(t *testing.T) {
	g := NewWithT(t)
	src := populated()

	dst := New(nil)
	dst.ApplyPersistent(src.Persistent())

	g.Expect(dst.Persistent()).To(Equal(src.Persistent()))
	g.Expect(dst.Whitelist()).NotTo(BeIdenticalTo(src.Whitelist()))
	// runtime-only flags are not carried
	g.Expect(dst.UseTrustedPeers()).To(BeFalse())
	g.Expect(dst.KeychainEnabled()).To(BeFalse())
	// lang is runtime only, so it does not travel either
	g.Expect(dst.Lang()).To(BeEmpty())
}

func TestApplyPersistentKeepsResolvedMode(t *testing.T) {
	s := New(nil)
	s.SetGetMode(false)

	p := s.Persistent()
	p.Mode = ModeNone
	s.ApplyPersistent(p)

	if s.Mode() != ModeGive {
		t.Fatalf("mode reset to %s", s.Mode())
	}
}

func TestApplyPersistentNilWhitelistKeepsCollaborator(t *testing.T) {
	s := New(nil)
	wl := s.Whitelist()

	p := s.Persistent()
	p.Whitelist = nil
	s.ApplyPersistent(p)

	if s.Whitelist() != wl {
		t.Fatalf("whitelist collaborator replaced")
	}
}

func TestPersistentWhitelistIsASnapshot(t *testing.T) {
	s := New(nil)
	s.SetProxiedSites([]string{"before.com"})
	p := s.Persistent()

	s.SetProxiedSites([]string{"later.com"})
	if got := p.Whitelist.Entries(); len(got) != 1 || got[0] != "before.com" {
		t.Fatalf("projection changed after the fact: %v", got)
	}

	p.Whitelist.SetEntries([]string{"edited.com"})
	if got := s.ProxiedSites(); len(got) != 1 || got[0] != "later.com" {
		t.Fatalf("editing the projection changed the store: %v", got)
	}
}

func TestApplyPersistentDoesNotShareWhitelist(t *testing.T) {
	a := New(nil)
	a.SetProxiedSites([]string{"shared.com"})
	b := New(nil)
	b.ApplyPersistent(a.Persistent())

	b.SetProxiedSites([]string{"only-b.com"})
	if got := a.ProxiedSites(); len(got) != 1 || got[0] != "shared.com" {
		t.Fatalf("a sees b's whitelist: %v", got)
	}
}

func TestApplyPersistentCopiesIntoCustomWhitelist(t *testing.T) {
	wl := &fakeWhitelist{}
	s := New(nil, WithWhitelist(wl))

	src := New(nil)
	src.SetProxiedSites([]string{"x.com"})
	s.ApplyPersistent(src.Persistent())

	if s.Whitelist() != Whitelist(wl) {
		t.Fatalf("custom collaborator replaced")
	}
	if len(wl.sites) != 1 || wl.sites[0] != "x.com" {
		t.Fatalf("entries not copied: %v", wl.sites)
	}
}
