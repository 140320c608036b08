// internal/settings/settings.go

package settings

import (
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/saba-futai/peerproxy/internal/sitelist"
)

// DefaultProxyPort is the local HTTP proxy port used until something else is configured.
const DefaultProxyPort = 8787

// Whitelist owns the set of sites eligible for proxying. Settings never
// parses site strings itself; it only forwards them.
type Whitelist interface {
	Entries() []string
	SetEntries(sites []string)
}

// Settings is the process-wide configuration model. One instance is created
// at start-up and mutated by the config loader, the UI bridge and CLI flags.
// All methods are safe for concurrent use.
type Settings struct {
	log    *slog.Logger
	signal CensorshipSignal

	// modeMu guards mode and nothing else.
	modeMu sync.Mutex
	mode   Mode

	// proxyMu guards proxies and proxyIndex for every operation.
	proxyMu    sync.Mutex
	proxies    []string
	proxyIndex map[string]struct{}

	// closedBeta always points at a slice nobody else holds.
	closedBeta atomic.Pointer[[]string]

	mu            sync.RWMutex
	userID        string
	lang          string
	autoStart     bool
	autoReport    bool
	proxyPort     int
	systemProxy   bool
	proxyAllSites bool
	startAtLogin  bool
	serverPort    int
	whitelist     Whitelist
	stunServers   []string

	useGoogleOAuth2 bool
	clientID        string
	clientSecret    string
	accessToken     string
	refreshToken    string
	pinned          pinnedOptions

	useTrustedPeers   bool
	useLaeProxies     bool
	useAnonymousPeers bool
	useCentralProxies bool
	keychainEnabled   bool
	uiEnabled         bool
	bindToLocalhost   bool
}

// Option customizes a Settings at construction.
type Option func(*Settings)

// WithWhitelist replaces the default site list collaborator.
func WithWhitelist(w Whitelist) Option {
	return func(s *Settings) { s.whitelist = w }
}

// WithServerPort fixes the server port instead of picking a random one.
func WithServerPort(port int) Option {
	return func(s *Settings) { s.serverPort = port }
}

// WithLogger sets the logger used for mode resolution and proxy bookkeeping.
func WithLogger(l *slog.Logger) Option {
	return func(s *Settings) { s.log = l }
}

// New returns Settings populated with defaults. signal is consulted the first
// time get-mode is queried while the mode is still unresolved.
func New(signal CensorshipSignal, opts ...Option) *Settings {
	s := &Settings{
		log:          slog.Default(),
		signal:       signal,
		mode:         ModeNone,
		proxyIndex:   make(map[string]struct{}),
		autoStart:    true,
		autoReport:   true,
		proxyPort:    DefaultProxyPort,
		systemProxy:  true,
		startAtLogin: true,
		serverPort:   randomPort(),
		uiEnabled:    true,
	}
	empty := []string{}
	s.closedBeta.Store(&empty)
	for _, opt := range opts {
		opt(s)
	}
	if s.whitelist == nil {
		s.whitelist = sitelist.New()
	}
	return s
}

// randomPort picks an unprivileged port without probing the network.
func randomPort() int {
	return 1024 + rand.IntN(60000)
}

func (s *Settings) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Settings) SetUserID(id string) {
	s.mu.Lock()
	s.userID = id
	s.mu.Unlock()
}

func (s *Settings) Lang() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang
}

func (s *Settings) SetLang(lang string) {
	s.mu.Lock()
	s.lang = lang
	s.mu.Unlock()
}

func (s *Settings) AutoStart() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoStart
}

func (s *Settings) SetAutoStart(v bool) {
	s.mu.Lock()
	s.autoStart = v
	s.mu.Unlock()
}

func (s *Settings) AutoReport() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoReport
}

func (s *Settings) SetAutoReport(v bool) {
	s.mu.Lock()
	s.autoReport = v
	s.mu.Unlock()
}

func (s *Settings) ProxyPort() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.proxyPort
}

func (s *Settings) SetProxyPort(port int) {
	s.mu.Lock()
	s.proxyPort = port
	s.mu.Unlock()
}

func (s *Settings) ServerPort() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serverPort
}

func (s *Settings) SetServerPort(port int) {
	s.mu.Lock()
	s.serverPort = port
	s.mu.Unlock()
}

func (s *Settings) SystemProxy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.systemProxy
}

func (s *Settings) SetSystemProxy(v bool) {
	s.mu.Lock()
	s.systemProxy = v
	s.mu.Unlock()
}

func (s *Settings) ProxyAllSites() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.proxyAllSites
}

func (s *Settings) SetProxyAllSites(v bool) {
	s.mu.Lock()
	s.proxyAllSites = v
	s.mu.Unlock()
}

func (s *Settings) StartAtLogin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startAtLogin
}

func (s *Settings) SetStartAtLogin(v bool) {
	s.mu.Lock()
	s.startAtLogin = v
	s.mu.Unlock()
}

// Whitelist returns the site list collaborator itself, not a copy.
func (s *Settings) Whitelist() Whitelist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.whitelist
}

func (s *Settings) SetWhitelist(w Whitelist) {
	s.mu.Lock()
	s.whitelist = w
	s.mu.Unlock()
}

// ProxiedSites returns the whitelist entries as plain site strings.
func (s *Settings) ProxiedSites() []string {
	return s.Whitelist().Entries()
}

// SetProxiedSites hands the sites to the whitelist, which decides how to store them.
func (s *Settings) SetProxiedSites(sites []string) {
	s.Whitelist().SetEntries(sites)
}

// StunServers returns a sorted copy of the STUN server set.
func (s *Settings) StunServers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.stunServers...)
}

// SetStunServers replaces the STUN server set. Duplicates collapse.
func (s *Settings) SetStunServers(servers []string) {
	set := copySet(servers)
	s.mu.Lock()
	s.stunServers = set
	s.mu.Unlock()
}

// AddStunServers merges servers into the STUN server set in one step.
func (s *Settings) AddStunServers(servers ...string) {
	s.mu.Lock()
	s.stunServers = copySet(slices.Concat(s.stunServers, servers))
	s.mu.Unlock()
}

// ---- credentials ----

func (s *Settings) UseGoogleOAuth2() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.useGoogleOAuth2
}

func (s *Settings) SetUseGoogleOAuth2(v bool) {
	s.mu.Lock()
	s.useGoogleOAuth2 = v
	s.mu.Unlock()
}

func (s *Settings) ClientID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientID
}

func (s *Settings) SetClientID(v string) {
	s.mu.Lock()
	s.clientID = v
	s.mu.Unlock()
}

func (s *Settings) ClientSecret() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientSecret
}

func (s *Settings) SetClientSecret(v string) {
	s.mu.Lock()
	s.clientSecret = v
	s.mu.Unlock()
}

func (s *Settings) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Settings) SetAccessToken(v string) {
	s.mu.Lock()
	s.accessToken = v
	s.mu.Unlock()
}

func (s *Settings) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

func (s *Settings) SetRefreshToken(v string) {
	s.mu.Lock()
	s.refreshToken = v
	s.mu.Unlock()
}

// ---- runtime-only flags, never projected ----

func (s *Settings) UseTrustedPeers() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.useTrustedPeers
}

func (s *Settings) SetUseTrustedPeers(v bool) {
	s.mu.Lock()
	s.useTrustedPeers = v
	s.mu.Unlock()
}

func (s *Settings) UseLaeProxies() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.useLaeProxies
}

func (s *Settings) SetUseLaeProxies(v bool) {
	s.mu.Lock()
	s.useLaeProxies = v
	s.mu.Unlock()
}

func (s *Settings) UseAnonymousPeers() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.useAnonymousPeers
}

func (s *Settings) SetUseAnonymousPeers(v bool) {
	s.mu.Lock()
	s.useAnonymousPeers = v
	s.mu.Unlock()
}

func (s *Settings) UseCentralProxies() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.useCentralProxies
}

func (s *Settings) SetUseCentralProxies(v bool) {
	s.mu.Lock()
	s.useCentralProxies = v
	s.mu.Unlock()
}

func (s *Settings) KeychainEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keychainEnabled
}

func (s *Settings) SetKeychainEnabled(v bool) {
	s.mu.Lock()
	s.keychainEnabled = v
	s.mu.Unlock()
}

func (s *Settings) UIEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uiEnabled
}

func (s *Settings) SetUIEnabled(v bool) {
	s.mu.Lock()
	s.uiEnabled = v
	s.mu.Unlock()
}

func (s *Settings) BindToLocalhost() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bindToLocalhost
}

func (s *Settings) SetBindToLocalhost(v bool) {
	s.mu.Lock()
	s.bindToLocalhost = v
	s.mu.Unlock()
}
