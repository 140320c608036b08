// internal/settings/options.go

package settings

// CommandLineOptions carries the credential fields that may also be given as
// flags. A nil field was not given.
//
// Values applied from the command line win over the persisted file no matter
// which of the two is applied first.
type CommandLineOptions struct {
	UseGoogleOAuth2 *bool
	ClientID        *string
	ClientSecret    *string
	AccessToken     *string
	RefreshToken    *string
}

type pinnedOptions struct {
	useGoogleOAuth2 bool
	clientID        bool
	clientSecret    bool
	accessToken     bool
	refreshToken    bool
}

// ApplyCommandLine sets every non-nil option and pins it against later
// ApplyPersistent calls. Explicit setters still overwrite pinned fields.
func (s *Settings) ApplyCommandLine(opts CommandLineOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.UseGoogleOAuth2 != nil {
		s.useGoogleOAuth2 = *opts.UseGoogleOAuth2
		s.pinned.useGoogleOAuth2 = true
	}
	if opts.ClientID != nil {
		s.clientID = *opts.ClientID
		s.pinned.clientID = true
	}
	if opts.ClientSecret != nil {
		s.clientSecret = *opts.ClientSecret
		s.pinned.clientSecret = true
	}
	if opts.AccessToken != nil {
		s.accessToken = *opts.AccessToken
		s.pinned.accessToken = true
	}
	if opts.RefreshToken != nil {
		s.refreshToken = *opts.RefreshToken
		s.pinned.refreshToken = true
	}
}
