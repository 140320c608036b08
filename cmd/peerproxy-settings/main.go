// peerproxy-settings loads, inspects and edits the client's settings file.
//
// Credentials given as flags (--client-id and friends) override whatever the
// settings file holds, and are written back on the next save.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/saba-futai/peerproxy/internal/app"
	"github.com/saba-futai/peerproxy/internal/censorship"
	"github.com/saba-futai/peerproxy/internal/config"
	"github.com/saba-futai/peerproxy/internal/settings"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("peerproxy-settings", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)

	configPath := flagSet.StringP("config", "c", "settings.json", "path to the settings file (.json, .jsonc, .yaml)")
	testConfig := flagSet.Bool("test", false, "load the settings file and exit")
	dump := flagSet.String("dump", "", "print a view and exit: runtime or persistent")
	format := flagSet.String("format", "json", "output format for --dump: json, yaml or cbor")
	sets := flagSet.StringArray("set", nil, "change a setting, name=value (repeatable)")
	linkInput := flagSet.String("link", "", "import proxies from a peerproxy:// share link")
	exportLink := flagSet.Bool("export-link", false, "print a peerproxy:// share link and exit")
	setupWizard := flagSet.Bool("tui", false, "answer the first-run questions interactively")
	country := flagSet.String("country", "", "ISO country code used to decide the initial mode")
	censored := flagSet.Bool("censored", false, "treat the network as censored when --country is not set")
	resolveMode := flagSet.Bool("resolve-mode", false, "resolve the mode now if it is still unset")
	keychain := flagSet.Bool("keychain", false, "seal OAuth secrets in the settings file")
	verbose := flagSet.BoolP("verbose", "v", false, "debug logging")

	flagSet.Bool("use-google-oauth2", false, "authenticate with Google OAuth2")
	flagSet.String("client-id", "", "OAuth2 client ID")
	flagSet.String("client-secret", "", "OAuth2 client secret")
	flagSet.String("access-token", "", "OAuth2 access token")
	flagSet.String("refresh-token", "", "OAuth2 refresh token")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var signal settings.CensorshipSignal = censorship.Fixed(*censored)
	if *country != "" {
		signal = censorship.ByCountry{Locate: censorship.Country(*country)}
	}

	s := settings.New(signal, settings.WithLogger(logger))
	s.SetKeychainEnabled(*keychain)
	s.ApplyCommandLine(commandLineOptions(flagSet))

	store := config.NewStore(*configPath)
	store.Log = logger
	fresh := false
	if err := store.Load(s); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load settings: %w", err)
		}
		fresh = true
		logger.Info("no settings file yet, using defaults", "path", *configPath)
	}

	if *testConfig {
		fmt.Fprintf(stdout, "Settings %s are valid.\n", *configPath)
		fmt.Fprintf(stdout, "Mode: %s\n", s.Mode())
		fmt.Fprintf(stdout, "Proxies: %d configured\n", len(s.Proxies()))
		return nil
	}

	if *dump != "" {
		return dumpView(stdout, s, *dump, *format)
	}

	if *exportLink {
		link, err := config.BuildShareLink(s)
		if err != nil {
			return fmt.Errorf("export share link: %w", err)
		}
		fmt.Fprintf(stdout, "Share link: %s\n", link)
		return nil
	}

	changed := fresh || *linkInput != "" || *setupWizard || len(*sets) > 0 || *resolveMode
	for _, name := range []string{"keychain", "use-google-oauth2", "client-id", "client-secret", "access-token", "refresh-token"} {
		changed = changed || flagSet.Changed(name)
	}
	if *linkInput != "" {
		if err := config.ApplyShareLink(*linkInput, s); err != nil {
			return fmt.Errorf("import share link: %w", err)
		}
	}
	if *setupWizard {
		if err := app.RunSetupWizard(stdin, stdout, s, s.Runtime()); err != nil {
			return fmt.Errorf("setup: %w", err)
		}
	}
	for _, kv := range *sets {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--set %q: want name=value", kv)
		}
		if err := settings.Update(s, name, value); err != nil {
			return err
		}
	}
	if *resolveMode {
		getMode, err := s.IsGetMode(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Mode: %s (get=%t)\n", s.Mode(), getMode)
	}

	if !changed {
		return nil
	}
	if _, err := store.Save(s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// commandLineOptions collects only the credential flags that were given.
func commandLineOptions(flagSet *pflag.FlagSet) settings.CommandLineOptions {
	str := func(name string) *string {
		if !flagSet.Changed(name) {
			return nil
		}
		v, _ := flagSet.GetString(name)
		return &v
	}

	var opts settings.CommandLineOptions
	if flagSet.Changed("use-google-oauth2") {
		v, _ := flagSet.GetBool("use-google-oauth2")
		opts.UseGoogleOAuth2 = &v
	}
	opts.ClientID = str("client-id")
	opts.ClientSecret = str("client-secret")
	opts.AccessToken = str("access-token")
	opts.RefreshToken = str("refresh-token")
	return opts
}
