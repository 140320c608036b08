package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/saba-futai/peerproxy/internal/settings"
)

// RunSetupWizard asks the first-run questions and writes the answers through
// m. current supplies the defaults shown in brackets.
func RunSetupWizard(in io.Reader, out io.Writer, m settings.Mutable, current settings.Runtime) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "== Client Setup ==")
	lang := promptString(reader, out, "Language", current.Lang, "")
	systemProxy := promptBool(reader, out, "Configure as system proxy?", current.SystemProxy)
	proxyAll := promptBool(reader, out, "Proxy all sites (not just the whitelist)?", current.ProxyAllSites)
	startAtLogin := promptBool(reader, out, "Start at login?", current.StartAtLogin)

	mode := strings.ToLower(promptString(reader, out, "Mode (auto / give / get)", modeDefault(current.Mode), "auto"))
	switch mode {
	case "give", "get", "auto":
	default:
		fmt.Fprintf(out, "Unknown mode %q, leaving it to auto detection\n", mode)
		mode = "auto"
	}

	sites := promptString(reader, out, "Proxied sites (comma separated)", strings.Join(current.ProxiedSites, ","), "")

	m.SetLang(lang)
	m.SetSystemProxy(systemProxy)
	m.SetProxyAllSites(proxyAll)
	m.SetStartAtLogin(startAtLogin)
	if mode != "auto" {
		m.SetGetMode(mode == "get")
	}
	if sites != "" {
		if err := settings.Update(m, "proxiedSites", sites); err != nil {
			return err
		}
	}
	return nil
}

func modeDefault(m settings.Mode) string {
	if m == settings.ModeNone || m == "" {
		return "auto"
	}
	return string(m)
}

func promptString(r *bufio.Reader, w io.Writer, label, current, fallback string) string {
	displayDefault := current
	if displayDefault == "" {
		displayDefault = fallback
	}
	if displayDefault == "" {
		fmt.Fprintf(w, "%s: ", label)
	} else {
		fmt.Fprintf(w, "%s [%s]: ", label, displayDefault)
	}
	line, _ := r.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return displayDefault
	}
	return line
}

func promptBool(r *bufio.Reader, w io.Writer, label string, def bool) bool {
	shown := "no"
	if def {
		shown = "yes"
	}
	answer := strings.ToLower(promptString(r, w, label+" (yes/no)", shown, shown))
	switch answer {
	case "y", "yes", "true", "1":
		return true
	case "n", "no", "false", "0":
		return false
	}
	fmt.Fprintf(w, "Invalid answer, using %s\n", shown)
	return def
}
