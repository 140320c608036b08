package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/saba-futai/peerproxy/internal/codec"
	"github.com/saba-futai/peerproxy/internal/settings"
)

// dumpView prints the runtime or persistent view. CBOR is printed in
// diagnostic notation and only covers the runtime view; the whitelist in the
// persistent view knows how to encode itself as JSON and YAML only.
func dumpView(w io.Writer, s *settings.Settings, view, format string) error {
	var v any
	switch view {
	case "runtime":
		v = s.Runtime()
	case "persistent":
		v = s.Persistent()
	default:
		return fmt.Errorf("unknown view %q (want runtime or persistent)", view)
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "cbor":
		if view != "runtime" {
			return fmt.Errorf("cbor output is only available for the runtime view")
		}
		data, err := codec.Marshal(v)
		if err != nil {
			return err
		}
		diag, err := codec.Diagnose(data)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, diag)
		return err
	}
	return fmt.Errorf("unknown format %q (want json, yaml or cbor)", format)
}
