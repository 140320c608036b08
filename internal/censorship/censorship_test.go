package censorship

import (
	"context"
	"errors"
	"testing"
)

func TestFixed(t *testing.T) {
	for _, want := range []bool{true, false} {
		got, err := Fixed(want).Censored(context.Background())
		if err != nil || got != want {
			t.Fatalf("Fixed(%v) = %v, %v", want, got, err)
		}
	}
}

func TestByCountry(t *testing.T) {
	cases := map[string]bool{"cn": true, "IR": true, " cu ": true, "US": false, "": false}
	for code, want := range cases {
		got, err := ByCountry{Locate: Country(code)}.Censored(context.Background())
		if err != nil {
			t.Fatalf("%q: %v", code, err)
		}
		if got != want {
			t.Fatalf("%q: censored=%v, want %v", code, got, want)
		}
	}
}

func TestByCountryCustomList(t *testing.T) {
	sig := ByCountry{Locate: Country("US"), Countries: []string{"us"}}
	if got, _ := sig.Censored(context.Background()); !got {
		t.Fatalf("custom list ignored")
	}
}

func TestByCountryErrors(t *testing.T) {
	if _, err := (ByCountry{}).Censored(context.Background()); err == nil {
		t.Fatalf("expected error without locator")
	}

	boom := errors.New("geoip down")
	sig := ByCountry{Locate: func(context.Context) (string, error) { return "", boom }}
	if _, err := sig.Censored(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("locator error not wrapped: %v", err)
	}
}

func TestFunc(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sig := Func(func(ctx context.Context) (bool, error) { return false, ctx.Err() })
	if _, err := sig.Censored(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
