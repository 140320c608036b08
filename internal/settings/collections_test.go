package settings

import (
	"fmt"
	"slices"
	"sync"
	"testing"
)

func TestAddProxyDropsPeerAddresses(t *testing.T) {
	s := New(nil)
	for _, addr := range []string{"user@example.com", "@", "a@b:443", "peer@10.0.0.1:8080"} {
		s.AddProxy(addr)
		if slices.Contains(s.Proxies(), addr) {
			t.Fatalf("peer address %q was stored", addr)
		}
	}
	if n := len(s.Proxies()); n != 0 {
		t.Fatalf("expected empty proxy set, got %d entries", n)
	}
}

func TestAddRemoveProxy(t *testing.T) {
	s := New(nil)
	for _, addr := range []string{"1.2.3.4:443", "proxy.example.com:80", ""} {
		s.AddProxy(addr)
		if !slices.Contains(s.Proxies(), addr) {
			t.Fatalf("%q missing after AddProxy", addr)
		}
		s.RemoveProxy(addr)
		if slices.Contains(s.Proxies(), addr) {
			t.Fatalf("%q still present after RemoveProxy", addr)
		}
	}
}

func TestRemoveAbsentProxyIsNoop(t *testing.T) {
	s := New(nil)
	s.AddProxy("a:1")
	s.AddProxy("b:2")
	before := s.Proxies()

	s.RemoveProxy("c:3")
	if got := s.Proxies(); !slices.Equal(got, before) {
		t.Fatalf("proxies changed: %v -> %v", before, got)
	}
}

func TestProxiesKeepInsertionOrder(t *testing.T) {
	s := New(nil)
	for _, addr := range []string{"c:3", "a:1", "b:2", "a:1"} {
		s.AddProxy(addr)
	}
	want := []string{"c:3", "a:1", "b:2"}
	if got := s.Proxies(); !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSetProxiesReplacesAndFilters(t *testing.T) {
	s := New(nil)
	s.AddProxy("old:1")
	s.SetProxies([]string{"x:1", "peer@y:2", "z:3", "x:1"})

	want := []string{"x:1", "z:3"}
	if got := s.Proxies(); !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	// the index must follow the replacement
	s.AddProxy("x:1")
	s.RemoveProxy("z:3")
	if got := s.Proxies(); !slices.Equal(got, []string{"x:1"}) {
		t.Fatalf("got %v after add/remove on replaced set", got)
	}
}

func TestProxySnapshotIsIndependent(t *testing.T) {
	s := New(nil)
	s.AddProxy("a:1")
	s.AddProxy("b:2")

	snap := s.Proxies()
	snap[0] = "mutated"
	_ = append(snap, "extra")

	if got := s.Proxies(); !slices.Equal(got, []string{"a:1", "b:2"}) {
		t.Fatalf("internal set changed through snapshot: %v", got)
	}
}

func TestSetProxiesDoesNotAliasCaller(t *testing.T) {
	s := New(nil)
	in := []string{"a:1", "b:2"}
	s.SetProxies(in)
	in[0] = "mutated"
	if got := s.Proxies(); got[0] != "a:1" {
		t.Fatalf("caller slice aliased: %v", got)
	}
}

func TestProxiesConcurrentAccess(t *testing.T) {
	s := New(nil)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				addr := fmt.Sprintf("10.0.%d.%d:443", w, i)
				s.AddProxy(addr)
				_ = s.Proxies()
				if i%3 == 0 {
					s.RemoveProxy(addr)
				}
				if i%50 == 0 {
					s.SetProxies(s.Proxies())
				}
			}
		}(w)
	}
	wg.Wait()

	got := s.Proxies()
	seen := make(map[string]bool, len(got))
	for _, p := range got {
		if seen[p] {
			t.Fatalf("duplicate proxy %q", p)
		}
		seen[p] = true
	}
}

func TestClosedBetaRoundTrip(t *testing.T) {
	s := New(nil)
	s.SetInClosedBeta([]string{"b", "a"})

	got := s.InClosedBeta()
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("got %v", got)
	}

	got[0] = "changed"
	if again := s.InClosedBeta(); !slices.Equal(again, []string{"a", "b"}) {
		t.Fatalf("read copy aliased internal state: %v", again)
	}
}

func TestClosedBetaWriteCopies(t *testing.T) {
	s := New(nil)
	in := []string{"x", "y", "x"}
	s.SetInClosedBeta(in)
	in[0] = "z"

	if got := s.InClosedBeta(); !slices.Equal(got, []string{"x", "y"}) {
		t.Fatalf("got %v", got)
	}
}

func TestClosedBetaDefaultsEmpty(t *testing.T) {
	s := New(nil)
	if got := s.InClosedBeta(); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestStunServersSetSemantics(t *testing.T) {
	s := New(nil)
	in := []string{"stun:b:3478", "stun:a:3478", "stun:b:3478"}
	s.SetStunServers(in)
	in[0] = "changed"

	got := s.StunServers()
	if !slices.Equal(got, []string{"stun:a:3478", "stun:b:3478"}) {
		t.Fatalf("got %v", got)
	}
	got[0] = "changed"
	if s.StunServers()[0] != "stun:a:3478" {
		t.Fatalf("snapshot aliased internal state")
	}
}

func TestAddStunServersConcurrentMerges(t *testing.T) {
	s := New(nil)
	s.SetStunServers([]string{"stun:base:3478"})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AddStunServers(fmt.Sprintf("stun:%02d:3478", i), "stun:base:3478")
		}(i)
	}
	wg.Wait()

	got := s.StunServers()
	if len(got) != 33 {
		t.Fatalf("expected 33 servers, got %d: %v", len(got), got)
	}
	if !slices.IsSorted(got) {
		t.Fatalf("servers not sorted: %v", got)
	}
}
