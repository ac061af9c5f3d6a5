package whatsapp

import (
	"context"
	"errors"
	"testing"
)

type fakeLookup struct {
	jid        string
	registered bool
	err        error

	calls      int
	lastNumber string
}

func (f *fakeLookup) LookupRegistered(_ context.Context, number string) (string, bool, error) {
	f.calls++
	f.lastNumber = number
	return f.jid, f.registered, f.err
}

func TestResolve_EmptyInput(t *testing.T) {
	lookup := &fakeLookup{}
	r := &Resolver{Lookup: lookup}

	for _, input := range []string{"", "   ", "\t\n"} {
		target := r.Resolve(context.Background(), input)
		if target.ResolutionError != "empty or invalid target" {
			t.Errorf("input %q: expected empty-target error, got %q", input, target.ResolutionError)
		}
		if target.CanonicalID != "" {
			t.Errorf("input %q: canonical ID must be absent on failure", input)
		}
	}
	if lookup.calls != 0 {
		t.Errorf("empty inputs must not trigger lookups, got %d", lookup.calls)
	}
}

func TestResolve_JIDPassthroughSkipsLookup(t *testing.T) {
	lookup := &fakeLookup{}
	r := &Resolver{Lookup: lookup}

	for _, input := range []string{
		"120363041234567890@g.us",
		"6281234567890@s.whatsapp.net",
		"status@broadcast",
	} {
		target := r.Resolve(context.Background(), input)
		if target.CanonicalID != input {
			t.Errorf("input %q: expected passthrough, got %q", input, target.CanonicalID)
		}
		if target.Failed() {
			t.Errorf("input %q: unexpected error %q", input, target.ResolutionError)
		}
	}
	if lookup.calls != 0 {
		t.Errorf("JID inputs must never trigger a lookup, got %d calls", lookup.calls)
	}
}

func TestResolve_NormalizesNumber(t *testing.T) {
	lookup := &fakeLookup{jid: "6281234567890@s.whatsapp.net", registered: true}
	r := &Resolver{Lookup: lookup}

	target := r.Resolve(context.Background(), "+62 812-3456-7890")
	if target.NormalizedNumber != "6281234567890" {
		t.Fatalf("expected digits-only number, got %q", target.NormalizedNumber)
	}
	if lookup.lastNumber != "6281234567890" {
		t.Errorf("lookup should receive the normalized number, got %q", lookup.lastNumber)
	}
	if target.CanonicalID != "6281234567890@s.whatsapp.net" {
		t.Errorf("unexpected canonical ID %q", target.CanonicalID)
	}

	// Re-resolving the normalized digits is idempotent.
	again := r.Resolve(context.Background(), target.NormalizedNumber)
	if again.CanonicalID != target.CanonicalID || again.NormalizedNumber != target.NormalizedNumber {
		t.Errorf("re-resolving normalized digits changed the outcome: %+v vs %+v", again, target)
	}
}

func TestResolve_NoDigits(t *testing.T) {
	lookup := &fakeLookup{}
	r := &Resolver{Lookup: lookup}

	target := r.Resolve(context.Background(), "not-a-number")
	if target.ResolutionError != "invalid number format" {
		t.Errorf("expected invalid-format error, got %q", target.ResolutionError)
	}
	if lookup.calls != 0 {
		t.Error("digit-less input must not trigger a lookup")
	}
}

func TestResolve_UnregisteredNumber(t *testing.T) {
	r := &Resolver{Lookup: &fakeLookup{registered: false}}

	target := r.Resolve(context.Background(), "628111222333")
	if target.ResolutionError != "number 628111222333 not registered" {
		t.Errorf("unexpected error text %q", target.ResolutionError)
	}
	if target.CanonicalID != "" {
		t.Error("unregistered number must not resolve to a canonical ID")
	}
}

func TestResolve_LookupFailureFallsOpen(t *testing.T) {
	r := &Resolver{Lookup: &fakeLookup{err: errors.New("socket closed")}}

	target := r.Resolve(context.Background(), "628111222333")
	if target.Failed() {
		t.Fatalf("lookup transport failure must fall open, got error %q", target.ResolutionError)
	}
	if target.CanonicalID != "628111222333@s.whatsapp.net" {
		t.Errorf("expected guessed direct-user JID, got %q", target.CanonicalID)
	}
}

func TestResolve_ExactlyOneOfCanonicalOrError(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		lookup *fakeLookup
	}{
		{"empty", "", &fakeLookup{}},
		{"jid", "x@g.us", &fakeLookup{}},
		{"no digits", "---", &fakeLookup{}},
		{"registered", "628111", &fakeLookup{jid: "628111@s.whatsapp.net", registered: true}},
		{"unregistered", "628111", &fakeLookup{}},
		{"lookup down", "628111", &fakeLookup{err: errors.New("down")}},
	}

	for _, tc := range cases {
		target := (&Resolver{Lookup: tc.lookup}).Resolve(context.Background(), tc.input)
		hasCanonical := target.CanonicalID != ""
		hasError := target.ResolutionError != ""
		if hasCanonical == hasError {
			t.Errorf("%s: exactly one of canonical ID / resolution error must be set, got %+v", tc.name, target)
		}
	}
}
