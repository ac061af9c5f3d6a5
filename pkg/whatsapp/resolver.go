package whatsapp

import (
	"context"
	"strings"

	"go.mau.fi/whatsmeow/types"

	"gowa-gateway/pkg/log"
)

// RecipientTarget is the outcome of resolving one raw recipient string.
// Exactly one of CanonicalID or ResolutionError is set.
type RecipientTarget struct {
	RawInput         string
	CanonicalID      string
	NormalizedNumber string
	ResolutionError  string
}

func (t RecipientTarget) Failed() bool {
	return t.ResolutionError != ""
}

// RegistrationLookup asks the underlying client whether a phone number is
// registered on the network and returns its canonical JID when it is.
type RegistrationLookup interface {
	LookupRegistered(ctx context.Context, number string) (jid string, registered bool, err error)
}

// Resolver turns raw user-supplied recipient strings into canonical chat
// identifiers. Inputs that already carry a server suffix (group, broadcast
// or direct JIDs) pass through without a network lookup.
type Resolver struct {
	Lookup RegistrationLookup
}

func (r *Resolver) Resolve(ctx context.Context, rawInput string) RecipientTarget {
	target := RecipientTarget{RawInput: rawInput}

	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		target.ResolutionError = "empty or invalid target"
		return target
	}

	if strings.ContainsRune(trimmed, '@') {
		target.CanonicalID = trimmed
		return target
	}

	target.NormalizedNumber = stripNonDigits(trimmed)
	if target.NormalizedNumber == "" {
		target.ResolutionError = "invalid number format"
		return target
	}

	jid, registered, err := r.Lookup.LookupRegistered(ctx, target.NormalizedNumber)
	if err != nil {
		// Fail open: a broken validation channel must not block sends, so
		// the target gets a guessed direct-user JID. This is documented
		// policy, distinct from the hard error for unregistered numbers.
		log.MessageOp("Resolve", target.NormalizedNumber).
			WithError(err).
			Warn("Registration lookup failed, falling back to direct-user JID")
		target.CanonicalID = target.NormalizedNumber + "@" + types.DefaultUserServer
		return target
	}
	if !registered {
		target.ResolutionError = "number " + target.NormalizedNumber + " not registered"
		return target
	}

	target.CanonicalID = jid
	return target
}

func stripNonDigits(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
