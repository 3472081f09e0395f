// Package toolid rewrites tool-call identifiers into a provider-legal,
// transcript-unique form while keeping every call/result cross-reference
// intact.
package toolid

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"splice/internal/transcript"
)

// Mode selects the sanitization rules for a provider family.
type Mode string

const (
	// ModeStrict strips ids down to alphanumeric characters.
	ModeStrict Mode = "strict"

	// ModeStrict9 produces ids of exactly 9 alphanumeric characters. Some
	// providers reject anything else.
	ModeStrict9 Mode = "strict9"
)

const (
	maxIDLength   = 40
	maxAttempts   = 1000
	emptyFallback = "sanitizedtoolid"
)

// Sanitize rewrites a raw id into legal form for the given mode. It does
// not consider uniqueness; use Resolve for that.
func Sanitize(id string, mode Mode) string {
	switch mode {
	case ModeStrict9:
		s := alnum(id)
		switch {
		case len(s) >= 9:
			return s[:9]
		case len(s) > 0:
			return digest(s, 9)
		default:
			return digest("sanitized", 9)
		}
	case ModeStrict:
		s := alnum(id)
		if s == "" {
			return emptyFallback
		}
		return s
	default:
		// Caller-specified modes keep underscore and hyphen, which every
		// known provider accepts.
		s := legal(id)
		if s == "" {
			return emptyFallback
		}
		return s
	}
}

// Resolve sanitizes a raw id and returns a candidate not present in used.
// The result is deterministic for a fixed (id, used, mode) triple except
// for the timestamp-based last-resort fallbacks. The caller owns used and
// is responsible for inserting the returned id.
func Resolve(id string, used map[string]struct{}, mode Mode, now func() time.Time) string {
	if now == nil {
		now = time.Now
	}
	if mode == ModeStrict9 {
		return resolveStrict9(id, used, now)
	}
	return resolveGeneric(id, used, mode, now)
}

func resolveStrict9(id string, used map[string]struct{}, now func() time.Time) string {
	candidate := Sanitize(id, ModeStrict9)
	if _, taken := used[candidate]; !taken {
		return candidate
	}
	for i := 0; i < maxAttempts; i++ {
		candidate = digest(fmt.Sprintf("%s:%d", id, i), 9)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
	// 1000 collisions in a row is practically impossible; take the
	// timestamp variant without checking.
	return digest(fmt.Sprintf("%s:%d", id, now().UnixMilli()), 9)
}

func resolveGeneric(id string, used map[string]struct{}, mode Mode, now func() time.Time) string {
	base := clip(Sanitize(id, mode), maxIDLength)
	if _, taken := used[base]; !taken {
		return base
	}

	sep := "_"
	if mode == ModeStrict {
		sep = ""
	}

	candidate := withSuffix(base, sep+digest(id, 8))
	if _, taken := used[candidate]; !taken {
		return candidate
	}

	for i := 2; i <= maxAttempts; i++ {
		suffix := fmt.Sprintf("_%d", i)
		if mode == ModeStrict {
			suffix = fmt.Sprintf("x%d", i)
		}
		candidate = withSuffix(base, suffix)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}

	suffix := fmt.Sprintf("_%d", now().UnixMilli())
	if mode == ModeStrict {
		suffix = fmt.Sprintf("t%d", now().UnixMilli())
	}
	return withSuffix(base, suffix)
}

// Canonicalize walks the transcript once and rewrites every tool-call id
// (and every result reference to it) to a unique, sanitized form. A single
// oldId -> newId map shared across the whole transcript keeps call/result
// linkage consistent even when sanitized ids collide. The input slice is
// returned unchanged, same reference, when no id needed rewriting.
func Canonicalize(msgs []transcript.Message, mode Mode) []transcript.Message {
	return CanonicalizeWithClock(msgs, mode, time.Now)
}

// CanonicalizeWithClock is Canonicalize with an injected time source for
// the resolver's last-resort fallback.
func CanonicalizeWithClock(msgs []transcript.Message, mode Mode, now func() time.Time) []transcript.Message {
	mapped := make(map[string]string)
	used := make(map[string]struct{})

	resolve := func(old string) string {
		if id, ok := mapped[old]; ok {
			return id
		}
		id := Resolve(old, used, mode, now)
		mapped[old] = id
		used[id] = struct{}{}
		return id
	}

	out := make([]transcript.Message, 0, len(msgs))
	changed := false

	for _, msg := range msgs {
		switch msg.Role {
		case transcript.RoleAssistant:
			var rewritten []transcript.ContentBlock
			for i, block := range msg.Content {
				if !block.IsToolCall() {
					continue
				}
				id := resolve(block.ID)
				if id == block.ID {
					continue
				}
				if rewritten == nil {
					rewritten = make([]transcript.ContentBlock, len(msg.Content))
					copy(rewritten, msg.Content)
				}
				rewritten[i].ID = id
			}
			if rewritten != nil {
				msg.Content = rewritten
				changed = true
			}
			out = append(out, msg)

		case transcript.RoleToolResult:
			old := msg.ResultID()
			if old != "" {
				// Results normally reference an id resolved while walking
				// the assistant message ahead of them; a first-seen id here
				// is resolved fresh with the same rules.
				if id := resolve(old); id != old {
					if msg.ToolCallID != "" {
						msg.ToolCallID = id
					} else {
						msg.ToolUseID = id
					}
					changed = true
				}
			}
			out = append(out, msg)

		case transcript.RoleUser, transcript.RoleSystem:
			out = append(out, msg)

		default:
			out = append(out, msg)
		}
	}

	if !changed {
		return msgs
	}
	return out
}

func alnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isAlnum(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func legal(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isAlnum(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func digest(s string, n int) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:n]
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// withSuffix appends suffix to base, clipping base so the result stays
// within maxIDLength.
func withSuffix(base, suffix string) string {
	return clip(base, maxIDLength-len(suffix)) + suffix
}
