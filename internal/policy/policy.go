// Package policy decides, per provider and model, which normalization
// stages a transcript needs before it can be sent.
package policy

import (
	"strings"

	"splice/internal/toolid"
)

// Policy holds the flags the pipeline consults. The zero value is full
// pass-through.
type Policy struct {
	SanitizeToolCallIDs        bool
	ToolCallIDMode             toolid.Mode
	RepairToolUseResultPairing bool
	AllowSyntheticToolResults  bool
}

// Model id fragments that identify the Mistral family regardless of which
// aggregator serves the model.
var mistralHints = []string{"mistral", "mixtral", "codestral", "pixtral", "devstral", "ministral"}

// ForModel resolves the default policy for a provider/model pair. Matching
// is case-insensitive. Mistral-family models get strict9 id sanitization;
// Anthropic and Google additionally get pairing repair with synthetic
// results. Everything else passes through untouched.
func ForModel(provider, modelID string) Policy {
	p := strings.ToLower(provider)
	m := strings.ToLower(modelID)

	switch {
	case isMistral(p, m):
		return Policy{
			SanitizeToolCallIDs: true,
			ToolCallIDMode:      toolid.ModeStrict9,
		}
	case isAnthropic(p), isGoogle(p, m):
		return Policy{
			SanitizeToolCallIDs:        true,
			ToolCallIDMode:             toolid.ModeStrict,
			RepairToolUseResultPairing: true,
			AllowSyntheticToolResults:  true,
		}
	}
	return Policy{}
}

func isMistral(provider, model string) bool {
	if provider == "mistral" {
		return true
	}
	for _, hint := range mistralHints {
		if strings.Contains(model, hint) {
			return true
		}
	}
	return false
}

func isAnthropic(provider string) bool {
	return provider == "anthropic"
}

func isGoogle(provider, model string) bool {
	return strings.HasPrefix(provider, "google") || strings.Contains(model, "gemini")
}
