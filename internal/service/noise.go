package service

import "strings"

// NoiseFilterConfig holds the tunable policy for noise detection. The
// defaults must stay behaviorally compatible with the assistant's
// existing triage screens, so change them only as a product decision.
type NoiseFilterConfig struct {
	// MinQuestionLength is the minimum trimmed length (in characters)
	// for a question to be considered substantive.
	MinQuestionLength int
	// Greetings are opener phrases that mark a question as noise when
	// the question starts with one of them.
	Greetings []string
	// Fillers are low-information utterances that mark a question as
	// noise when the whole question matches one of them.
	Fillers []string
}

// DefaultNoiseFilterConfig returns the default noise policy.
func DefaultNoiseFilterConfig() NoiseFilterConfig {
	return NoiseFilterConfig{
		MinQuestionLength: 10,
		Greetings: []string{
			"oi", "olá", "ola", "bom dia", "boa tarde", "boa noite",
			"hi", "hello", "hey", "good morning", "good afternoon",
			"thanks", "thank you", "obrigado", "obrigada", "valeu",
			"ok", "okay", "tudo bem",
		},
		Fillers: []string{
			"wow", "cool", "fine", "got it", "nice",
			"legal", "show", "top", "blz", "beleza", "entendi", "massa",
		},
	}
}

// NoiseFilter rejects greetings, acknowledgments and low-information
// questions before they enter clustering. It is a pure predicate: no
// I/O, deterministic.
type NoiseFilter struct {
	minLength int
	greetings []string
	fillers   map[string]struct{}
}

// NewNoiseFilter creates a NoiseFilter from the given config, falling
// back to defaults for zero values.
func NewNoiseFilter(cfg NoiseFilterConfig) *NoiseFilter {
	defaults := DefaultNoiseFilterConfig()
	if cfg.MinQuestionLength <= 0 {
		cfg.MinQuestionLength = defaults.MinQuestionLength
	}
	if len(cfg.Greetings) == 0 {
		cfg.Greetings = defaults.Greetings
	}
	if len(cfg.Fillers) == 0 {
		cfg.Fillers = defaults.Fillers
	}

	fillers := make(map[string]struct{}, len(cfg.Fillers))
	for _, f := range cfg.Fillers {
		fillers[strings.ToLower(f)] = struct{}{}
	}

	greetings := make([]string, len(cfg.Greetings))
	for i, g := range cfg.Greetings {
		greetings[i] = strings.ToLower(g)
	}

	return &NoiseFilter{
		minLength: cfg.MinQuestionLength,
		greetings: greetings,
		fillers:   fillers,
	}
}

// IsNoise reports whether a question should be excluded from
// clustering. Excluded gaps stay pending so they remain visible for
// manual triage.
func (f *NoiseFilter) IsNoise(question string) bool {
	trimmed := strings.TrimSpace(question)
	if len([]rune(trimmed)) < f.minLength {
		return true
	}

	lower := strings.ToLower(trimmed)

	if _, ok := f.fillers[strings.Trim(lower, ".!?")]; ok {
		return true
	}

	for _, greeting := range f.greetings {
		if lower == greeting {
			return true
		}
		// Opener followed only by punctuation, e.g. "bom dia!" or
		// "oi, tudo bem?". A greeting followed by a real question is
		// not noise.
		if strings.HasPrefix(lower, greeting) && isClosing(lower[len(greeting):]) {
			return true
		}
	}

	return false
}

// isClosing reports whether the remainder of a greeting contains no
// substantive content.
func isClosing(rest string) bool {
	rest = strings.Trim(rest, " ,.!?")
	switch rest {
	case "", "tudo bem", "td bem", "everyone", "pessoal", "there":
		return true
	}
	return false
}
