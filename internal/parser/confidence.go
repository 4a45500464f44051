package parser

import (
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/schema"
)

// Candidate acceptance thresholds. Candidates scoring at or above
// HighConfidenceThreshold are accepted outright; anything between the two is
// kept in diagnostics only; anything below MediumConfidenceThreshold is
// discarded.
const (
	HighConfidenceThreshold   = 0.7
	MediumConfidenceThreshold = 0.5
)

// scoreFlagCandidate applies bonuses for value-taking flags and penalties for
// placeholder tokens on top of the strategy-assigned base confidence.
func scoreFlagCandidate(c *candidate.Flag) float64 {
	score := c.Confidence

	if c.TakesValue {
		score += 0.05
	}
	if strings.Contains(c.Description, "=") {
		score += 0.1
	}

	name := c.Long
	if name == "" {
		name = c.Short
	}
	if name != "" && isPlaceholderToken(name) {
		score -= 0.5
	}

	return candidate.Clamp(score)
}

// scoreSubcommandCandidate penalizes placeholder tokens, env-var rows, and
// keybinding rows.
func scoreSubcommandCandidate(c *candidate.Subcommand) float64 {
	score := c.Confidence

	if isPlaceholderToken(c.Name) {
		score -= 0.7
	}
	if isEnvVarRow(c.Name) {
		score -= 0.7
	}
	if isKeybindingRow(c.Name) {
		score -= 0.5
	}

	return candidate.Clamp(score)
}

// scoreArgCandidate penalizes placeholder tokens.
func scoreArgCandidate(c *candidate.Arg) float64 {
	score := c.Confidence

	if isPlaceholderToken(c.Name) {
		score -= 0.45
	}

	return candidate.Clamp(score)
}

// gateSchema enforces the medium-confidence floor on a finished schema.
func gateSchema(s *schema.CommandSchema) *schema.CommandSchema {
	if s.Confidence < MediumConfidenceThreshold {
		s.Confidence = MediumConfidenceThreshold
	}
	return s
}
