// Package version extracts semver-like version strings from captured
// help or --version banner output.
package version

import (
	"regexp"
	"strconv"
	"strings"
)

var versionRE = regexp.MustCompile(`\bv?(\d{1,4}\.\d{1,4}(?:\.\d{1,6})?)([-+][a-zA-Z0-9._+-]*)?\b`)

const acceptThreshold = 0.4

type versionCandidate struct {
	raw        string
	confidence float64
}

// Extract returns the most confident version string found in the first
// lines of text, or "" when nothing clears the acceptance threshold.
// The leading 'v' prefix is stripped from the result.
func Extract(text, commandName string) string {
	best := versionCandidate{}
	for _, cand := range collectCandidates(text, commandName) {
		if cand.confidence > best.confidence {
			best = cand
		}
	}
	if best.raw == "" || best.confidence < acceptThreshold {
		return ""
	}
	return normalizeVersion(best.raw)
}

func collectCandidates(text, commandName string) []versionCandidate {
	cmdLower := commandName
	if fields := strings.Fields(commandName); len(fields) > 0 {
		cmdLower = fields[0]
	}
	cmdLower = strings.ToLower(cmdLower)

	var candidates []versionCandidate
	lines := strings.Split(text, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for i, line := range lines {
		lineLower := strings.ToLower(line)
		for _, m := range versionRE.FindAllStringSubmatchIndex(line, -1) {
			raw := line[m[0]:m[1]]
			core := line[m[2]:m[3]]

			if isLikelyDate(core) || isLikelyIP(core) {
				continue
			}
			// Dotted numbers inside paths are not versions.
			if m[0] > 0 && (line[m[0]-1] == '/' || line[m[0]-1] == '\\') {
				continue
			}
			// A further dotted component means we matched a fragment.
			if m[1] < len(line) && line[m[1]] == '.' {
				continue
			}

			confidence := 0.3
			if strings.Contains(lineLower, "version") || strings.Contains(lineLower, "ver ") {
				confidence += 0.4
			}
			if cmdLower != "" && strings.Contains(lineLower, cmdLower) {
				confidence += 0.2
			}
			if raw[0] == 'v' || raw[0] == 'V' {
				confidence += 0.1
			}
			if i < 3 {
				confidence += 0.1
			}
			if strings.Count(core, ".") >= 2 {
				confidence += 0.1
			}
			if confidence > 1.0 {
				confidence = 1.0
			}
			candidates = append(candidates, versionCandidate{raw: raw, confidence: confidence})
		}
	}
	return candidates
}

func normalizeVersion(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == 'v' || trimmed[0] == 'V') {
		return trimmed[1:]
	}
	return trimmed
}

// isLikelyDate reports dotted dates such as 2024.01.15: a year-like
// first component followed by a month-like second one.
func isLikelyDate(version string) bool {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return false
	}
	first, err := strconv.Atoi(parts[0])
	if err != nil || first < 2000 || first >= 2100 {
		return false
	}
	second, err := strconv.Atoi(parts[1])
	return err == nil && second >= 1 && second <= 12
}

// isLikelyIP reports four-octet dotted quads (192.168.1.1).
func isLikelyIP(version string) bool {
	parts := strings.Split(version, ".")
	if len(parts) < 4 {
		return false
	}
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n > 255 {
			return false
		}
	}
	return true
}
