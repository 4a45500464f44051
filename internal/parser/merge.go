package parser

import (
	"sort"
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/schema"
)

// gateResult partitions one candidate kind into acceptance tiers after
// grouping and scoring. Accepted entries are schema-ready; the other two
// tiers feed diagnostics only.
type gateResult[S any, C any] struct {
	Accepted         []S
	MediumConfidence []C
	Discarded        []C
}

// chooseBestCandidate walks one canonical-key group: the highest scorer at or
// above the high threshold wins, displaced high scorers and borderline ones
// land in medium, the rest in discarded.
func chooseBestCandidate[C any](group []C, score func(*C) float64) (*C, []C, []C) {
	var best *C
	bestScore := -1.0
	var medium, discarded []C

	for i := range group {
		s := score(&group[i])
		switch {
		case s >= HighConfidenceThreshold:
			if s > bestScore {
				if best != nil {
					medium = append(medium, *best)
				}
				c := group[i]
				best = &c
				bestScore = s
			} else {
				medium = append(medium, group[i])
			}
		case s >= MediumConfidenceThreshold:
			medium = append(medium, group[i])
		default:
			discarded = append(discarded, group[i])
		}
	}

	return best, medium, discarded
}

// groupKeys returns the distinct canonical keys in first-seen order so the
// merge walk is deterministic.
func groupKeys[C any](candidates []C, key func(*C) string) ([]string, map[string][]C) {
	grouped := make(map[string][]C)
	var order []string
	for i := range candidates {
		k := key(&candidates[i])
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], candidates[i])
	}
	return order, grouped
}

func mergeFlagCandidates(candidates []candidate.Flag, threshold float64) gateResult[schema.FlagSchema, candidate.Flag] {
	order, grouped := groupKeys(candidates, func(c *candidate.Flag) string {
		if key := c.CanonicalKey(); key != "" {
			return key
		}
		return "unknown"
	})

	var result gateResult[schema.FlagSchema, candidate.Flag]
	for _, key := range order {
		best, medium, low := chooseBestCandidate(grouped[key], scoreFlagCandidate)
		if best != nil {
			score := scoreFlagCandidate(best)
			switch {
			case score >= threshold:
				if isValidFlagSchema(&best.FlagSchema) {
					result.Accepted = append(result.Accepted, best.FlagSchema)
				} else {
					// Invalid names (for example bare "-" / "--") should not
					// fail the full schema; keep them out of accepted output.
					low = append(low, candidate.NewFlag(best.FlagSchema, candidate.UnknownSpan(), "merge-invalid-flag", 0))
				}
			case score >= MediumConfidenceThreshold:
				medium = append(medium, *best)
			default:
				low = append(low, *best)
			}
		}
		result.MediumConfidence = append(result.MediumConfidence, medium...)
		result.Discarded = append(result.Discarded, low...)
	}

	sort.SliceStable(result.Accepted, func(i, j int) bool {
		return result.Accepted[i].CanonicalName() < result.Accepted[j].CanonicalName()
	})
	return result
}

// isValidFlagSchema rejects malformed flag names that survive extraction,
// such as bare dashes or bracket debris from usage grammar.
func isValidFlagSchema(flag *schema.FlagSchema) bool {
	if flag.Short != "" {
		short := flag.Short
		if !strings.HasPrefix(short, "-") || strings.HasPrefix(short, "--") || len(short) < 2 {
			return false
		}
		for _, ch := range short[1:] {
			switch ch {
			case '[', ']', '<', '>', '(', ')', '/':
				return false
			}
		}
	}
	if flag.Long != "" {
		long := flag.Long
		if !strings.HasPrefix(long, "--") || len(long) < 3 {
			return false
		}
		body := long[2:]
		if !isASCIIAlpha(rune(body[0])) {
			return false
		}
		for _, ch := range body {
			if !isASCIIAlphanumeric(ch) && ch != '-' && ch != '_' && ch != '.' {
				return false
			}
		}
	}
	return true
}

func mergeSubcommandCandidates(candidates []candidate.Subcommand, threshold float64) gateResult[schema.SubcommandSchema, candidate.Subcommand] {
	order, grouped := groupKeys(candidates, func(c *candidate.Subcommand) string {
		return c.CanonicalKey()
	})

	var result gateResult[schema.SubcommandSchema, candidate.Subcommand]
	for _, key := range order {
		best, medium, low := chooseBestCandidate(grouped[key], scoreSubcommandCandidate)
		if best != nil {
			score := scoreSubcommandCandidate(best)
			switch {
			case score >= threshold:
				result.Accepted = append(result.Accepted, best.SubcommandSchema)
			case score >= MediumConfidenceThreshold:
				medium = append(medium, *best)
			default:
				low = append(low, *best)
			}
		}
		result.MediumConfidence = append(result.MediumConfidence, medium...)
		result.Discarded = append(result.Discarded, low...)
	}

	sort.SliceStable(result.Accepted, func(i, j int) bool {
		return result.Accepted[i].Name < result.Accepted[j].Name
	})
	return result
}

func mergeArgCandidates(candidates []candidate.Arg, threshold float64) gateResult[schema.ArgSchema, candidate.Arg] {
	order, grouped := groupKeys(candidates, func(c *candidate.Arg) string {
		return c.CanonicalKey()
	})

	var result gateResult[schema.ArgSchema, candidate.Arg]
	for _, key := range order {
		best, medium, low := chooseBestCandidate(grouped[key], scoreArgCandidate)
		if best != nil {
			score := scoreArgCandidate(best)
			switch {
			case score >= threshold:
				result.Accepted = append(result.Accepted, best.ArgSchema)
			case score >= MediumConfidenceThreshold:
				medium = append(medium, *best)
			default:
				low = append(low, *best)
			}
		}
		result.MediumConfidence = append(result.MediumConfidence, medium...)
		result.Discarded = append(result.Discarded, low...)
	}

	sort.SliceStable(result.Accepted, func(i, j int) bool {
		return result.Accepted[i].Name < result.Accepted[j].Name
	})
	return result
}
