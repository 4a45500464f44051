package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ex1tium/cmdschema/internal/schema"
)

// commandTrie records parent/child command edges so the extracted hierarchy
// can be checked for cycles before it reaches the schema.
type commandTrie struct {
	children map[string]map[string]bool
}

func newCommandTrie() *commandTrie {
	return &commandTrie{children: make(map[string]map[string]bool)}
}

// insert adds every parent/child edge along a command path. A path shorter
// than two segments carries no edges.
func (t *commandTrie) insert(path []string) error {
	if len(path) < 2 {
		return nil
	}

	for i := 0; i+1 < len(path); i++ {
		parent := strings.TrimSpace(path[i])
		child := strings.TrimSpace(path[i+1])
		if parent == child {
			return fmt.Errorf("self-cycle detected for command %q", parent)
		}

		if t.children[parent] == nil {
			t.children[parent] = make(map[string]bool)
		}
		if t.children[child] == nil {
			t.children[child] = make(map[string]bool)
		}
		t.children[parent][child] = true
	}

	return nil
}

// validate walks every node and reports any cycle it can reach.
func (t *commandTrie) validate() []string {
	var errors []string
	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	names := make([]string, 0, len(t.children))
	for name := range t.children {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t.visit(name, visiting, visited, &errors)
	}
	return errors
}

func (t *commandTrie) visit(node string, visiting, visited map[string]bool, errors *[]string) {
	if visited[node] {
		return
	}
	if visiting[node] {
		*errors = append(*errors, fmt.Sprintf("cycle detected at command %q", node))
		return
	}
	visiting[node] = true

	children := make([]string, 0, len(t.children[node]))
	for child := range t.children[node] {
		children = append(children, child)
	}
	sort.Strings(children)
	for _, child := range children {
		t.visit(child, visiting, visited, errors)
	}

	delete(visiting, node)
	visited[node] = true
}

// validateSubcommandHierarchy checks the root command plus its direct
// subcommands for degenerate hierarchies (a subcommand named after its own
// parent, or cycles).
func validateSubcommandHierarchy(command string, subcommands []schema.SubcommandSchema) []string {
	trie := newCommandTrie()

	for _, sub := range subcommands {
		if err := trie.insert([]string{command, sub.Name}); err != nil {
			return []string{err.Error()}
		}
	}

	return trie.validate()
}

// applyFlagRelationships scans every flag description for references to other
// known flags under requires/conflicts phrasing and records them, dropping
// self-references.
func applyFlagRelationships(flags []schema.FlagSchema) {
	var all []string
	for i := range flags {
		if flags[i].Long != "" {
			all = append(all, flags[i].Long)
		}
		if flags[i].Short != "" {
			all = append(all, flags[i].Short)
		}
	}

	for i := range flags {
		flag := &flags[i]
		if flag.Description == "" {
			continue
		}

		requires, conflicts := relationshipsAgainstKnown(flag.Description, all)
		for _, value := range requires {
			if !containsString(flag.Requires, value) {
				flag.Requires = append(flag.Requires, value)
			}
		}
		for _, value := range conflicts {
			if !containsString(flag.ConflictsWith, value) {
				flag.ConflictsWith = append(flag.ConflictsWith, value)
			}
		}

		flag.Requires = removeString(flag.Requires, flag.Short)
		flag.Requires = removeString(flag.Requires, flag.Long)
		flag.ConflictsWith = removeString(flag.ConflictsWith, flag.Short)
		flag.ConflictsWith = removeString(flag.ConflictsWith, flag.Long)
	}
}

// relationshipsAgainstKnown extracts flag references from a description, but
// only keeps references that name a flag actually present on the command.
// References belong to the clause of the phrase they follow, so a description
// carrying both a requirement and a conflict keeps the two lists apart.
func relationshipsAgainstKnown(description string, allFlags []string) (requires, conflicts []string) {
	clauses := relationClauses(description,
		[]string{"requires", "must be used with", "only with"},
		[]string{"conflicts", "mutually exclusive", "cannot be used with"})

	for _, clause := range clauses {
		for _, match := range flagRefRE.FindAllStringSubmatch(clause.text, -1) {
			ref := match[1]
			if !containsString(allFlags, ref) {
				continue
			}
			if clause.conflict {
				if !containsString(conflicts, ref) {
					conflicts = append(conflicts, ref)
				}
			} else if !containsString(requires, ref) {
				requires = append(requires, ref)
			}
		}
	}

	return requires, conflicts
}

// relationClause is the stretch of description text governed by one
// requirement or conflict phrase.
type relationClause struct {
	conflict bool
	text     string
}

// relationClauses locates every requirement and conflict phrase in the
// description and cuts out the clause each one governs: from the phrase up
// to the next phrase, a semicolon, or a sentence-ending period.
func relationClauses(description string, requirePhrases, conflictPhrases []string) []relationClause {
	lower := strings.ToLower(description)

	type phraseHit struct {
		start    int
		conflict bool
	}
	var hits []phraseHit
	collect := func(phrases []string, conflict bool) {
		for _, phrase := range phrases {
			for from := 0; from < len(lower); {
				idx := strings.Index(lower[from:], phrase)
				if idx < 0 {
					break
				}
				hits = append(hits, phraseHit{start: from + idx, conflict: conflict})
				from += idx + len(phrase)
			}
		}
	}
	collect(requirePhrases, false)
	collect(conflictPhrases, true)
	sort.Slice(hits, func(i, j int) bool { return hits[i].start < hits[j].start })

	var clauses []relationClause
	for i, hit := range hits {
		end := len(description)
		if i+1 < len(hits) && hits[i+1].start < end {
			end = hits[i+1].start
		}
		for j := hit.start; j < end; j++ {
			if description[j] == ';' {
				end = j
				break
			}
			// A period only ends the clause at a sentence boundary; dots
			// inside flag names stay.
			if description[j] == '.' && (j+1 == len(description) || description[j+1] == ' ') {
				end = j
				break
			}
		}
		clauses = append(clauses, relationClause{conflict: hit.conflict, text: description[hit.start:end]})
	}
	return clauses
}

func containsString(values []string, needle string) bool {
	for _, value := range values {
		if value == needle {
			return true
		}
	}
	return false
}

func removeString(values []string, needle string) []string {
	if needle == "" {
		return values
	}
	out := values[:0]
	for _, value := range values {
		if value != needle {
			out = append(out, value)
		}
	}
	return out
}
