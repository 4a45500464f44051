package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validation sentinel errors. Callers match with errors.Is.
var (
	ErrEmptyCommandName    = errors.New("schema command cannot be empty")
	ErrMissingFlagName     = errors.New("flag must define short or long form")
	ErrInvalidShortFlag    = errors.New("invalid short flag format")
	ErrInvalidLongFlag     = errors.New("invalid long flag format")
	ErrDuplicateFlag       = errors.New("duplicate flag in scope")
	ErrDuplicateSubcommand = errors.New("duplicate subcommand in scope")
	ErrSubcommandCycle     = errors.New("subcommand cycle")
	ErrSubcommandSelfCycle = errors.New("subcommand self-cycle")
)

// Validate checks the structural invariants of a command schema: non-empty
// command name, well-formed flags, unique flags and subcommands per scope,
// and an acyclic subcommand tree. It returns all problems found.
func Validate(c *CommandSchema) []error {
	var errs []error

	if strings.TrimSpace(c.Command) == "" {
		return []error{ErrEmptyCommandName}
	}

	errs = append(errs, validateFlags(c.GlobalFlags)...)

	path := []string{c.Command}
	errs = append(errs, validateSubcommands(c.Subcommands, path)...)
	return errs
}

func validateSubcommands(subs []SubcommandSchema, path []string) []error {
	var errs []error
	seen := map[string]bool{}

	for i := range subs {
		sub := &subs[i]
		name := strings.TrimSpace(sub.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("%w: <empty>", ErrDuplicateSubcommand))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateSubcommand, name))
			continue
		}
		seen[name] = true

		for _, segment := range path {
			if segment == name {
				cycle := strings.Join(append(append([]string{}, path...), name), " ")
				errs = append(errs, fmt.Errorf("%w at path: %s", ErrSubcommandCycle, cycle))
			}
		}

		errs = append(errs, validateFlags(sub.Flags)...)
		errs = append(errs, validateSubcommands(sub.Subcommands, append(path, name))...)
	}

	return errs
}

func validateFlags(flags []FlagSchema) []error {
	var errs []error
	seen := map[string]bool{}

	for i := range flags {
		flag := &flags[i]
		if flag.Short == "" && flag.Long == "" {
			errs = append(errs, ErrMissingFlagName)
			continue
		}

		if flag.Short != "" {
			if !strings.HasPrefix(flag.Short, "-") || strings.HasPrefix(flag.Short, "--") || len(flag.Short) < 2 {
				errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidShortFlag, flag.Short))
				continue
			}
			if seen[flag.Short] {
				errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateFlag, flag.Short))
				continue
			}
			seen[flag.Short] = true
		}

		if flag.Long != "" {
			if !strings.HasPrefix(flag.Long, "--") || len(flag.Long) < 3 {
				errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidLongFlag, flag.Long))
				continue
			}
			if seen[flag.Long] {
				errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateFlag, flag.Long))
				continue
			}
			seen[flag.Long] = true
		}
	}

	return errs
}

// Hierarchy is a directed command-name graph used to catch unexpected
// recursive structure in an extracted subcommand tree before acceptance.
// The schema itself is an owned tree and cannot cycle; this guards against
// anomalies introduced by candidate merging.
type Hierarchy struct {
	edges map[string][]string
}

// NewHierarchy creates an empty command hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{edges: map[string][]string{}}
}

// AddEdge records a parent→child command relationship. An edge from a node to
// itself is rejected immediately.
func (h *Hierarchy) AddEdge(parent, child string) error {
	if parent == child {
		return fmt.Errorf("%w: %s", ErrSubcommandSelfCycle, parent)
	}
	h.edges[parent] = append(h.edges[parent], child)
	if _, ok := h.edges[child]; !ok {
		h.edges[child] = nil
	}
	return nil
}

// AddTree inserts every parent/child pair of the schema's subcommand tree.
func (h *Hierarchy) AddTree(c *CommandSchema) error {
	return h.addSubtree(c.Command, c.Subcommands)
}

func (h *Hierarchy) addSubtree(parent string, subs []SubcommandSchema) error {
	for i := range subs {
		if err := h.AddEdge(parent, subs[i].Name); err != nil {
			return err
		}
		if err := h.addSubtree(subs[i].Name, subs[i].Subcommands); err != nil {
			return err
		}
	}
	return nil
}

// DetectCycle runs an iterative depth-first search over the graph and returns
// an error naming a node on a cycle, or nil when the graph is acyclic.
func (h *Hierarchy) DetectCycle() error {
	roots := make([]string, 0, len(h.edges))
	for node := range h.edges {
		roots = append(roots, node)
	}
	sort.Strings(roots)

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(h.edges))

	type frame struct {
		node string
		next int
	}

	for _, root := range roots {
		if state[root] != unvisited {
			continue
		}

		stack := []frame{{node: root}}
		state[root] = visiting

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := h.edges[top.node]

			if top.next < len(children) {
				child := children[top.next]
				top.next++
				switch state[child] {
				case visiting:
					return fmt.Errorf("%w detected at: %s", ErrSubcommandCycle, child)
				case unvisited:
					state[child] = visiting
					stack = append(stack, frame{node: child})
				}
				continue
			}

			state[top.node] = visited
			stack = stack[:len(stack)-1]
		}
	}

	return nil
}
