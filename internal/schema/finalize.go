package schema

import "sort"

// Finalize sorts every sibling collection in the schema tree by canonical
// name so output is deterministic and diffable. It has no semantic effect.
func Finalize(c *CommandSchema) {
	sortFlags(c.GlobalFlags)
	sortArgs(c.Positional)
	sortSubcommands(c.Subcommands)
	for i := range c.Subcommands {
		finalizeSubcommand(&c.Subcommands[i])
	}
}

func finalizeSubcommand(sub *SubcommandSchema) {
	sortFlags(sub.Flags)
	sortArgs(sub.Positional)
	sort.Strings(sub.Aliases)
	sortSubcommands(sub.Subcommands)
	for i := range sub.Subcommands {
		finalizeSubcommand(&sub.Subcommands[i])
	}
}

func sortFlags(flags []FlagSchema) {
	sort.SliceStable(flags, func(i, j int) bool {
		return flags[i].CanonicalName() < flags[j].CanonicalName()
	})
}

func sortArgs(args []ArgSchema) {
	sort.SliceStable(args, func(i, j int) bool {
		return args[i].Name < args[j].Name
	})
}

func sortSubcommands(subs []SubcommandSchema) {
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Name < subs[j].Name
	})
}
