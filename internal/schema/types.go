package schema

import (
	"fmt"
	"strings"
)

// ContractVersion is the semver version of the schema contract. It is stamped
// into every finalized CommandSchema so downstream consumers can detect
// incompatible shapes.
const ContractVersion = "1.0.0"

// Source records how a schema was obtained.
type Source int

const (
	SourceHelpCommand Source = iota
	SourceManPage
	SourceBootstrap
	SourceLearned
)

func (s Source) String() string {
	switch s {
	case SourceHelpCommand:
		return "help_command"
	case SourceManPage:
		return "man_page"
	case SourceBootstrap:
		return "bootstrap"
	case SourceLearned:
		return "learned"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON/YAML output.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Source) UnmarshalText(data []byte) error {
	switch string(data) {
	case "help_command":
		*s = SourceHelpCommand
	case "man_page":
		*s = SourceManPage
	case "bootstrap":
		*s = SourceBootstrap
	case "learned":
		*s = SourceLearned
	default:
		return fmt.Errorf("unknown schema source %q", string(data))
	}
	return nil
}

// ValueKind identifies what kind of value a flag or argument accepts.
type ValueKind int

const (
	ValueAny ValueKind = iota
	ValueBool
	ValueString
	ValueNumber
	ValueFile
	ValueDirectory
	ValueURL
	ValueBranch
	ValueRemote
	ValueChoice
)

func (k ValueKind) String() string {
	switch k {
	case ValueBool:
		return "bool"
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueFile:
		return "file"
	case ValueDirectory:
		return "directory"
	case ValueURL:
		return "url"
	case ValueBranch:
		return "branch"
	case ValueRemote:
		return "remote"
	case ValueChoice:
		return "choice"
	default:
		return "any"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ValueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ValueKind) UnmarshalText(data []byte) error {
	switch string(data) {
	case "any":
		*k = ValueAny
	case "bool":
		*k = ValueBool
	case "string":
		*k = ValueString
	case "number":
		*k = ValueNumber
	case "file":
		*k = ValueFile
	case "directory":
		*k = ValueDirectory
	case "url":
		*k = ValueURL
	case "branch":
		*k = ValueBranch
	case "remote":
		*k = ValueRemote
	case "choice":
		*k = ValueChoice
	default:
		return fmt.Errorf("unknown value kind %q", string(data))
	}
	return nil
}

// ValueType pairs a value kind with the allowed choice list for ValueChoice.
type ValueType struct {
	Kind    ValueKind `json:"kind" yaml:"kind"`
	Choices []string  `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Choice builds a choice-constrained value type.
func Choice(choices []string) ValueType {
	return ValueType{Kind: ValueChoice, Choices: choices}
}

// FlagSchema describes a flag with an optional short form (-v) and/or long
// form (--verbose). Absent forms are empty strings.
type FlagSchema struct {
	Short         string    `json:"short,omitempty" yaml:"short,omitempty"`
	Long          string    `json:"long,omitempty" yaml:"long,omitempty"`
	ValueType     ValueType `json:"value_type" yaml:"value_type"`
	TakesValue    bool      `json:"takes_value" yaml:"takes_value"`
	Description   string    `json:"description,omitempty" yaml:"description,omitempty"`
	Multiple      bool      `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	ConflictsWith []string  `json:"conflicts_with,omitempty" yaml:"conflicts_with,omitempty"`
	Requires      []string  `json:"requires,omitempty" yaml:"requires,omitempty"`
}

// BooleanFlag creates a flag that takes no value.
func BooleanFlag(short, long string) FlagSchema {
	return FlagSchema{Short: short, Long: long, ValueType: ValueType{Kind: ValueBool}}
}

// ValueFlag creates a flag that takes a value of the given type.
func ValueFlag(short, long string, vt ValueType) FlagSchema {
	return FlagSchema{Short: short, Long: long, ValueType: vt, TakesValue: true}
}

// CanonicalName returns the long form when present, falling back to short.
func (f *FlagSchema) CanonicalName() string {
	if f.Long != "" {
		return f.Long
	}
	if f.Short != "" {
		return f.Short
	}
	return "unknown"
}

// Matches reports whether s equals this flag's short or long form.
func (f *FlagSchema) Matches(s string) bool {
	return (f.Short != "" && f.Short == s) || (f.Long != "" && f.Long == s)
}

// ArgSchema describes a positional argument.
type ArgSchema struct {
	Name        string    `json:"name" yaml:"name"`
	ValueType   ValueType `json:"value_type" yaml:"value_type"`
	Required    bool      `json:"required" yaml:"required"`
	Multiple    bool      `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// RequiredArg creates a required positional argument.
func RequiredArg(name string, vt ValueType) ArgSchema {
	return ArgSchema{Name: name, ValueType: vt, Required: true}
}

// OptionalArg creates an optional positional argument.
func OptionalArg(name string, vt ValueType) ArgSchema {
	return ArgSchema{Name: name, ValueType: vt}
}

// SubcommandSchema is a recursive tree node; every subcommand is owned exactly
// once by its parent.
type SubcommandSchema struct {
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Flags       []FlagSchema       `json:"flags,omitempty" yaml:"flags,omitempty"`
	Positional  []ArgSchema        `json:"positional,omitempty" yaml:"positional,omitempty"`
	Subcommands []SubcommandSchema `json:"subcommands,omitempty" yaml:"subcommands,omitempty"`
	Aliases     []string           `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// NewSubcommand creates an empty subcommand schema with the given name.
func NewSubcommand(name string) SubcommandSchema {
	return SubcommandSchema{Name: name}
}

// CommandSchema is the finalized structured description of one command.
type CommandSchema struct {
	SchemaVersion string             `json:"schema_version,omitempty" yaml:"schema_version,omitempty"`
	Command       string             `json:"command" yaml:"command"`
	Description   string             `json:"description,omitempty" yaml:"description,omitempty"`
	GlobalFlags   []FlagSchema       `json:"global_flags,omitempty" yaml:"global_flags,omitempty"`
	Subcommands   []SubcommandSchema `json:"subcommands,omitempty" yaml:"subcommands,omitempty"`
	Positional    []ArgSchema        `json:"positional,omitempty" yaml:"positional,omitempty"`
	Source        Source             `json:"source" yaml:"source"`
	Confidence    float64            `json:"confidence" yaml:"confidence"`
	Version       string             `json:"version,omitempty" yaml:"version,omitempty"`
}

// New creates a command schema with maximum confidence.
func New(command string, source Source) *CommandSchema {
	return &CommandSchema{Command: command, Source: source, Confidence: 1.0}
}

// FindSubcommand returns the subcommand with the given name or alias, or nil.
func (c *CommandSchema) FindSubcommand(name string) *SubcommandSchema {
	for i := range c.Subcommands {
		sub := &c.Subcommands[i]
		if sub.Name == name {
			return sub
		}
		for _, alias := range sub.Aliases {
			if alias == name {
				return sub
			}
		}
	}
	return nil
}

// SubcommandNames returns the names of all top-level subcommands.
func (c *CommandSchema) SubcommandNames() []string {
	names := make([]string, 0, len(c.Subcommands))
	for _, sub := range c.Subcommands {
		names = append(names, sub.Name)
	}
	return names
}

// FlagsForSubcommand returns global flags followed by the named subcommand's
// own flags.
func (c *CommandSchema) FlagsForSubcommand(name string) []FlagSchema {
	flags := make([]FlagSchema, 0, len(c.GlobalFlags))
	flags = append(flags, c.GlobalFlags...)
	if sub := c.FindSubcommand(name); sub != nil {
		flags = append(flags, sub.Flags...)
	}
	return flags
}

// HelpFormat is a named convention for structuring --help output. Declaration
// order doubles as the classifier tie-break order.
type HelpFormat int

const (
	FormatClap HelpFormat = iota
	FormatCobra
	FormatGnu
	FormatArgparse
	FormatDocopt
	FormatBsd
	FormatMan
	FormatUnknown
)

func (f HelpFormat) String() string {
	switch f {
	case FormatClap:
		return "clap"
	case FormatCobra:
		return "cobra"
	case FormatGnu:
		return "gnu"
	case FormatArgparse:
		return "argparse"
	case FormatDocopt:
		return "docopt"
	case FormatBsd:
		return "bsd"
	case FormatMan:
		return "man"
	default:
		return "unknown"
	}
}

// MarshalText encodes the format as its lowercase label.
func (f HelpFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText decodes a lowercase format label.
func (f *HelpFormat) UnmarshalText(data []byte) error {
	*f = ParseHelpFormat(string(data))
	return nil
}

// ParseHelpFormat maps a format label back to its HelpFormat.
func ParseHelpFormat(label string) HelpFormat {
	switch strings.ToLower(label) {
	case "clap":
		return FormatClap
	case "cobra":
		return FormatCobra
	case "gnu":
		return FormatGnu
	case "argparse":
		return FormatArgparse
	case "docopt":
		return FormatDocopt
	case "bsd":
		return FormatBsd
	case "man":
		return FormatMan
	default:
		return FormatUnknown
	}
}
