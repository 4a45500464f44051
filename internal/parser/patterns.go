package parser

import "regexp"

// Compiled patterns shared by the extraction passes. Grouped here so the
// whole surface of recognized syntax is visible in one place.
var (
	// -v, -x, -4, -0, -?, -@
	shortFlagRE = regexp.MustCompile(`^\s*(-[a-zA-Z0-9?@])(?:\s|,|\[|\||$)`)
	// -chdir, -log-level, etc (single-dash long options used by some CLIs)
	singleDashWordFlagRE = regexp.MustCompile(`^\s*(-[a-zA-Z][a-zA-Z0-9-]{1,})(?:\s|,|=|<|\[|\||$)`)
	// --verbose, --help
	longFlagRE = regexp.MustCompile(`^\s*(--[a-zA-Z][-a-zA-Z0-9.]*)(?:\s|=|\[|,|\||\)|$)`)
	// -v, --verbose  OR  -v/--verbose
	combinedFlagRE = regexp.MustCompile(`^\s*(-[a-zA-Z0-9?@]{1,3})(?:\s*,\s*|\s*/\s*|\s+)(--[a-zA-Z][-a-zA-Z0-9.]*)`)
	// --flag=VALUE, --flag <value>, --flag [value], -f VALUE.
	// Only match: =VALUE, <VALUE>, [value], or ALLCAPS right after flag
	flagWithValueRE = regexp.MustCompile(`(?:=([A-Za-z_]+)|[<\[]([A-Za-z_]+)[>\]]|(?:--[a-zA-Z][-a-zA-Z0-9.]*|-[a-zA-Z0-9]{1,3})\s+([A-Z][A-Z_]+)(?:\s|$))`)

	// Section headers (case insensitive).
	subcommandsSectionRE = regexp.MustCompile(`(?i)^(commands|all commands|subcommands|available commands|sub-commands)\s*:?\s*$`)
	flagsSectionRE       = regexp.MustCompile(`(?i)^(flags|global flags)\s*:?\s*$`)
	optionsSectionRE     = regexp.MustCompile(`(?i)^(options|optional arguments|opts)\s*:?\s*$`)
	argumentsSectionRE   = regexp.MustCompile(`(?i)^(arguments|positional arguments|args)\s*:?\s*$`)

	// Value indicators: {a,b,c}
	choiceValuesRE = regexp.MustCompile(`\{([^}]+)\}`)

	// Formatting artifacts.
	lineOfDashesRE = regexp.MustCompile(`^-{8,}$`)

	// Version extraction.
	versionNumberRE = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)
	// Generic banner style: "apt 2.8.3 (amd64)"
	bannerVersionRE = regexp.MustCompile(`^\s*[A-Za-z][A-Za-z0-9+._-]*\s+(\d+\.\d+(?:\.\d+)?)\b`)

	// Flag references inside descriptions and choice-table context lines.
	flagRefRE = regexp.MustCompile(`(--[a-zA-Z][-a-zA-Z0-9.]*|-[a-zA-Z0-9?@]{1,3})`)

	// Usage synopsis groups.
	bracketGroupRE   = regexp.MustCompile(`\[([^\]]+)\]`)
	braceGroupRE     = regexp.MustCompile(`\{([^}]+)\}`)
	inlineLongFlagRE = regexp.MustCompile(`(?:^|[\s{\[(|,])(--[a-zA-Z][-a-zA-Z0-9.]*)(?:$|[\s}\])|,])`)
	inlineShortFlagRE = regexp.MustCompile(`(?:^|[\s{\[(|,])(-[a-zA-Z0-9?@](?:\[[^\]\s]+\])?)(?:$|[\s}\])|,])`)

	// Description cleanup.
	dotLeaderPrefixRE         = regexp.MustCompile(`^(?:\.+\s+)+`)
	inlineDoubleDashSentinelRE = regexp.MustCompile(`\s--\s{2,}.*$`)
	multiWhitespaceRE         = regexp.MustCompile(`\s+`)

	// Choice tables.
	validArgumentsForRE    = regexp.MustCompile(`(?i)^valid arguments for\s+((?:--?)[a-zA-Z0-9?@][a-zA-Z0-9?@.-]*)\s*:\s*$`)
	placeholderValuesRE    = regexp.MustCompile(`^([A-Z][A-Z0-9_-]{1,})\s+is one of the following\s*:\s*$`)
	placeholderDeterminesRE = regexp.MustCompile(`^([A-Z][A-Z0-9_-]{1,})\s+determines\b.*:\s*$`)
	genericValuesHeaderRE  = regexp.MustCompile(`(?i)^.*\b(here are the values|possible values|available values)\b.*:?\s*$`)
)
