package discovery

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ex1tium/cmdschema/internal/cache"
	"github.com/ex1tium/cmdschema/internal/report"
	"github.com/ex1tium/cmdschema/internal/schema"
)

// DefaultAllowlist is the curated set of commonly installed commands used
// when a batch run opts into allowlist discovery.
var DefaultAllowlist = []string{
	"awk", "bash", "cat", "cd", "chmod", "chown", "cp", "curl", "docker",
	"du", "echo", "env", "find", "git", "grep", "head", "jq", "kill",
	"kubectl", "less", "ln", "ls", "make", "mkdir", "mv", "nano", "npm",
	"pnpm", "ps", "pwd", "rg", "rm", "rmdir", "sed", "ssh", "sudo",
	"systemctl", "tail", "tar", "touch", "vim", "wget", "whoami", "xargs",
	"yarn", "cargo", "rustc", "go", "python", "python3",
}

// BatchConfig controls which commands a batch run discovers and how their
// extractions are gated and cached.
type BatchConfig struct {
	// Explicit command names supplied by the caller.
	Commands []string
	// Include installed commands from DefaultAllowlist.
	UseAllowlist bool
	// Include executables found on PATH.
	ScanPath bool
	// Commands suppressed from every discovery source.
	ExcludedCommands []string
	Policy           report.QualityPolicy
	// Only keep commands that resolve on the system.
	InstalledOnly bool
	// Parallel extraction workers. Zero or negative picks an adaptive
	// default.
	Jobs int
	// Directory for the extraction cache. Empty disables caching.
	CacheDir string
}

// BatchOutcome aggregates one batch discovery run.
type BatchOutcome struct {
	Schemas     []*schema.CommandSchema
	Failures    []string
	Warnings    []string
	Reports     []report.ExtractionReport
	GeneratedAt string
}

// DiscoverTools returns the deterministic, deduplicated command list the
// config selects.
func DiscoverTools(cfg BatchConfig) []string {
	excluded := map[string]bool{}
	for _, cmd := range cfg.ExcludedCommands {
		if cmd != "" {
			excluded[cmd] = true
		}
	}

	set := map[string]bool{}
	for _, cmd := range cfg.Commands {
		trimmed := strings.TrimSpace(cmd)
		if trimmed == "" || excluded[trimmed] {
			continue
		}
		set[trimmed] = true
	}
	if cfg.UseAllowlist {
		for _, cmd := range DefaultAllowlist {
			if !excluded[cmd] && CommandExists(cmd) {
				set[cmd] = true
			}
		}
	}
	if cfg.ScanPath {
		for _, cmd := range pathExecutables() {
			if isScanPathProbeCandidate(cmd) && !excluded[cmd] {
				set[cmd] = true
			}
		}
	}

	commands := make([]string, 0, len(set))
	for cmd := range set {
		if cfg.InstalledOnly && !CommandExists(cmd) {
			continue
		}
		commands = append(commands, cmd)
	}
	sort.Strings(commands)
	return commands
}

// RunBatch discovers commands per the config and extracts their schemas in
// parallel. Results are ordered by command name.
func RunBatch(ctx context.Context, cfg BatchConfig, logger *zap.Logger) BatchOutcome {
	if logger == nil {
		logger = zap.NewNop()
	}
	commands := DiscoverTools(cfg)

	var schemaCache *cache.Cache
	if cfg.CacheDir != "" {
		schemaCache = cache.New(cfg.CacheDir)
	}
	extractor := NewExtractor(logger)

	type indexed struct {
		command string
		run     ExtractionRun
	}
	results := make([]indexed, len(commands))

	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = defaultParallelJobs(len(commands))
	}
	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup
	for i, command := range commands {
		wg.Add(1)
		go func(i int, command string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = indexed{
				command: command,
				run:     extractCached(ctx, extractor, schemaCache, command, cfg.Policy, logger),
			}
		}(i, command)
	}
	wg.Wait()

	outcome := BatchOutcome{GeneratedAt: time.Now().UTC().Format(time.RFC3339)}
	for _, entry := range results {
		run := entry.run
		if run.Report.AcceptedForSuggestions && run.Result.Schema != nil {
			run.Result.Schema.SchemaVersion = schema.ContractVersion
			outcome.Schemas = append(outcome.Schemas, run.Result.Schema)
		} else {
			outcome.Failures = append(outcome.Failures, entry.command)
		}
		for _, warning := range run.Result.Warnings {
			outcome.Warnings = append(outcome.Warnings, entry.command+": "+warning)
		}
		outcome.Reports = append(outcome.Reports, run.Report)
	}
	return outcome
}

// extractCached serves one command from the cache when its fingerprint and
// quick-probed version both still match, re-extracting otherwise.
func extractCached(ctx context.Context, extractor *Extractor, schemaCache *cache.Cache, command string, policy report.QualityPolicy, logger *zap.Logger) ExtractionRun {
	var key cache.Key
	haveKey := false
	if schemaCache != nil {
		built, err := cache.BuildKey(command, policy)
		if err == nil {
			key = built
			haveKey = true
		}
	}

	if haveKey {
		entry, err := schemaCache.Get(key)
		if err != nil {
			logger.Debug("cache lookup failed", zap.String("command", command), zap.Error(err))
		}
		if entry != nil && entry.Report != nil {
			// A binary upgrade can leave mtime and size untouched, so the
			// cached version is re-checked against a quick --version probe.
			current := cache.DetectQuickVersion(ctx, command)
			if entry.DetectedVersion == current {
				return ExtractionRun{
					Result: ExtractionResult{
						Schema:         entry.Schema,
						DetectedFormat: schema.ParseHelpFormat(entry.Report.SelectedFormat),
						Success:        entry.Report.Success,
					},
					Report: *entry.Report,
				}
			}
		}
	}

	run := extractor.ExtractWithReport(ctx, command, policy)

	if haveKey {
		detectedVersion := ""
		if run.Result.Schema != nil {
			detectedVersion = run.Result.Schema.Version
		}
		rep := run.Report
		err := schemaCache.Put(&cache.Entry{
			Key:             key,
			Schema:          run.Result.Schema,
			Report:          &rep,
			DetectedVersion: detectedVersion,
			ProbeMode:       run.Report.SelectedFormat,
		})
		if err != nil {
			logger.Debug("cache store failed", zap.String("command", command), zap.Error(err))
		}
	}
	return run
}

// BuildReportBundle wraps a batch run's reports for serialization.
func BuildReportBundle(version string, reports []report.ExtractionReport, failures []string) report.Bundle {
	return report.Bundle{
		SchemaVersion: schema.ContractVersion,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		Version:       version,
		Reports:       reports,
		Failures:      failures,
	}
}

// FailureCodeSummary counts reports per failure code, ordered by code.
func FailureCodeSummary(reports []report.ExtractionReport) []FailureCount {
	counts := map[report.FailureCode]int{}
	for i := range reports {
		if code := reports[i].FailureCode; code != "" {
			counts[code]++
		}
	}
	out := make([]FailureCount, 0, len(counts))
	for code, count := range counts {
		out = append(out, FailureCount{Code: code, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// FailureCount is one entry of a failure code distribution.
type FailureCount struct {
	Code  report.FailureCode
	Count int
}

// Process-spawn heavy workloads gain little past a handful of workers, and
// very large runs get a tighter cap to keep system load sane.
func defaultParallelJobs(commandCount int) int {
	cpuCount := runtime.NumCPU()
	adaptiveCap := 12
	if commandCount >= 500 {
		adaptiveCap = 8
	}
	jobs := cpuCount
	if jobs > adaptiveCap {
		jobs = adaptiveCap
	}
	if commandCount > 0 && jobs > commandCount {
		jobs = commandCount
	}
	if jobs < 1 {
		jobs = 1
	}
	return jobs
}

func pathExecutables() []string {
	pathEnv := os.Getenv("PATH")
	if pathEnv == "" {
		return nil
	}
	set := map[string]bool{}
	for _, dir := range filepath.SplitList(pathEnv) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil || !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
				continue
			}
			set[entry.Name()] = true
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// isScanPathProbeCandidate filters out GUI launchers and X11 utilities that
// can open windows or hang when probed for help.
func isScanPathProbeCandidate(command string) bool {
	lower := strings.ToLower(command)
	if strings.HasPrefix(lower, "xdg-") {
		return false
	}
	switch lower {
	case "open", "browse", "sensible-browser", "xmessage", "xhost",
		"xsetmode", "xsetpointer", "xkeystone":
		return false
	}
	return true
}
