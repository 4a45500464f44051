// Package probe runs commands to capture their help output.
//
// A probe tries man pages first, then help flags (--help, -h, -?), and
// conditionally a trailing "help" subcommand when earlier output suggests
// one. Every invocation runs with a timeout, a throwaway working
// directory, and an environment that disables pagers and graphical
// helpers.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ex1tium/cmdschema/internal/report"
)

// DefaultTimeout bounds one help invocation.
const DefaultTimeout = 5 * time.Second

// helpFlags are tried in order.
var helpFlags = []string{"--help", "-h", "-?"}

// Run is the outcome of probing one command.
type Run struct {
	// HelpOutput is the accepted help text, empty when no attempt produced one.
	HelpOutput string
	Attempts   []report.ProbeAttemptReport
}

// Found reports whether any attempt produced accepted help output.
func (r *Run) Found() bool { return r.HelpOutput != "" }

// Prober captures help output from installed commands.
type Prober struct {
	logger  *zap.Logger
	timeout time.Duration
}

// New creates a prober with the default timeout.
func New(logger *zap.Logger) *Prober {
	return NewWithTimeout(logger, DefaultTimeout)
}

// NewWithTimeout creates a prober with an explicit per-attempt timeout.
func NewWithTimeout(logger *zap.Logger, timeout time.Duration) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{logger: logger, timeout: timeout}
}

// Probe captures help output for command, which may contain subcommand
// words ("git remote").
func (p *Prober) Probe(ctx context.Context, command string) Run {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return Run{}
	}

	var run Run
	env := defaultProbeEnv()

	for _, page := range manProbePages(parts) {
		argv := []string{"man", page}
		p.logger.Debug("probing man page", zap.Strings("argv", argv))
		attempt, output, notFound := p.tryProbe(ctx, argv, "man:"+page, env)
		if notFound {
			// man itself is unavailable; other pages cannot fare better.
			break
		}
		run.Attempts = append(run.Attempts, attempt)
		if output != "" {
			run.HelpOutput = output
			return run
		}
	}

	for _, flag := range helpFlags {
		argv := append(append([]string{}, parts...), flag)
		p.logger.Debug("probing help flag", zap.Strings("argv", argv))
		attempt, output, notFound := p.tryProbe(ctx, argv, flag, env)
		if notFound {
			run.Attempts = append(run.Attempts, attempt)
			continue
		}
		run.Attempts = append(run.Attempts, attempt)
		if output != "" {
			run.HelpOutput = output
			return run
		}
	}

	if shouldProbeHelpSubcommand(parts, run.Attempts) {
		var argv []string
		if len(parts) > 1 {
			// "git remote" probes as "git help remote".
			argv = append([]string{parts[0], "help"}, parts[1:]...)
		} else {
			argv = []string{parts[0], "help"}
		}
		p.logger.Debug("probing help subcommand", zap.Strings("argv", argv))
		attempt, output, _ := p.tryProbe(ctx, argv, "help", env)
		run.Attempts = append(run.Attempts, attempt)
		if output != "" {
			run.HelpOutput = output
		}
	}

	return run
}

// tryProbe runs one invocation. The third return value reports that the
// binary itself was not found.
func (p *Prober) tryProbe(ctx context.Context, argv []string, helpFlag string, env []string) (report.ProbeAttemptReport, string, bool) {
	attempt := report.ProbeAttemptReport{
		HelpFlag: helpFlag,
		Argv:     append([]string{}, argv...),
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = nil
	if dir, err := os.MkdirTemp("", "cmdschema-probe-*"); err == nil {
		defer os.RemoveAll(dir)
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if probeCtx.Err() == context.DeadlineExceeded {
		attempt.TimedOut = true
		p.logger.Debug("probe timed out",
			zap.Strings("argv", argv), zap.Duration("timeout", p.timeout))
		return attempt, "", false
	}
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			code := exitErr.ExitCode()
			attempt.ExitCode = &code
		case errors.Is(err, exec.ErrNotFound):
			p.logger.Debug("probe binary not found", zap.Strings("argv", argv))
			return attempt, "", true
		default:
			if errors.Is(err, os.ErrPermission) {
				attempt.RejectionReason = "environment-blocked"
			}
			attempt.Error = fmt.Sprintf("spawn failed: %v", err)
			p.logger.Debug("probe spawn failed",
				zap.Strings("argv", argv), zap.Error(err))
			return attempt, "", false
		}
	} else {
		code := 0
		attempt.ExitCode = &code
	}

	// Help often lands on stderr; take whichever stream said more.
	helpText := stdout.String()
	attempt.OutputSource = "stdout"
	if stderr.Len() > stdout.Len() {
		helpText = stderr.String()
		attempt.OutputSource = "stderr"
	}
	attempt.OutputLen = len(helpText)
	attempt.OutputPreview = outputPreview(helpText)

	if IsHelpOutput(helpText) {
		attempt.Accepted = true
		p.logger.Debug("probe accepted",
			zap.Strings("argv", argv), zap.Int("length", len(helpText)))
		return attempt, helpText, false
	}

	attempt.RejectionReason = classifyRejection(helpText)
	return attempt, "", false
}

// shouldProbeHelpSubcommand decides whether a trailing "help" invocation is
// worth trying. Multi-word commands always qualify; single commands only
// when an earlier attempt hinted at a help subcommand.
func shouldProbeHelpSubcommand(parts []string, attempts []report.ProbeAttemptReport) bool {
	if len(parts) > 1 {
		return true
	}
	base := strings.ToLower(parts[0])
	if base == "" {
		return false
	}
	for _, attempt := range attempts {
		if attempt.Accepted || attempt.OutputPreview == "" {
			continue
		}
		lower := strings.ToLower(attempt.OutputPreview)
		if (strings.Contains(lower, "try") || strings.Contains(lower, "use")) &&
			strings.Contains(lower, " help") && strings.Contains(lower, base) {
			return true
		}
	}
	return false
}

// manProbePages lists candidate man pages, most specific first. For
// "git remote add": git-remote-add, then git-remote.
func manProbePages(parts []string) []string {
	for _, part := range parts {
		if !isPlausibleManToken(part) {
			return nil
		}
	}
	if len(parts) == 1 {
		return []string{parts[0]}
	}
	var pages []string
	for depth := len(parts); depth >= 2; depth-- {
		pages = append(pages, parts[0]+"-"+strings.Join(parts[1:depth], "-"))
	}
	return pages
}

func isPlausibleManToken(token string) bool {
	if token == "" {
		return false
	}
	for _, ch := range token {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			continue
		}
		switch ch {
		case '+', '.', '_', '-':
			continue
		}
		return false
	}
	return true
}

func defaultProbeEnv() []string {
	return []string{
		// Prevent graphical helpers from opening windows during probes.
		"DISPLAY=",
		"WAYLAND_DISPLAY=",
		"BROWSER=true",
		// Keep interactive helpers from switching terminal modes.
		"DEBIAN_FRONTEND=noninteractive",
		"TERM=dumb",
		"NO_COLOR=1",
		// Avoid interactive pagers when commands route help through them.
		"PAGER=cat",
		"MANPAGER=cat",
		"SYSTEMD_PAGER=cat",
		"GIT_PAGER=cat",
	}
}

func outputPreview(text string) string {
	const maxPreviewLen = 160

	var first string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			first = trimmed
			break
		}
	}
	if first == "" {
		return ""
	}
	runes := []rune(first)
	if len(runes) <= maxPreviewLen {
		return first
	}
	return string(runes[:maxPreviewLen]) + "..."
}
