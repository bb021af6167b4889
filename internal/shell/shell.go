// Package shell runs platform commands and captures their output with the
// hard caps gateway middleware expects: at most 512 bytes of output per
// command and at most 120 bytes per parsed line. Output beyond the cap is
// dropped, not an error.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/veesix-networks/vlanhal/pkg/logger"
)

const (
	// MaxOutputBytes bounds the combined output captured from one command.
	MaxOutputBytes = 512

	// MaxLineBytes bounds a single line handed to parsers.
	MaxLineBytes = 120
)

// Output runs command through "sh -c" and returns its combined output,
// truncated to MaxOutputBytes and with the trailing newline removed.
// A non-zero exit is an error carrying whatever output was captured.
func Output(ctx context.Context, command string) (string, error) {
	log := logger.Get(logger.Shell)
	log.Debug("Running command", "command", command)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	raw, err := cmd.CombinedOutput()
	out := truncate(string(raw), MaxOutputBytes)
	out = strings.TrimRight(out, "\n")
	if err != nil {
		return out, fmt.Errorf("command %q failed: %w\nOutput: %s", command, err, out)
	}
	log.Debug("Command completed", "command", command, "bytes", len(out))
	return out, nil
}

// OutputLines runs command and returns its output split into lines, each
// truncated to MaxLineBytes. The MaxOutputBytes cap applies to the whole
// capture before splitting.
func OutputLines(ctx context.Context, command string) ([]string, error) {
	out, err := Output(ctx, command)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// ReadOutput drains r up to MaxOutputBytes, for callers that already hold an
// open pipe to a running command.
func ReadOutput(r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxOutputBytes))
	if err != nil {
		return "", fmt.Errorf("read command output: %w", err)
	}
	return strings.TrimRight(string(raw), "\n"), nil
}

// ReadLines drains r up to MaxOutputBytes and returns capped lines.
func ReadLines(r io.Reader) ([]string, error) {
	out, err := ReadOutput(r)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

func splitLines(out string) []string {
	if out == "" {
		return nil
	}
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		lines = append(lines, truncate(sc.Text(), MaxLineBytes))
	}
	return lines
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
