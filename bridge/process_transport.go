package bridge

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// ProcessTransport runs a peer hive as a subprocess and frames envelopes as
// newline-delimited JSON over its stdin/stdout, the Go-native equivalent of
// xudd's multiprocess bridge (a pipe pair feeding a forked worker). The
// subprocess is expected to have been built from the same xudd module and
// invoked with the "bridge-peer" subcommand.
type ProcessTransport struct {
	cmd *exec.Cmd
	*newlineFramer
}

// NewProcessTransport starts path (with args) as a subprocess and returns a
// Transport framed over its stdin/stdout. The subprocess's stderr is left
// connected to this process's, so peer-side log output is visible directly.
func NewProcessTransport(
	ctx context.Context, path string, args ...string) (*ProcessTransport, error) {

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("bridge: stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("bridge: stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("bridge: start peer process: %w", err)
	}

	pt := &ProcessTransport{
		cmd:           cmd,
		newlineFramer: newNewlineFramer(stdout, stdin, stdin),
	}

	return pt, nil
}

// Close closes the subprocess's stdin, then waits for it to exit.
func (p *ProcessTransport) Close() error {
	err := p.newlineFramer.Close()
	_ = p.cmd.Wait()
	return err
}

// StdioTransport frames envelopes as newline-delimited JSON over this
// process's own stdin/stdout, the counterpart a subprocess launched via
// ProcessTransport (and the "bridge-peer" CLI subcommand) runs on its end.
type StdioTransport struct {
	*newlineFramer
}

// NewStdioTransport wraps os.Stdin/os.Stdout in a Transport. Closing it
// leaves os.Stdout open (see stdoutCloser) and leaves the process's exit
// code to the caller.
func NewStdioTransport() *StdioTransport {
	return &StdioTransport{
		newlineFramer: newNewlineFramer(os.Stdin, os.Stdout, stdoutCloser{}),
	}
}

// stdoutCloser satisfies io.Closer for os.Stdout without actually closing
// the file descriptor, since doing so would break any other writer (e.g.
// the logger) sharing it for the remainder of the process's life.
type stdoutCloser struct{}

func (stdoutCloser) Close() error { return nil }

var _ io.Closer = stdoutCloser{}
