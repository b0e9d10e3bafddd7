package mcp

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// process tracks a spawned server subprocess and its captured stderr.
type process struct {
	cmd    *exec.Cmd
	stderr *os.File

	waitOnce sync.Once
	waitCh   chan error

	cleanOnce sync.Once
}

func newProcess(cmd *exec.Cmd, stderr *os.File) *process {
	return &process{cmd: cmd, stderr: stderr}
}

// wait starts reaping the subprocess exactly once and returns the
// channel that yields its exit error.
func (p *process) wait() <-chan error {
	p.waitOnce.Do(func() {
		p.waitCh = make(chan error, 1)
		go func() {
			p.waitCh <- p.cmd.Wait()
		}()
	})

	return p.waitCh
}

// shutdown waits up to grace for the subprocess to exit on its own
// (its stdin is already closed by then), then kills it and waits
// again. The stderr capture file is removed afterward.
func (p *process) shutdown(grace time.Duration) error {
	waitCh := p.wait()

	select {
	case <-waitCh:
	case <-time.After(grace):
		_ = p.cmd.Process.Kill()
		select {
		case <-waitCh:
		case <-time.After(grace):
		}
	}

	p.cleanOnce.Do(func() {
		_ = p.stderr.Close()
		_ = os.Remove(p.stderr.Name())
	})

	return nil
}

// stderrTail returns the last n lines of the captured stderr stream.
func (p *process) stderrTail(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("mcp: line count must be positive, got %d", n)
	}

	data, err := os.ReadFile(p.stderr.Name())
	if err != nil {
		return "", fmt.Errorf("mcp: read stderr capture: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return strings.Join(lines, "\n"), nil
}
