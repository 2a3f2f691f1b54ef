package harness

import (
	"context"
	"os/exec"
)

// Editor opens a file for a person to look at.
type Editor interface {
	Open(ctx context.Context, path string) error
}

// ProcessEditor launches an editor command with the file path appended and does not wait
// for it to finish. The editor outlives the run: cancelling ctx does not stop it. An empty
// command does nothing.
type ProcessEditor struct {
	Command []string
}

func (e ProcessEditor) Open(ctx context.Context, path string) error {
	if len(e.Command) == 0 {
		return nil
	}
	args := append(append([]string(nil), e.Command...), path)
	cmd := exec.CommandContext(context.WithoutCancel(ctx), args[0], args[1:]...) //nolint:gosec
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
