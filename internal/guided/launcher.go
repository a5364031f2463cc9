package guided

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
)

// ErrHelperUnavailable is returned when no helper binary is configured.
var ErrHelperUnavailable = errors.New("guided session helper is not configured")

// Launcher starts the guided-session helper as a detached local process.
// The voice and pose interaction lives entirely in the helper; the server
// only fires it and forgets it.
type Launcher struct {
	helper string
}

// NewLauncher creates a launcher for the given helper binary path. An empty
// path disables launching.
func NewLauncher(helper string) *Launcher {
	return &Launcher{helper: helper}
}

// Start launches the helper for a resolved exercise key and does not wait
// for it.
func (l *Launcher) Start(exerciseKey string) error {
	if l.helper == "" {
		return ErrHelperUnavailable
	}

	cmd := exec.Command(l.helper, "--exercise", exerciseKey)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch guided session: %w", err)
	}
	slog.Info("Guided session launched", "exercise", exerciseKey, "pid", cmd.Process.Pid)

	if err := cmd.Process.Release(); err != nil {
		slog.Warn("Failed to release guided session process", "error", err)
	}
	return nil
}
