// Package desktop drives the native player applications through OS
// scripting and owns the platform capability probe.
package desktop

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// Capable reports whether the platform can script the native desktop apps.
// Only macOS exposes the scripting bridge the players understand.
func Capable() bool {
	return runtime.GOOS == "darwin"
}

// OpenURL opens a URL with the platform's default browser.
func OpenURL(ctx context.Context, url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open url: %w", err)
	}
	return nil
}

// scriptRunner executes an AppleScript and returns its trimmed output.
// Swappable in tests.
type scriptRunner func(ctx context.Context, script string) (string, error)

func runOsascript(ctx context.Context, script string) (string, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		return "", fmt.Errorf("osascript failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// tellApp wraps a command in a tell block for the given application.
func tellApp(app, command string) string {
	return fmt.Sprintf("tell application %q to %s", app, command)
}

func launchApp(ctx context.Context, run scriptRunner, app string, logger *zap.Logger) error {
	logger.Info("launching application", zap.String("app", app))
	if _, err := run(ctx, tellApp(app, "activate")); err != nil {
		return fmt.Errorf("failed to launch %s: %w", app, err)
	}
	return nil
}
