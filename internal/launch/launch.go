// Package launch spawns a coding agent inside a profile's isolated config
// directory. Isolation works by pointing the tool's config-dir environment
// variable (CLAUDE_CONFIG_DIR or CODEX_HOME) at the profile directory, so
// credentials, settings, and transcripts never leak between profiles.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/salacoste/rafctl/internal/profile"
)

// Environment variables exported to the launched tool so hooks and status
// lines can tell which profile they run under.
const (
	EnvProfile     = "RAFCTL_PROFILE"
	EnvProfileTool = "RAFCTL_PROFILE_TOOL"
	EnvVersion     = "RAFCTL_VERSION"
	EnvRunID       = "RAFCTL_RUN_ID"
)

// ErrNotAuthenticated is returned when a profile has no stored credentials
// for its tool.
var ErrNotAuthenticated = errors.New("profile not authenticated")

// toolInfo carries the per-tool launch constants.
type toolInfo struct {
	command        string
	configDirEnv   string
	credentialFile string
	installURL     string
}

var tools = map[profile.Tool]toolInfo{
	profile.ToolClaude: {
		command:      "claude",
		configDirEnv: "CLAUDE_CONFIG_DIR",
		// Claude stores auth inside its main config file.
		credentialFile: ".claude.json",
		installURL:     "https://claude.ai/download",
	},
	profile.ToolCodex: {
		command:        "codex",
		configDirEnv:   "CODEX_HOME",
		credentialFile: "auth.json",
		installURL:     "https://github.com/openai/codex",
	},
}

// Command returns the executable name for a tool.
func Command(tool profile.Tool) string {
	return tools[tool].command
}

// ConfigDirEnv returns the environment variable that points the tool at an
// alternate config directory.
func ConfigDirEnv(tool profile.Tool) string {
	return tools[tool].configDirEnv
}

// InstallURL returns where to get the tool.
func InstallURL(tool profile.Tool) string {
	return tools[tool].installURL
}

// CredentialPath returns the file whose presence marks the profile as
// authenticated for its tool.
func CredentialPath(store *profile.Store, name string, tool profile.Tool) string {
	return filepath.Join(store.Dir(name), tools[tool].credentialFile)
}

// CheckAvailable verifies the tool's executable is on PATH.
func CheckAvailable(tool profile.Tool) error {
	info := tools[tool]
	if _, err := exec.LookPath(info.command); err != nil {
		return fmt.Errorf("%s not found on PATH (install from %s)", info.command, info.installURL)
	}
	return nil
}

// IsAuthenticated reports whether the profile has stored credentials.
func IsAuthenticated(store *profile.Store, name string, tool profile.Tool) bool {
	_, err := os.Stat(CredentialPath(store, name, tool))
	return err == nil
}

// Options configures a launch.
type Options struct {
	// Args are passed through to the tool after rafctl's own flags.
	Args []string
	// Version is stamped into EnvVersion for the child process.
	Version string
	// SkipAuthCheck launches even when no credentials are stored, which
	// is how a first interactive login happens for Claude.
	SkipAuthCheck bool
}

// Run launches the profile's tool with inherited stdio and blocks until it
// exits, returning the tool's exit code. The profile directory doubles as
// the tool's config dir.
func Run(ctx context.Context, store *profile.Store, p *profile.Profile, opts Options) (int, error) {
	info := tools[p.Tool]

	if err := CheckAvailable(p.Tool); err != nil {
		return 0, err
	}
	if !opts.SkipAuthCheck && !IsAuthenticated(store, p.Name, p.Tool) {
		return 0, fmt.Errorf("profile %q: %w (run: rafctl auth login %s)", p.Name, ErrNotAuthenticated, p.Name)
	}

	cmd := exec.CommandContext(ctx, info.command, opts.Args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		info.configDirEnv+"="+store.Dir(p.Name),
		EnvProfile+"="+p.Name,
		EnvProfileTool+"="+string(p.Tool),
		EnvVersion+"="+opts.Version,
		EnvRunID+"="+uuid.NewString(),
	)

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("launch %s: %w", info.command, err)
}
