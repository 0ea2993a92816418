package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	transcriptExt = ".jsonl"

	// Sub-agent transcripts are side files of a parent session, not
	// independent sessions; listing them would double-count.
	agentFilePrefix = "agent-"
)

// ErrNoSessions is returned when a transcript tree holds no session files.
var ErrNoSessions = errors.New("no session files found")

// GlobalTranscriptsDir returns Claude Code's transcript root
// (~/.claude/projects).
func GlobalTranscriptsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".claude", "projects"), nil
}

// ProfileTranscriptsDir returns the transcript root for a rafctl profile's
// sandboxed tool config.
func ProfileTranscriptsDir(profilesRoot, profileName string) string {
	return filepath.Join(profilesRoot, profileName, "claude", "projects")
}

// ListProjectSessions returns the session transcript files directly inside
// one project directory, newest first. Sub-agent side files are excluded.
// An unreadable directory yields no entries.
func ListProjectSessions(projectDir string) []string {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil
	}

	var sessions []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != transcriptExt {
			continue
		}
		stem := strings.TrimSuffix(name, transcriptExt)
		if strings.HasPrefix(stem, agentFilePrefix) {
			continue
		}
		sessions = append(sessions, filepath.Join(projectDir, name))
	}

	sortByModTime(sessions)
	return sessions
}

// ListAllSessions enumerates the immediate project subdirectories of root
// and collects their session files, newest first across all projects. A
// project directory that cannot be read contributes nothing; the rest of
// the scan continues.
func ListAllSessions(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var all []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		all = append(all, ListProjectSessions(filepath.Join(root, entry.Name()))...)
	}

	sortByModTime(all)
	return all
}

// MostRecentSession returns the newest session file under root.
func MostRecentSession(root string) (string, error) {
	sessions := ListAllSessions(root)
	if len(sessions) == 0 {
		return "", ErrNoSessions
	}
	return sessions[0], nil
}

func sortByModTime(paths []string) {
	mtime := func(p string) time.Time {
		info, err := os.Stat(p)
		if err != nil {
			return time.Time{}
		}
		return info.ModTime()
	}
	sort.SliceStable(paths, func(i, j int) bool {
		return mtime(paths[i]).After(mtime(paths[j]))
	})
}
