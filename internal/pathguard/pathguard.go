// Package pathguard implements the path classifier (C2): given a
// filesystem path and a workspace root, decide whether a read,
// write, or directory listing may proceed. All three operations
// share sensitive-file detection and symlink-escape resolution;
// CheckWrite additionally enforces workspace containment, and
// CheckRead and CheckList additionally enforce the blocked-directory
// set.
package pathguard

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sentrybot/guard/pkg/models"
)

// sensitiveBaseNames is the case-insensitive allowlist of exact base
// names that are always sensitive, regardless of directory.
var sensitiveBaseNames = map[string]bool{
	".env":              true,
	".npmrc":            true,
	".netrc":            true,
	"credentials.json":  true,
	"id_rsa":            true,
	"id_ed25519":        true,
	"id_ecdsa":          true,
	"id_dsa":            true,
}

// sensitivePatterns catches env-file variants, service-account files,
// and private-key suffixes not covered by the exact allowlist above.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\.env\..+$`),
	regexp.MustCompile(`(?i)service[-_]?account.*\.json$`),
	regexp.MustCompile(`(?i)\.(pem|key)$`),
	regexp.MustCompile(`(?i)^id_[a-z0-9]+$`),
	regexp.MustCompile(`(?i)secret`),
	regexp.MustCompile(`(?i)credential`),
}

// blockedDirs is the exact set of absolute directories CheckRead and
// CheckList refuse, beyond the ".ssh" segment rule.
var blockedDirs = []string{
	"/etc", "/root", "/proc", "/sys", "/dev", "/boot", "/var/log", "/var/run",
}

// symlinkSensitivePrefixes are the roots a raw symlink's resolved
// target must not point into.
var symlinkSensitivePrefixes = []string{
	"/etc", "/root", "/home", "/proc", "/sys", "/dev", "/var",
}

// Guard evaluates read/write/list requests against a fixed set of
// rules. It holds no mutable state and is safe for concurrent use.
type Guard struct{}

func New() *Guard { return &Guard{} }

func hasSSHSegment(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == ".ssh" {
			return true
		}
	}
	return false
}

func isSensitiveFile(path string) bool {
	if hasSSHSegment(path) {
		return true
	}
	slashPath := filepath.ToSlash(path)
	if strings.Contains(slashPath, "/run/secrets/") || strings.HasSuffix(slashPath, "/run/secrets") {
		return true
	}
	base := filepath.Base(path)
	if sensitiveBaseNames[strings.ToLower(base)] {
		return true
	}
	for _, re := range sensitivePatterns {
		if re.MatchString(base) {
			return true
		}
	}
	return false
}

// canonicalize resolves path to its canonical, symlink-free absolute
// form. If the path (or some suffix of it) does not yet exist,
// EvalSymlinks is retried against each existing ancestor in turn so
// that not-yet-created paths still canonicalize — creation is
// permitted per spec.md §4.2.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}
	dir := filepath.Dir(abs)
	base := filepath.Base(abs)
	for {
		resolvedDir, derr := filepath.EvalSymlinks(dir)
		if derr == nil {
			return filepath.Join(resolvedDir, base), nil
		}
		if !os.IsNotExist(derr) {
			return "", derr
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// reached filesystem root without finding an existing
			// ancestor; nothing exists yet, treat path as its own
			// cleaned absolute form.
			return abs, nil
		}
		base = filepath.Join(filepath.Base(dir), base)
		dir = parent
	}
}

func isWithin(canonicalPath, canonicalRoot string) bool {
	if canonicalPath == canonicalRoot {
		return true
	}
	return strings.HasPrefix(canonicalPath, canonicalRoot+string(filepath.Separator))
}

// symlinkEscape checks the two symlink rules from spec.md §4.2 and
// returns a Blocked decision if either fires, else ok=false.
func symlinkEscape(rawPath, canonicalPath, canonicalWorkspace string) (models.PathDecision, bool) {
	if !isWithin(canonicalPath, canonicalWorkspace) {
		return models.PathBlockedDecision(fmt.Sprintf("Symlink points outside workspace (%s)", canonicalPath)), true
	}

	abs, err := filepath.Abs(rawPath)
	if err != nil {
		return models.PathDecision{}, false
	}
	info, err := os.Lstat(abs)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return models.PathDecision{}, false
	}
	target, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return models.PathDecision{}, false
	}
	for _, prefix := range symlinkSensitivePrefixes {
		if target == prefix || strings.HasPrefix(target, prefix+string(filepath.Separator)) {
			return models.PathBlockedDecision(fmt.Sprintf("Symlink points to sensitive location (%s)", prefix)), true
		}
	}
	return models.PathDecision{}, false
}

func isBlockedDir(canonicalPath string) (string, bool) {
	if hasSSHSegment(canonicalPath) {
		return ".ssh", true
	}
	for _, d := range blockedDirs {
		if canonicalPath == d || strings.HasPrefix(canonicalPath, d+string(filepath.Separator)) {
			return d, true
		}
	}
	return "", false
}

// CheckRead decides whether path may be read under workspace.
func (g *Guard) CheckRead(path, workspace string) models.PathDecision {
	if isSensitiveFile(path) {
		return models.PathBlockedDecision("Sensitive file")
	}
	canonPath, canonWS, err := canonicalizePair(path, workspace)
	if err != nil {
		return models.PathBlockedDecision("Unable to resolve path")
	}
	if decision, blocked := symlinkEscape(path, canonPath, canonWS); blocked {
		return decision
	}
	if dir, blocked := isBlockedDir(canonPath); blocked {
		return models.PathBlockedDecision(fmt.Sprintf("Blocked directory (%s)", dir))
	}
	return models.PathAllowDecision()
}

// CheckWrite decides whether path may be written under workspace.
func (g *Guard) CheckWrite(path, workspace string) models.PathDecision {
	if isSensitiveFile(path) {
		return models.PathBlockedDecision("Sensitive file")
	}
	canonPath, canonWS, err := canonicalizePair(path, workspace)
	if err != nil {
		return models.PathBlockedDecision("Unable to resolve path")
	}
	if decision, blocked := symlinkEscape(path, canonPath, canonWS); blocked {
		return decision
	}
	if !isWithin(canonPath, canonWS) {
		return models.PathBlockedDecision(fmt.Sprintf("Write outside workspace (%s)", canonPath))
	}
	return models.PathAllowDecision()
}

// CheckList decides whether path may be enumerated as a directory
// under workspace.
func (g *Guard) CheckList(path, workspace string) models.PathDecision {
	canonPath, canonWS, err := canonicalizePair(path, workspace)
	if err != nil {
		return models.PathBlockedDecision("Unable to resolve path")
	}
	if dir, blocked := isBlockedDir(canonPath); blocked {
		return models.PathBlockedDecision(fmt.Sprintf("Blocked directory (%s)", dir))
	}
	if decision, blocked := symlinkEscape(path, canonPath, canonWS); blocked {
		return decision
	}
	if isSensitiveFile(path) {
		return models.PathBlockedDecision("Sensitive file")
	}
	return models.PathAllowDecision()
}

func canonicalizePair(path, workspace string) (canonPath, canonWS string, err error) {
	canonWS, err = canonicalize(workspace)
	if err != nil {
		return "", "", fmt.Errorf("canonicalize workspace: %w", err)
	}
	canonPath, err = canonicalize(path)
	if err != nil {
		return "", "", fmt.Errorf("canonicalize path: %w", err)
	}
	return canonPath, canonWS, nil
}
