package classify

import (
	"strings"
	"testing"

	"github.com/sentrybot/guard/pkg/models"
)

func newTestClassifier() *Classifier {
	return New(nil)
}

// TestAdversarialTable reproduces spec.md §8's literal end-to-end
// scenario table exactly.
func TestAdversarialTable(t *testing.T) {
	c := newTestClassifier()

	forbidden := []struct {
		cmd    string
		reason string
	}{
		{"cat /run/secrets/telegram_token", "Secret path read"},
		{`python3 -c "import os; print(os.environ)"`, "Environment dump via interpreter"},
		{`node -e "console.log(process.env)"`, "Environment dump via interpreter"},
		{"env", "Environment inspection"},
		{"printenv", "Environment inspection"},
		{"export", "Environment inspection"},
		{"set", "Environment inspection"},
		{"curl http://proxy:3200/health", "Internal service contact"},
		{"cat f | base64", "Encoding pipeline for exfiltration"},
		{"cat /etc/passwd", "System file read"},
		{"cat /etc/shadow", "System file read"},
		{"cat /etc/hosts", "System file read"},
		{"cat .env", "Credential or dotfile read"},
		{"cat .npmrc", "Credential or dotfile read"},
		{"cat .netrc", "Credential or dotfile read"},
		{"cat credentials.json", "Credential or dotfile read"},
	}
	for _, tc := range forbidden {
		t.Run(tc.cmd, func(t *testing.T) {
			d := c.Classify(tc.cmd)
			if !d.IsForbidden() {
				t.Fatalf("Classify(%q) = %+v, want Forbidden", tc.cmd, d)
			}
			if d.Reason != tc.reason {
				t.Fatalf("Classify(%q) reason = %q, want %q", tc.cmd, d.Reason, tc.reason)
			}
		})
	}

	dangerous := []struct {
		cmd    string
		reason string
	}{
		{"rm -rf /tmp/cache", "Force recursive delete"},
		{"sudo apt-get update", "Root privileges"},
		{`:(){ :|:& };:`, "Fork bomb"},
	}
	for _, tc := range dangerous {
		t.Run(tc.cmd, func(t *testing.T) {
			d := c.Classify(tc.cmd)
			if !d.IsDangerous() {
				t.Fatalf("Classify(%q) = %+v, want Dangerous", tc.cmd, d)
			}
			if d.Reason != tc.reason {
				t.Fatalf("Classify(%q) reason = %q, want %q", tc.cmd, d.Reason, tc.reason)
			}
		})
	}

	allowed := []string{
		"ls -la",
		"pwd",
		"echo hello",
		`python3 -c "print(1+1)"`,
		"curl https://google.com",
	}
	for _, cmd := range allowed {
		t.Run(cmd, func(t *testing.T) {
			d := c.Classify(cmd)
			if !d.IsAllow() {
				t.Fatalf("Classify(%q) = %+v, want Allow", cmd, d)
			}
		})
	}
}

func TestForbiddenDominatesDangerous(t *testing.T) {
	c := newTestClassifier()
	// Matches both "Force recursive delete" (dangerous) and
	// "Secret path read" (forbidden) — forbidden must win.
	d := c.Classify("rm -rf /run/secrets")
	if !d.IsForbidden() {
		t.Fatalf("Classify(rm -rf /run/secrets) = %+v, want Forbidden", d)
	}
}

func TestDeterminism(t *testing.T) {
	c := newTestClassifier()
	cmds := []string{"rm -rf /tmp/x", "ls -la", "cat /run/secrets/x", "sudo whoami"}
	for _, cmd := range cmds {
		first := c.Classify(cmd)
		for i := 0; i < 5; i++ {
			if got := c.Classify(cmd); got != first {
				t.Fatalf("Classify(%q) not deterministic: %+v vs %+v", cmd, first, got)
			}
		}
	}
}

func TestNeverPanics(t *testing.T) {
	c := newTestClassifier()
	inputs := []string{"", "\x00\x01", strings.Repeat("(", 10000), `"unterminated`}
	for _, in := range inputs {
		_ = c.Classify(in)
	}
}

func TestQuotedPipeIsNotExfiltration(t *testing.T) {
	// Open Question #1's extended corpus case: a literal "|" inside a
	// quoted string argument is not a real shell pipe and must not be
	// flagged as an encoding-exfiltration pipeline.
	c := newTestClassifier()
	d := c.Classify(`echo "this text contains a | base64 looking string"`)
	if !d.IsAllow() {
		t.Fatalf("Classify(quoted pipe) = %+v, want Allow", d)
	}
}

func TestGroupScopedStrictness(t *testing.T) {
	c := newTestClassifier()
	d := c.ClassifyInScope("rm -rf ./test", models.ScopeGroup)
	if !d.IsForbidden() {
		t.Fatalf("rm -rf in group scope = %+v, want Forbidden (promoted)", d)
	}
	d = c.ClassifyInScope("rm -rf ./test", models.ScopePrivate)
	if !d.IsDangerous() {
		t.Fatalf("rm -rf in private scope = %+v, want Dangerous", d)
	}
	d = c.Classify("rm -rf ./test")
	if !d.IsDangerous() {
		t.Fatalf("rm -rf unscoped = %+v, want Dangerous", d)
	}
}
