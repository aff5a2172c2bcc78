package pathguard

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScenariosFromSpec(t *testing.T) {
	g := New()
	workspace := "/workspace/42"

	t.Run("in-workspace file allowed for all ops", func(t *testing.T) {
		path := "/workspace/42/foo.txt"
		if d := g.CheckRead(path, workspace); !d.IsAllow() {
			t.Fatalf("CheckRead = %+v, want Allow", d)
		}
		if d := g.CheckWrite(path, workspace); !d.IsAllow() {
			t.Fatalf("CheckWrite = %+v, want Allow", d)
		}
		if d := g.CheckList(path, workspace); !d.IsAllow() {
			t.Fatalf("CheckList = %+v, want Allow", d)
		}
	})

	t.Run("dot-dot escape blocked", func(t *testing.T) {
		path := "/workspace/42/../43/x"
		if d := g.CheckRead(path, workspace); !d.IsBlocked() {
			t.Fatalf("CheckRead = %+v, want Blocked", d)
		}
		if d := g.CheckWrite(path, workspace); !d.IsBlocked() {
			t.Fatalf("CheckWrite = %+v, want Blocked", d)
		}
	})

	t.Run("sensitive dotfile blocked", func(t *testing.T) {
		path := "/workspace/42/.env"
		if d := g.CheckRead(path, workspace); !d.IsBlocked() {
			t.Fatalf("CheckRead = %+v, want Blocked", d)
		}
		if d := g.CheckWrite(path, workspace); !d.IsBlocked() {
			t.Fatalf("CheckWrite = %+v, want Blocked", d)
		}
	})

	t.Run("blocked directory via CheckList", func(t *testing.T) {
		if d := g.CheckList("/etc/passwd", workspace); !d.IsBlocked() {
			t.Fatalf("CheckList(/etc/passwd) = %+v, want Blocked", d)
		}
	})
}

func TestSymlinkEscapesWorkspace(t *testing.T) {
	dir := t.TempDir()
	workspace := filepath.Join(dir, "ws")
	outside := filepath.Join(dir, "outside")
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(outside, 0o755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(outside, "secret.txt")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(workspace, "escape")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	g := New()
	if d := g.CheckRead(link, workspace); !d.IsBlocked() {
		t.Fatalf("CheckRead(symlink escaping workspace) = %+v, want Blocked", d)
	}
}

func TestNonexistentPathAllowedForCreation(t *testing.T) {
	dir := t.TempDir()
	g := New()
	path := filepath.Join(dir, "brand-new-file.txt")
	if d := g.CheckWrite(path, dir); !d.IsAllow() {
		t.Fatalf("CheckWrite(new file) = %+v, want Allow", d)
	}
}

func TestSensitiveFileDetection(t *testing.T) {
	sensitive := []string{
		".env",
		"/workspace/123/.env",
		"/run/secrets/api_key",
		"credentials.json",
		"/home/user/.ssh/id_rsa",
		"id_ed25519",
	}
	for _, p := range sensitive {
		if !isSensitiveFile(p) {
			t.Errorf("isSensitiveFile(%q) = false, want true", p)
		}
	}

	normal := []string{
		"test.py",
		"README.md",
		"/workspace/123/script.js",
		"data.csv",
		"config.yaml",
	}
	for _, p := range normal {
		if isSensitiveFile(p) {
			t.Errorf("isSensitiveFile(%q) = true, want false", p)
		}
	}
}
