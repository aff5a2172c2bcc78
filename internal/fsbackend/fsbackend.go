// Package fsbackend defines the hand-off boundary between the guard
// and the external filesystem collaborator that actually performs a
// read, write, or directory listing the path classifier (C2) has
// allowed. Grounded on the same shape as internal/sandboxrunner.Runner:
// the guard decides, a collaborator acts, and a Noop default keeps
// orchestration wiring safe when nothing real has been configured.
package fsbackend

import (
	"context"
	"errors"
)

// ErrNoBackend is returned by NoopBackend's methods.
var ErrNoBackend = errors.New("fsbackend: no filesystem backend configured")

// Backend performs filesystem operations the guard has already
// cleared against the workspace and sensitive-path rules. Nothing in
// this module implements Backend against a real per-user workspace
// volume; callers wire in their own collaborator.
type Backend interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, content []byte) error
	ListDir(ctx context.Context, path string) ([]string, error)
}

// NoopBackend refuses every operation.
type NoopBackend struct{}

func (NoopBackend) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return nil, ErrNoBackend
}

func (NoopBackend) WriteFile(ctx context.Context, path string, content []byte) error {
	return ErrNoBackend
}

func (NoopBackend) ListDir(ctx context.Context, path string) ([]string, error) {
	return nil, ErrNoBackend
}
