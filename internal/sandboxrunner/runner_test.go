package sandboxrunner

import (
	"context"
	"errors"
	"testing"
)

func TestNoopRunnerRefuses(t *testing.T) {
	var r Runner = NoopRunner{}
	res, err := r.Run(context.Background(), "ls -la", "/workspace")
	if !errors.Is(err, ErrNoRunner) {
		t.Fatalf("err = %v, want ErrNoRunner", err)
	}
	if res.Succeeded() {
		t.Fatal("zero-value Result reported as succeeded")
	}
}

func TestResultSucceeded(t *testing.T) {
	ok := Result{ExitCode: 0}
	if !ok.Succeeded() {
		t.Error("ExitCode 0, no error, not timed out should succeed")
	}
	failed := Result{ExitCode: 1}
	if failed.Succeeded() {
		t.Error("nonzero ExitCode should not succeed")
	}
	timedOut := Result{TimedOut: true}
	if timedOut.Succeeded() {
		t.Error("TimedOut should not succeed")
	}
	errored := Result{Err: errors.New("boom")}
	if errored.Succeeded() {
		t.Error("non-nil Err should not succeed")
	}
}
