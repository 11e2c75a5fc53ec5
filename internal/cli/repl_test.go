package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubExec records which commands the REPL dispatched.
type stubExec struct {
	calls []string
	fail  bool
}

func (s *stubExec) record(name string, args []string) error {
	s.calls = append(s.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	if s.fail {
		return fmt.Errorf("boom")
	}
	return nil
}

func (s *stubExec) Auth(ctx context.Context) error { return s.record("auth", nil) }
func (s *stubExec) Test(ctx context.Context) error { return s.record("test", nil) }
func (s *stubExec) Show(ctx context.Context, args []string) error {
	return s.record("show", args)
}
func (s *stubExec) Create(ctx context.Context, args []string) error {
	return s.record("create", args)
}
func (s *stubExec) Upload(ctx context.Context, args []string) error {
	return s.record("upload", args)
}
func (s *stubExec) Update(ctx context.Context, args []string) error {
	return s.record("update", args)
}
func (s *stubExec) Delete(ctx context.Context, args []string) error {
	return s.record("delete", args)
}
func (s *stubExec) Upvote(ctx context.Context, args []string) error {
	return s.record("upvote", args)
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()

	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestREPLDispatch(t *testing.T) {
	out := captureOutput(t)
	stub := &stubExec{}

	input := strings.Join([]string{
		"help",
		"",
		"show 42",
		"create http://x.example/a.png # cat, dog",
		"upvote remove 7",
		"bogus",
		"exit",
	}, "\n")

	runREPL(context.Background(), stub, bufio.NewScanner(strings.NewReader(input)))

	assert.Equal(t, []string{
		"show 42",
		"create http://x.example/a.png # cat, dog",
		"upvote remove 7",
	}, stub.calls)

	joined := strings.Join(*out, "")
	assert.Contains(t, joined, "Available commands:")
	assert.Contains(t, joined, "Unknown command: bogus")
	assert.Contains(t, joined, "Bye!")
}

func TestREPLPrintsHandlerErrors(t *testing.T) {
	out := captureOutput(t)
	stub := &stubExec{fail: true}

	runREPL(context.Background(), stub, bufio.NewScanner(strings.NewReader("test\n")))

	assert.Contains(t, strings.Join(*out, ""), "Error: boom")
}

func TestREPLExitsOnEOF(t *testing.T) {
	captureOutput(t)
	stub := &stubExec{}

	runREPL(context.Background(), stub, bufio.NewScanner(strings.NewReader("")))
	assert.Empty(t, stub.calls)
}
