package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	Auth(ctx context.Context) error
	Test(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Create(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Update(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Upvote(ctx context.Context, args []string) error
}

// runREPL reads a line from the scanner, parses the first token as the
// command and dispatches to methods on 'a'. Handler errors are printed and
// the loop continues. It exits on scanner EOF or "exit"/"quit".
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	for {
		printlnFn("zg> ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn("Available commands: auth, test, show <id>, create <url>... [# tags], " +
				"upload <file> [# tags], update <id> <tags>, delete <id>, upvote [remove] <id>, exit")

		case "auth":
			err = a.Auth(ctx)

		case "test":
			err = a.Test(ctx)

		case "show":
			err = a.Show(ctx, args)

		case "create":
			err = a.Create(ctx, args)

		case "upload":
			err = a.Upload(ctx, args)

		case "update":
			err = a.Update(ctx, args)

		case "delete":
			err = a.Delete(ctx, args)

		case "upvote":
			err = a.Upvote(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
