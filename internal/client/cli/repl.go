package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Where(ctx context.Context) error
	Back(ctx context.Context) error

	ListUsers(ctx context.Context) error
	AddUser(ctx context.Context) error
	EditUser(ctx context.Context, login string) error
	RemoveUser(ctx context.Context, login string) error

	ListPersons(ctx context.Context) error
	AddPerson(ctx context.Context) error
	RetryPerson(ctx context.Context) error
	CancelPerson(ctx context.Context) error
	EditPerson(ctx context.Context, id string) error
	RemovePerson(ctx context.Context, id string) error
	SavePhoto(ctx context.Context, photoID, file string) error

	ListEvents(ctx context.Context) error
	SetFrom(ctx context.Context, arg string) error
	SetTo(ctx context.Context, arg string) error
	SetPassage(ctx context.Context, arg string) error
	SetName(ctx context.Context, arg string) error
	SetPage(ctx context.Context, arg string) error
	NextPage(ctx context.Context) error
	PrevPage(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, whoami, where, back, exit"
	helpLoggedIn  = `Available commands:
  users | user-add | user-edit <login> | user-rm <login>
  persons | person-add | person-edit <id> | person-rm <id> | person-retry | person-cancel
  photo <photo-id> <file>
  events | from <time|-> | to <time|-> | passage <id|-> | name <text|-> | page <n> | next | prev
  whoami | where | back | logout | exit`
)

// runREPL starts a simple read–eval–print loop for the console.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. The loop exits on EOF or when the user
// types "exit" or "quit". The prompt shows the status from statusFn.
//
// Commands taking free text (from, to, name) receive the rest of the line,
// so timestamps may contain spaces. Errors returned by command handlers are
// ignored here; handlers report their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("skud %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		line = strings.TrimSpace(line)
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]
		// Interior spacing is kept: names are matched as substrings.
		rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)
		case "where":
			_ = a.Where(ctx)
		case "back":
			_ = a.Back(ctx)

		case "users":
			_ = a.ListUsers(ctx)
		case "user-add":
			_ = a.AddUser(ctx)
		case "user-edit":
			if len(args) != 1 {
				printlnFn("Usage: user-edit <login>")
				continue
			}
			_ = a.EditUser(ctx, args[0])
		case "user-rm":
			if len(args) != 1 {
				printlnFn("Usage: user-rm <login>")
				continue
			}
			_ = a.RemoveUser(ctx, args[0])

		case "persons":
			_ = a.ListPersons(ctx)
		case "person-add":
			_ = a.AddPerson(ctx)
		case "person-retry":
			_ = a.RetryPerson(ctx)
		case "person-cancel":
			_ = a.CancelPerson(ctx)
		case "person-edit":
			if len(args) != 1 {
				printlnFn("Usage: person-edit <id>")
				continue
			}
			_ = a.EditPerson(ctx, args[0])
		case "person-rm":
			if len(args) != 1 {
				printlnFn("Usage: person-rm <id>")
				continue
			}
			_ = a.RemovePerson(ctx, args[0])
		case "photo":
			if len(args) != 2 {
				printlnFn("Usage: photo <photo-id> <file>")
				continue
			}
			_ = a.SavePhoto(ctx, args[0], args[1])

		case "events":
			_ = a.ListEvents(ctx)
		case "from", "to", "passage", "name":
			if rest == "" {
				printlnFn(fmt.Sprintf("Usage: %s <value|->", cmd))
				continue
			}
			switch cmd {
			case "from":
				_ = a.SetFrom(ctx, rest)
			case "to":
				_ = a.SetTo(ctx, rest)
			case "passage":
				_ = a.SetPassage(ctx, rest)
			case "name":
				_ = a.SetName(ctx, rest)
			}
		case "page":
			if len(args) != 1 {
				printlnFn("Usage: page <n>")
				continue
			}
			_ = a.SetPage(ctx, args[0])
		case "next":
			_ = a.NextPage(ctx)
		case "prev":
			_ = a.PrevPage(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
