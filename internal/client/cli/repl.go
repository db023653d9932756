package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App implements
// it; tests use a stub.
type execIface interface {
	isLoggedIn() bool
	SignUp(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Daily(ctx context.Context) error
	Quotes(ctx context.Context) error
	AddQuote(ctx context.Context, text string) error
	RemoveQuote(ctx context.Context, ref string) error
	Interests(ctx context.Context) error
	AddInterest(ctx context.Context, name string) error
	RemoveInterest(ctx context.Context, ref string) error
	Options(ctx context.Context) error
	Toggle(ctx context.Context, tag string) error
	Save(ctx context.Context) error
	Reload(ctx context.Context) error
}

const (
	helpGuest    = "Available commands: login, signup, daily, whoami, exit"
	helpSignedIn = "Available commands: daily, whoami, (q)uotes, addquote <text>, rmquote <n|id>, " +
		"(i)nterests, addinterest <name>, rminterest <n|id>, options, toggle <tag>, save, reload, logout, exit"
)

// runREPL reads commands from scanner until EOF, "exit" or "quit". The first
// word of a line is the command, the rest its argument. Prompts and messages
// go to out.
//
// Command errors are printed and never stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, out io.Writer) {
	say := func(args ...any) { fmt.Fprintln(out, args...) }
	for {
		fmt.Fprintf(out, "qk %s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				say(helpSignedIn)
			} else {
				say(helpGuest)
			}

		case "signup", "register":
			err = a.SignUp(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.WhoAmI(ctx)
		case "daily":
			err = a.Daily(ctx)

		case "q", "quotes":
			err = a.Quotes(ctx)
		case "addquote":
			if arg == "" {
				say("Usage: addquote <text>")
				continue
			}
			err = a.AddQuote(ctx, arg)
		case "rmquote":
			if arg == "" {
				say("Usage: rmquote <n|id>")
				continue
			}
			err = a.RemoveQuote(ctx, arg)

		case "i", "interests":
			err = a.Interests(ctx)
		case "addinterest":
			if arg == "" {
				say("Usage: addinterest <name>")
				continue
			}
			err = a.AddInterest(ctx, arg)
		case "rminterest":
			if arg == "" {
				say("Usage: rminterest <n|id>")
				continue
			}
			err = a.RemoveInterest(ctx, arg)

		case "options":
			err = a.Options(ctx)
		case "toggle":
			if arg == "" {
				say("Usage: toggle <tag>")
				continue
			}
			err = a.Toggle(ctx, arg)
		case "save":
			err = a.Save(ctx)
		case "reload":
			err = a.Reload(ctx)

		case "exit", "quit":
			say("Bye!")
			return

		default:
			say("Unknown command:", cmd)
		}

		if err != nil {
			say("Error:", describe(err))
		}
	}
}
