package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  []string
	err   error
}

func (f *fakeExec) record(name, arg string) error {
	f.calls = append(f.calls, name)
	if arg != "" {
		f.args = append(f.args, arg)
	}
	return f.err
}

func (f *fakeExec) isLoggedIn() bool                    { return f.loggedIn }
func (f *fakeExec) SignUp(ctx context.Context) error    { return f.record("signup", "") }
func (f *fakeExec) WhoAmI(ctx context.Context) error    { return f.record("whoami", "") }
func (f *fakeExec) Daily(ctx context.Context) error     { return f.record("daily", "") }
func (f *fakeExec) Quotes(ctx context.Context) error    { return f.record("quotes", "") }
func (f *fakeExec) Interests(ctx context.Context) error { return f.record("interests", "") }
func (f *fakeExec) Options(ctx context.Context) error   { return f.record("options", "") }
func (f *fakeExec) Save(ctx context.Context) error      { return f.record("save", "") }
func (f *fakeExec) Reload(ctx context.Context) error    { return f.record("reload", "") }
func (f *fakeExec) Toggle(ctx context.Context, t string) error {
	return f.record("toggle", t)
}
func (f *fakeExec) AddQuote(ctx context.Context, text string) error {
	return f.record("addquote", text)
}
func (f *fakeExec) RemoveQuote(ctx context.Context, ref string) error {
	return f.record("rmquote", ref)
}
func (f *fakeExec) AddInterest(ctx context.Context, name string) error {
	return f.record("addinterest", name)
}
func (f *fakeExec) RemoveInterest(ctx context.Context, ref string) error {
	return f.record("rminterest", ref)
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login", "")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout", "")
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"q",
		"addquote  The obstacle is the way. ",
		"rmquote 2",
		"interests",
		"addinterest chess",
		"rminterest abc",
		"options",
		"toggle stoic",
		"save",
		"",
		"reload",
		"daily",
		"whoami",
		"foobar",
		"logout",
		"exit",
		"login",
	}, "\n"))

	var out bytes.Buffer
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(guest)" }, bufio.NewScanner(input), &out)

	assert.Equal(t, []string{
		"login", "quotes", "addquote", "rmquote", "interests", "addinterest", "rminterest",
		"options", "toggle", "save", "reload", "daily", "whoami", "logout",
	}, exec.calls)
	assert.Equal(t, []string{"The obstacle is the way.", "2", "chess", "abc", "stoic"}, exec.args)

	got := out.String()
	assert.Contains(t, got, helpGuest+"\n")
	assert.Contains(t, got, helpSignedIn+"\n")
	assert.Contains(t, got, "Unknown command: foobar\n")
	assert.Contains(t, got, "qk (guest)> ")
	assert.True(t, strings.HasSuffix(got, "Bye!\n"), got)
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	var out bytes.Buffer
	input := strings.NewReader("addquote\nrmquote\naddinterest\nrminterest\ntoggle\nquit\n")
	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input), &out)

	assert.Empty(t, exec.calls)
	for _, usage := range []string{
		"Usage: addquote <text>",
		"Usage: rmquote <n|id>",
		"Usage: addinterest <name>",
		"Usage: rminterest <n|id>",
		"Usage: toggle <tag>",
	} {
		assert.Contains(t, out.String(), usage)
	}
}

func TestRunREPL_ErrorsDoNotStopLoop(t *testing.T) {
	var out bytes.Buffer
	exec := &fakeExec{loggedIn: true, err: errors.New("boom")}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(strings.NewReader("save\nreload\n")), &out)

	assert.Equal(t, []string{"save", "reload"}, exec.calls)
	assert.Contains(t, out.String(), "Error: boom\n")
}
