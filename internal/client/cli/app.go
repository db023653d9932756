package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/quotekeeper/internal/client/app"
	"github.com/dmitrijs2005/quotekeeper/internal/client/auth"
	"github.com/dmitrijs2005/quotekeeper/internal/client/client"
	"github.com/dmitrijs2005/quotekeeper/internal/client/gate"
	"github.com/dmitrijs2005/quotekeeper/internal/client/services"
	"github.com/dmitrijs2005/quotekeeper/internal/logging"
)

var (
	errLoading       = errors.New("session is still loading, try again")
	errNeedLogin     = errors.New("please log in first")
	errAlreadyLogged = errors.New("already logged in, log out first")
)

// App is the interactive front end over an application context.
type App struct {
	core    *app.App
	signIn  auth.PasswordSignIn
	log     logging.Logger
	reader  *bufio.Reader
	scanner *bufio.Scanner
	out     io.Writer
}

// NewApp returns a CLI reading commands from in and writing to out. signIn
// performs password login and sign-up.
func NewApp(core *app.App, signIn auth.PasswordSignIn, in io.Reader, out io.Writer, log logging.Logger) *App {
	if log == nil {
		log = logging.Nop()
	}
	reader := bufio.NewReader(in)
	return &App{
		core:    core,
		signIn:  signIn,
		log:     log,
		reader:  reader,
		scanner: bufio.NewScanner(&lineReader{r: reader}),
		out:     out,
	}
}

// Run starts the application context and the REPL. It returns when the
// user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	if err := a.core.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer a.core.Close()

	fmt.Fprintln(a.out, "quotekeeper (type 'help' for commands)")
	if _, err := a.core.Sessions.WaitReady(ctx); err != nil {
		return err
	}

	runREPL(ctx, a, a.status, a.scanner, a.out)
	return nil
}

func (a *App) status() string {
	st := a.core.Sessions.Current()
	switch {
	case st.Loading:
		return "(loading)"
	case st.SignedIn():
		return fmt.Sprintf("(%s)", st.Session.User.Email)
	default:
		return "(guest)"
	}
}

func (a *App) isLoggedIn() bool {
	return a.core.Sessions.Current().SignedIn()
}

// guard applies the route gate to a command's view.
func (a *App) guard(route string) error {
	d := gate.Decide(a.core.Sessions.Current(), route)
	switch d.Action {
	case gate.Wait:
		return errLoading
	case gate.Redirect:
		if d.Target == gate.RouteAuth {
			return errNeedLogin
		}
		return errAlreadyLogged
	}
	return nil
}

// lineReader feeds the scanner one line per Read, so prompts reading from
// the same bufio.Reader get the lines that follow a command.
type lineReader struct {
	r       *bufio.Reader
	pending []byte
}

func (l *lineReader) Read(p []byte) (int, error) {
	if len(l.pending) == 0 {
		line, err := l.r.ReadBytes('\n')
		if len(line) == 0 {
			return 0, err
		}
		l.pending = line
	}
	n := copy(p, l.pending)
	l.pending = l.pending[n:]
	return n, nil
}

// describe turns an error into a message for the user.
func describe(err error) string {
	var re *client.RemoteError
	switch {
	case errors.Is(err, errLoading), errors.Is(err, errNeedLogin), errors.Is(err, errAlreadyLogged):
		return err.Error()
	case client.IsUnauthenticated(err):
		return "not authenticated, please log in"
	case errors.Is(err, services.ErrDuplicateEntry):
		return "that entry already exists"
	case errors.Is(err, services.ErrNotFound):
		return "no such entry"
	case errors.Is(err, services.ErrUnknownOption):
		return err.Error()
	case errors.As(err, &re):
		return re.Message
	case errors.Is(err, client.ErrTransientFetch):
		return "backend unreachable, try again later"
	}
	return err.Error()
}
