package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/quotekeeper/internal/client/gate"
)

// credentials prompts for email and password. The caller wipes the password.
func (a *App) credentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Login signs in with email and password and waits for the user's data to
// load.
func (a *App) Login(ctx context.Context) error {
	if err := a.guard(gate.RouteAuth); err != nil {
		return err
	}

	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer wipe(password)

	s, err := a.signIn.SignInWithPassword(ctx, email, password)
	if err != nil {
		a.log.Info(ctx, "login failed", "email", email, "error", err)
		return err
	}
	a.core.Wait()

	fmt.Fprintf(a.out, "Logged in as %s\n", s.User.Email)
	return nil
}

// SignUp creates an account. Depending on the auth service the user is
// either signed in right away or asked to confirm the email first.
func (a *App) SignUp(ctx context.Context) error {
	if err := a.guard(gate.RouteAuth); err != nil {
		return err
	}

	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer wipe(password)

	s, err := a.signIn.SignUp(ctx, email, password)
	if err != nil {
		return err
	}
	if s == nil {
		fmt.Fprintln(a.out, "Account created. Check your inbox to confirm the email, then log in.")
		return nil
	}
	a.core.Wait()

	fmt.Fprintf(a.out, "Account created, logged in as %s\n", s.User.Email)
	return nil
}

// Logout ends the session. On failure the user stays logged in.
func (a *App) Logout(ctx context.Context) error {
	if err := a.guard(gate.RouteAccount); err != nil {
		return err
	}
	if err := a.core.Sessions.SignOut(ctx); err != nil {
		return err
	}
	a.core.Wait()

	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	st := a.core.Sessions.Current()
	if !st.SignedIn() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	u := st.Session.User
	fmt.Fprintf(a.out, "%s (id %s)\n", u.Email, u.ID)
	if !u.LastSignInAt.IsZero() {
		fmt.Fprintf(a.out, "Last sign-in: %s\n", u.LastSignInAt.Local().Format(time.DateTime))
	}
	if !st.Session.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "Session expires: %s\n", st.Session.ExpiresAt.Local().Format(time.DateTime))
	}
	return nil
}

// Reload refetches everything shown for the signed-in user.
func (a *App) Reload(ctx context.Context) error {
	if err := a.guard(gate.RouteAccount); err != nil {
		return err
	}
	return a.core.Reload(ctx)
}
