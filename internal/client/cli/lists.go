package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dmitrijs2005/quotekeeper/internal/client/gate"
	"github.com/dmitrijs2005/quotekeeper/internal/client/models"
	"github.com/dmitrijs2005/quotekeeper/internal/client/services"
)

func (a *App) Daily(ctx context.Context) error {
	q, err := a.core.DailyQuote.Refresh(ctx)
	if err != nil {
		cached, ok := a.core.DailyQuote.Current()
		if !ok {
			return err
		}
		a.log.Warn(ctx, "showing cached daily quote", "error", err)
		q = cached
	}
	fmt.Fprintf(a.out, "%q\n  - %s\n", q.Quote, q.Attribution())
	return nil
}

func printEntries[R models.Record](w io.Writer, store *services.Store[R], render func(R) string) {
	if store.State() == services.StoreLoading {
		fmt.Fprintln(w, "Loading...")
	}
	entries := store.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}
	for n, e := range entries {
		line := fmt.Sprintf("%d. %s", n+1, render(e.Record))
		if e.Pending {
			line += " (saving)"
		}
		fmt.Fprintln(w, line)
	}
}

// removeEntry removes by 1-based list position, or by server id when ref is
// not a valid position.
func removeEntry[R models.Record](ctx context.Context, store *services.Store[R], ref string) error {
	if n, err := strconv.Atoi(ref); err == nil {
		entries := store.Entries()
		if n >= 1 && n <= len(entries) {
			return store.Remove(ctx, entries[n-1].Key)
		}
	}
	return store.RemoveByID(ctx, ref)
}

func renderQuote(q models.Quote) string {
	if q.CreatedAt.IsZero() {
		return q.Text
	}
	return fmt.Sprintf("%s  [%s]", q.Text, q.CreatedAt.Format(time.DateOnly))
}

func renderInterest(i models.Interest) string {
	if i.Category == "" {
		return i.Name
	}
	return fmt.Sprintf("%s (%s)", i.Name, i.Category)
}

func (a *App) Quotes(ctx context.Context) error {
	if err := a.guard(gate.RouteQuotes); err != nil {
		return err
	}
	printEntries(a.out, a.core.Quotes, renderQuote)
	return nil
}

func (a *App) AddQuote(ctx context.Context, text string) error {
	if err := a.guard(gate.RouteQuotes); err != nil {
		return err
	}
	q, err := a.core.Quotes.Add(ctx, models.Quote{Text: text})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved quote %s\n", q.ID)
	return nil
}

func (a *App) RemoveQuote(ctx context.Context, ref string) error {
	if err := a.guard(gate.RouteQuotes); err != nil {
		return err
	}
	if err := removeEntry(ctx, a.core.Quotes, ref); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Removed")
	return nil
}

func (a *App) Interests(ctx context.Context) error {
	if err := a.guard(gate.RouteInterests); err != nil {
		return err
	}
	printEntries(a.out, a.core.Interests, renderInterest)
	return nil
}

func (a *App) AddInterest(ctx context.Context, name string) error {
	if err := a.guard(gate.RouteInterests); err != nil {
		return err
	}
	i, err := a.core.Interests.Add(ctx, models.Interest{Name: name})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved interest %s\n", i.ID)
	return nil
}

func (a *App) RemoveInterest(ctx context.Context, ref string) error {
	if err := a.guard(gate.RouteInterests); err != nil {
		return err
	}
	if err := removeEntry(ctx, a.core.Interests, ref); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Removed")
	return nil
}

// Options shows the predefined interest tags with their selection state.
func (a *App) Options(ctx context.Context) error {
	if err := a.guard(gate.RouteAccount); err != nil {
		return err
	}
	sel := a.core.Selection
	selected := map[string]bool{}
	for _, t := range sel.Selected() {
		selected[t] = true
	}
	for _, o := range sel.Options() {
		mark := " "
		if selected[o] {
			mark = "x"
		}
		fmt.Fprintf(a.out, "[%s] %s\n", mark, o)
	}
	if sel.Dirty() {
		fmt.Fprintln(a.out, "(unsaved changes, type 'save')")
	}
	return nil
}

func (a *App) Toggle(ctx context.Context, tag string) error {
	if err := a.guard(gate.RouteAccount); err != nil {
		return err
	}
	on, err := a.core.Selection.Toggle(tag)
	if err != nil {
		return err
	}
	state := "off"
	if on {
		state = "on"
	}
	fmt.Fprintf(a.out, "%s: %s\n", tag, state)
	return nil
}

func (a *App) Save(ctx context.Context) error {
	if err := a.guard(gate.RouteAccount); err != nil {
		return err
	}
	if err := a.core.Selection.Save(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved")
	return nil
}
