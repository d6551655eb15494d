// Package tui is a terminal front end for the chat controller.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/varsilias/ollama-chat-relay/internal/chat"
	"github.com/varsilias/ollama-chat-relay/pkg/types"
)

type TUI struct {
	app   *tview.Application
	view  *tview.TextView
	input *tview.InputField
	ctrl  *chat.Controller
}

// New builds the widgets. The controller must have been created with
// Refresh registered through chat.WithOnChange so the screen follows it.
func New(title string) *TUI {
	t := &TUI{app: tview.NewApplication()}

	t.view = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true).
		SetScrollable(true)
	t.view.SetTitle(title).SetBorder(true)

	t.input = tview.NewInputField().
		SetLabel("> ").
		SetPlaceholder("Type your message…")
	t.input.SetBorder(true)

	return t
}

// Refresh redraws from the transcript. Safe to call from any goroutine.
func (t *TUI) Refresh() {
	if t.ctrl == nil {
		return
	}
	visible, loading := t.ctrl.Transcript().Snapshot()
	t.app.QueueUpdateDraw(func() {
		t.view.SetText(Format(visible, loading))
		t.view.ScrollToEnd()
		t.input.SetDisabled(loading)
	})
}

// Run blocks until the user quits with Ctrl-C.
func (t *TUI) Run(ctx context.Context, ctrl *chat.Controller) error {
	t.ctrl = ctrl

	t.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		err := ctrl.Send(ctx, t.input.GetText())
		if errors.Is(err, chat.ErrEmptyInput) || errors.Is(err, chat.ErrBusy) {
			return
		}
		t.input.SetText("")
	})

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.view, 0, 1, false).
		AddItem(t.input, 3, 0, true)

	visible, loading := ctrl.Transcript().Snapshot()
	t.view.SetText(Format(visible, loading))

	go func() {
		<-ctx.Done()
		t.app.Stop()
	}()
	return t.app.SetRoot(layout, true).SetFocus(t.input).Run()
}

// Format renders the visible transcript as tview markup.
func Format(visible []types.Message, loading bool) string {
	var b strings.Builder
	for _, m := range visible {
		if m.Role == types.RoleUser {
			b.WriteString("[red::b]You:[-:-:-]\n")
		} else {
			b.WriteString("[green::b]AI:[-:-:-]\n")
		}
		fmt.Fprintf(&b, "%s\n\n", tview.Escape(m.Content))
	}
	if loading {
		b.WriteString("[green::b]AI:[-:-:-]\n[::i]…thinking…[::-]\n")
	}
	return b.String()
}
