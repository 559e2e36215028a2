package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/iksnae/merchant-support/internal"
)

// REPL is a line-based chat for terminals without full-screen support and
// for piped input
type REPL struct {
	actions *Actions
	view    *MessageView
	in      io.Reader
	out     io.Writer
	// Wait wraps blocking calls, e.g. with a spinner
	Wait func(ctx context.Context, message string, fn func(ctx context.Context) error) error

	printed int
	session string
	blocks  []internal.ContentNode
}

// NewREPL creates a line-based chat reading from in and writing to out
func NewREPL(actions *Actions, view *MessageView, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		actions: actions,
		view:    view,
		in:      in,
		out:     out,
		Wait: func(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
}

// Run reads lines until EOF, /quit or ctx is cancelled
func (r *REPL) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprintln(r.out, "Type a question, /help for commands, /quit to leave.")
	// A resumed conversation is shown before the first prompt.
	r.printNew()
	r.prompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		quit := r.handle(ctx, scanner.Text())
		if quit {
			return nil
		}
		r.prompt()
	}
	return scanner.Err()
}

func (r *REPL) prompt() {
	fmt.Fprint(r.out, "› ")
}

func (r *REPL) handle(ctx context.Context, line string) bool {
	command, err := ParseCommand(line)
	if err != nil {
		fmt.Fprintln(r.out, err)
		return false
	}

	controller := r.actions.Controller
	switch command.Kind {
	case CmdQuit:
		return true

	case CmdSend:
		turn, ok := controller.Begin(line)
		if !ok {
			return false
		}
		// The question is already on screen as typed input.
		r.skipPrinted()
		_ = r.Wait(ctx, "Thinking", func(ctx context.Context) error {
			res := controller.Dispatch(ctx, turn)
			controller.Complete(res)
			return res.Err
		})

	case CmdAPI:
		api, err := r.actions.ResolveAPI(command.Arg)
		if err != nil {
			fmt.Fprintln(r.out, err)
			return false
		}
		err = r.Wait(ctx, "Asking about "+api, func(ctx context.Context) error {
			return controller.SelectAPI(ctx, api)
		})
		if err != nil && !isTurnError(err) {
			fmt.Fprintln(r.out, err)
			return false
		}

	default:
		var output string
		err := r.Wait(ctx, "Working", func(ctx context.Context) error {
			var err error
			output, err = r.actions.Run(ctx, command, r.blocks)
			return err
		})
		if err != nil {
			fmt.Fprintln(r.out, err)
			return false
		}
		if command.Kind == CmdSources || command.Kind == CmdUp || command.Kind == CmdDown {
			// Re-render the whole thread so the change is visible.
			r.printed = 0
		}
		fmt.Fprintln(r.out, output)
	}

	r.printNew()
	return false
}

// isTurnError reports whether err came back from the service, in which case
// an apology message is already in the thread
func isTurnError(err error) bool {
	var clarificationErr *internal.ClarificationError
	return !errors.As(err, &clarificationErr) && !errors.Is(err, internal.ErrBusy)
}

func (r *REPL) skipPrinted() {
	snap := r.actions.Controller.Snapshot()
	r.syncSession(snap)
	r.printed = len(snap.Messages)
}

func (r *REPL) syncSession(snap internal.Snapshot) {
	if snap.Session.ID != r.session {
		r.session = snap.Session.ID
		r.printed = 0
	}
}

func (r *REPL) printNew() {
	st, snap := r.actions.ThreadState()
	r.syncSession(snap)
	if r.printed > len(snap.Messages) {
		r.printed = 0
	}
	rendered := r.view.RenderThreadFrom(snap.Messages, r.printed, st)
	r.blocks = rendered.CodeBlocks
	if r.printed < len(snap.Messages) {
		fmt.Fprint(r.out, rendered.Text)
	}
	r.printed = len(snap.Messages)
}
