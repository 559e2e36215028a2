package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atotto/clipboard"

	"github.com/iksnae/merchant-support/internal"
)

// CommandKind identifies a chat input line
type CommandKind int

const (
	// CmdSend is plain text for the assistant
	CmdSend CommandKind = iota
	CmdNew
	CmdHistory
	CmdSwitch
	CmdAPI
	CmdUp
	CmdDown
	CmdSources
	CmdCopy
	CmdConnect
	CmdHelp
	CmdQuit
)

// Command is a parsed chat input line
type Command struct {
	Kind CommandKind
	Arg  string
	// Index is the 1-based number argument, 0 when omitted
	Index int
}

// HelpText lists the chat commands
const HelpText = `Commands:
  /new               start a new conversation
  /history           list recent conversations
  /switch <n|id>     open a conversation from /history
  /api <n|name>      answer an API clarification
  /up [n]            rate reply #n helpful (default: latest)
  /down [n]          rate reply #n not helpful
  /sources [n]       show or hide the sources of reply #n
  /copy <n>          copy code block [n] to the clipboard
  /connect <shop>    print the link that connects a store
  /help              show this help
  /quit              leave`

var commandNames = map[string]CommandKind{
	"/new":     CmdNew,
	"/history": CmdHistory,
	"/switch":  CmdSwitch,
	"/api":     CmdAPI,
	"/up":      CmdUp,
	"/down":    CmdDown,
	"/sources": CmdSources,
	"/copy":    CmdCopy,
	"/connect": CmdConnect,
	"/help":    CmdHelp,
	"/quit":    CmdQuit,
	"/exit":    CmdQuit,
}

// ParseCommand parses one input line. Lines not starting with "/" are sent
// to the assistant as they are.
func ParseCommand(line string) (Command, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		return Command{Kind: CmdSend, Arg: line}, nil
	}

	name, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)
	kind, ok := commandNames[strings.ToLower(name)]
	if !ok {
		return Command{}, fmt.Errorf("unknown command %s (try /help)", name)
	}

	cmd := Command{Kind: kind, Arg: arg}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 {
			return Command{}, fmt.Errorf("%s: number must be at least 1", name)
		}
		cmd.Index = n
	}

	switch kind {
	case CmdSwitch, CmdAPI, CmdConnect:
		if arg == "" {
			return Command{}, fmt.Errorf("%s needs an argument", name)
		}
	case CmdCopy:
		if cmd.Index == 0 {
			return Command{}, fmt.Errorf("%s needs a code block number", name)
		}
	case CmdUp, CmdDown, CmdSources:
		if arg != "" && cmd.Index == 0 {
			return Command{}, fmt.Errorf("%s takes a reply number", name)
		}
	}
	return cmd, nil
}

// Actions runs chat commands against a controller. The interactive program
// and the line-based chat share it.
type Actions struct {
	Controller *internal.Controller
	History    *internal.HistoryBrowser
	Copies     *internal.CopyTracker
	// AuthURL builds the store-linking address
	AuthURL func(shop string) string
	// WriteClipboard defaults to the system clipboard
	WriteClipboard func(text string) error
	Now            func() time.Time
}

// ResolveAPI maps "/api" input to one of the pending suggested APIs, by
// number or case-insensitive name. Anything else is rejected.
func (a *Actions) ResolveAPI(arg string) (string, error) {
	snap := a.Controller.Snapshot()
	if snap.State != internal.AwaitingAPIChoice {
		return "", &internal.ClarificationError{State: snap.State, SelectedAPI: arg}
	}
	apis := snap.Clarification.SuggestedAPIs
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(apis) {
			return "", fmt.Errorf("no API #%d (choose 1-%d)", n, len(apis))
		}
		return apis[n-1], nil
	}
	for _, api := range apis {
		if strings.EqualFold(api, arg) {
			return api, nil
		}
	}
	return "", fmt.Errorf("%q is not one of the suggested APIs (choose 1-%d)", arg, len(apis))
}

// Run executes every command except CmdSend, CmdAPI and CmdQuit, which
// need the caller's own request handling. blocks are the code blocks of
// the last render.
func (a *Actions) Run(ctx context.Context, cmd Command, blocks []internal.ContentNode) (string, error) {
	switch cmd.Kind {
	case CmdNew:
		session := a.History.NewChat()
		if a.Copies != nil {
			a.Copies.Reset()
		}
		return "Started new conversation " + session.ID, nil

	case CmdHistory:
		return a.listHistory(ctx)

	case CmdSwitch:
		return a.switchTo(ctx, cmd)

	case CmdUp, CmdDown:
		id, err := a.replyID(cmd.Index)
		if err != nil {
			return "", err
		}
		if err := a.Controller.RateMessage(ctx, id, cmd.Kind == CmdUp, nil, ""); err != nil {
			if errors.Is(err, internal.ErrAlreadyRated) {
				return "", errors.New("you already rated that reply")
			}
			return "", err
		}
		return "Thanks for the feedback", nil

	case CmdSources:
		id, err := a.replyID(cmd.Index)
		if err != nil {
			return "", err
		}
		if a.Controller.ToggleSources(id) {
			return "Sources expanded", nil
		}
		return "Sources collapsed", nil

	case CmdCopy:
		if cmd.Index > len(blocks) {
			return "", fmt.Errorf("no code block [%d]", cmd.Index)
		}
		write := a.WriteClipboard
		if write == nil {
			write = clipboard.WriteAll
		}
		if err := write(blocks[cmd.Index-1].Code); err != nil {
			internal.LogError("Failed to copy code block %d: %v", cmd.Index, err)
			return "", fmt.Errorf("failed to copy code: %w", err)
		}
		if a.Copies != nil {
			a.Copies.MarkCopied(cmd.Index)
		}
		return fmt.Sprintf("Copied code block [%d]", cmd.Index), nil

	case CmdConnect:
		if a.AuthURL == nil {
			return "", errors.New("store connection is not available")
		}
		return "Open this link to connect " + cmd.Arg + ":\n  " + a.AuthURL(cmd.Arg), nil

	case CmdHelp:
		return HelpText, nil
	}
	return "", errors.New("command cannot be run here")
}

func (a *Actions) listHistory(ctx context.Context) (string, error) {
	if err := a.History.Load(ctx); err != nil {
		return "", errors.New(a.History.Error())
	}
	conversations := a.History.Conversations()
	if len(conversations) == 0 {
		return "No conversations yet", nil
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	current := a.Controller.Session().ID

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for i, c := range conversations {
		marker := " "
		if c.SessionID == current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s%d\t%s\t%s\t%s\n", marker, i+1, c.Title, internal.FormatUpdated(c.UpdatedAt, now()), internal.Preview(c))
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n"), nil
}

func (a *Actions) switchTo(ctx context.Context, cmd Command) (string, error) {
	id := cmd.Arg
	if cmd.Index > 0 {
		conversations := a.History.Conversations()
		if cmd.Index > len(conversations) {
			return "", fmt.Errorf("no conversation #%d (run /history first)", cmd.Index)
		}
		id = conversations[cmd.Index-1].SessionID
	}
	if id == a.Controller.Session().ID {
		return "Already in " + id, nil
	}
	if a.Copies != nil {
		a.Copies.Reset()
	}
	if err := a.History.Select(ctx, id); err != nil {
		return "", err
	}
	return "Switched to " + id, nil
}

// replyID maps a reply number to a message id; 0 means the latest reply
func (a *Actions) replyID(n int) (string, error) {
	ids := ReplyIDs(a.Controller.Snapshot().Messages)
	if len(ids) == 0 {
		return "", errors.New("no assistant replies yet")
	}
	if n == 0 {
		return ids[len(ids)-1], nil
	}
	if n > len(ids) {
		return "", fmt.Errorf("no reply #%d", n)
	}
	return ids[n-1], nil
}

// ThreadState builds render state from the controller and copy tracker
func (a *Actions) ThreadState() (ThreadState, internal.Snapshot) {
	snap := a.Controller.Snapshot()
	st := ThreadState{
		SourcesExpanded: a.Controller.SourcesExpanded,
		Feedback:        a.Controller.Feedback,
	}
	if a.Copies != nil {
		st.Copied = a.Copies.Copied
	}
	if snap.State == internal.AwaitingAPIChoice {
		pending := snap.Clarification
		st.Pending = &pending
	}
	return st, snap
}
