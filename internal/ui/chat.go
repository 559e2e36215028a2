package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iksnae/merchant-support/internal"
)

const (
	defaultWidth         = 100
	defaultHeight        = 40
	inputCharLimit       = 4000
	inputHeightReserved  = 2
	statusHeightReserved = 3
	minContentHeight     = 5
	placeholderText      = "Ask about your store, orders or the Shopify APIs..."
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Bold(true).Padding(0, 1)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// ChatProgram is the interactive chat
type ChatProgram struct {
	model chatModel
}

// NewChatProgram creates the interactive chat over actions
func NewChatProgram(ctx context.Context, actions *Actions, view *MessageView) *ChatProgram {
	return &ChatProgram{model: initialModel(ctx, actions, view)}
}

// Run starts the program and blocks until the user quits
func (p *ChatProgram) Run() error {
	program := tea.NewProgram(p.model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

type chatModel struct {
	ctx     context.Context
	actions *Actions
	view    *MessageView

	input       textinput.Model
	contentView viewport.Model
	spinner     spinner.Model

	blocks []internal.ContentNode
	notice string
	failed bool

	width  int
	height int
}

type (
	turnDoneMsg    struct{ result internal.TurnResult }
	commandDoneMsg struct {
		output string
		err    error
	}
	copyExpiredMsg struct{}
)

func initialModel(ctx context.Context, actions *Actions, view *MessageView) chatModel {
	input := textinput.New()
	input.Placeholder = placeholderText
	input.Focus()
	input.CharLimit = inputCharLimit
	input.Width = defaultWidth - 4
	input.Prompt = promptStyle.Render("› ")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = promptStyle

	m := chatModel{
		ctx:         ctx,
		actions:     actions,
		view:        view,
		input:       input,
		contentView: viewport.New(defaultWidth, defaultHeight-inputHeightReserved-statusHeightReserved),
		spinner:     sp,
		width:       defaultWidth,
		height:      defaultHeight,
	}
	m.refreshContent()
	return m
}

// Init starts the cursor blink and spinner
func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles input and request results
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			cmd, quit := m.submit()
			if quit {
				return m, tea.Quit
			}
			cmds = append(cmds, cmd)
		case tea.KeyPgUp:
			m.contentView.HalfPageUp()
		case tea.KeyPgDown:
			m.contentView.HalfPageDown()
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = msg.Width - 4
		m.contentView.Width = msg.Width
		m.contentView.Height = max(minContentHeight, msg.Height-inputHeightReserved-statusHeightReserved)
		m.refreshContent()

	case turnDoneMsg:
		m.actions.Controller.Complete(msg.result)
		m.notice, m.failed = "", false
		m.refreshContent()

	case commandDoneMsg:
		m.notice, m.failed = msg.output, msg.err != nil
		if msg.err != nil {
			m.notice = msg.err.Error()
		}
		m.refreshContent()

	case copyExpiredMsg:
		m.refreshContent()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles the input line. The user message is added before the
// request is sent so it shows while the reply is pending.
func (m *chatModel) submit() (tea.Cmd, bool) {
	line := m.input.Value()
	command, err := ParseCommand(line)
	if err != nil {
		m.notice, m.failed = err.Error(), true
		return nil, false
	}
	m.input.Reset()

	controller := m.actions.Controller
	switch command.Kind {
	case CmdQuit:
		return nil, true

	case CmdSend:
		turn, ok := controller.Begin(line)
		if !ok {
			return nil, false
		}
		m.refreshContent()
		return m.dispatch(turn), false

	case CmdAPI:
		api, err := m.actions.ResolveAPI(command.Arg)
		if err != nil {
			m.notice, m.failed = err.Error(), true
			return nil, false
		}
		turn, err := controller.BeginAPISelection(api)
		if err != nil {
			m.notice, m.failed = err.Error(), true
			return nil, false
		}
		m.notice, m.failed = "Using "+api+"...", false
		m.refreshContent()
		return m.dispatch(turn), false

	case CmdCopy:
		output, err := m.actions.Run(m.ctx, command, m.blocks)
		m.notice, m.failed = output, err != nil
		if err != nil {
			m.notice = err.Error()
			return nil, false
		}
		m.refreshContent()
		return tea.Tick(internal.CopyResetAfter, func(time.Time) tea.Msg { return copyExpiredMsg{} }), false
	}

	ctx, actions, blocks := m.ctx, m.actions, m.blocks
	return func() tea.Msg {
		output, err := actions.Run(ctx, command, blocks)
		return commandDoneMsg{output: output, err: err}
	}, false
}

func (m *chatModel) dispatch(turn *internal.Turn) tea.Cmd {
	ctx, controller := m.ctx, m.actions.Controller
	return func() tea.Msg {
		return turnDoneMsg{result: controller.Dispatch(ctx, turn)}
	}
}

func (m *chatModel) refreshContent() {
	st, snap := m.actions.ThreadState()

	var content string
	if len(snap.Messages) == 0 {
		m.blocks = nil
		content = dimStyle.Render("\n  Ask a question to get started. Type /help for commands.\n")
	} else {
		rendered := m.view.RenderThread(snap.Messages, st)
		m.blocks = rendered.CodeBlocks
		content = rendered.Text
	}
	// Multi-line command output such as /history is shown below the thread.
	if !m.failed && strings.Contains(m.notice, "\n") {
		content += "\n" + noticeStyle.Render(m.notice) + "\n"
	}
	m.contentView.SetContent(content)
	m.contentView.GotoBottom()
}

// View draws the thread, status line and input
func (m chatModel) View() string {
	snap := m.actions.Controller.Snapshot()

	title := "Merchant Support"
	if snap.Shop != "" {
		title += " · " + snap.Shop
	}
	header := titleStyle.Render(title) + " " + dimStyle.Render(snap.Session.ID)

	status := m.status(snap)

	return strings.Join([]string{
		header,
		m.contentView.View(),
		status,
		m.input.View(),
	}, "\n")
}

func (m chatModel) status(snap internal.Snapshot) string {
	switch {
	case snap.Loading:
		return m.spinner.View() + " " + dimStyle.Render("Thinking...")
	case m.notice != "" && m.failed:
		return failStyle.Render(m.notice)
	case m.notice != "":
		return noticeStyle.Render(firstLine(m.notice))
	case snap.State == internal.AwaitingAPIChoice:
		return noticeStyle.Render(fmt.Sprintf("Choose an API with /api <1-%d>, or type a reply", len(snap.Clarification.SuggestedAPIs)))
	case snap.State == internal.AwaitingFreeText:
		return noticeStyle.Render("The assistant needs more details; your next message answers it")
	}
	return dimStyle.Render("Enter to send · /help for commands · Esc to quit")
}

func firstLine(s string) string {
	line, rest, found := strings.Cut(s, "\n")
	if found && strings.TrimSpace(rest) != "" {
		return line + " …"
	}
	return line
}
