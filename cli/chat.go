package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"chatrelay/relay"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive terminal chat through the provider chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sessionID := chatSession
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		p := tea.NewProgram(newChatModel(cmd.Context(), a.service, sessionID), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "Session id (default: a new random id)")
}

type chatLine struct {
	user     bool
	content  string
	provider string
}

type replyMsg struct {
	res relay.ChatResult
	err error
}

type chatModel struct {
	ctx       context.Context
	svc       *relay.Service
	sessionID string

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	lines   []chatLine
	waiting bool
	status  string

	width  int
	height int
}

func newChatModel(ctx context.Context, svc *relay.Service, sessionID string) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Type a message, /reset to start over..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter for newline, Enter sends
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return chatModel{
		ctx:       ctx,
		svc:       svc,
		sessionID: sessionID,
		textarea:  ta,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
	}
}

func (m chatModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(msg.Width - 2)
		// textarea (3) + status (1) + footer (1) + spacing
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-7, 3)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+y":
			m.copyLastReply()
			return m, nil
		case "enter":
			return m.submit(m.textarea.Value())
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = ErrorStyle.Render("Error: " + msg.err.Error())
			return m, nil
		}
		m.lines = append(m.lines, chatLine{content: msg.res.Reply, provider: msg.res.Provider})
		m.status = DimStyle.Render("via " + msg.res.Provider)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit handles the input box contents.
func (m chatModel) submit(input string) (chatModel, tea.Cmd) {
	input = strings.TrimSpace(input)
	if input == "" || m.waiting {
		return m, nil
	}
	m.textarea.Reset()

	if input == "/reset" {
		m.svc.Reset(m.sessionID)
		m.lines = nil
		m.status = DimStyle.Render("Session reset")
		m.refresh()
		return m, nil
	}

	m.lines = append(m.lines, chatLine{user: true, content: input})
	m.waiting = true
	m.status = ""
	m.refresh()
	return m, tea.Batch(m.send(input), m.spinner.Tick)
}

func (m chatModel) send(message string) tea.Cmd {
	ctx, svc, id := m.ctx, m.svc, m.sessionID
	return func() tea.Msg {
		res, err := svc.Chat(ctx, id, message)
		return replyMsg{res: res, err: err}
	}
}

func (m *chatModel) copyLastReply() {
	for i := len(m.lines) - 1; i >= 0; i-- {
		if !m.lines[i].user {
			if err := clipboard.WriteAll(m.lines[i].content); err != nil {
				m.status = ErrorStyle.Render("Copy failed: " + err.Error())
				return
			}
			m.status = DimStyle.Render("Copied last reply")
			return
		}
	}
	m.status = DimStyle.Render("Nothing to copy")
}

func (m *chatModel) refresh() {
	if len(m.lines) == 0 {
		m.viewport.SetContent(DimStyle.Render("No messages yet. Start chatting!"))
		return
	}

	width := m.viewport.Width - 4
	var b strings.Builder
	for _, line := range m.lines {
		if line.user {
			b.WriteString(UserStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(line.content)
		} else {
			b.WriteString(AssistantStyle.Render(line.provider))
			b.WriteString("\n")
			b.WriteString(renderMarkdown(line.content, width))
		}
		b.WriteString("\n\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m chatModel) View() string {
	status := m.status
	if m.waiting {
		status = m.spinner.View() + " Waiting for a provider..."
	}

	footer := FormatFooter("Enter", "Send", "Alt+Enter", "Newline", "Ctrl+Y", "Copy reply", "Esc", "Quit")
	return fmt.Sprintf("%s\n%s\n%s\n%s",
		m.viewport.View(),
		status,
		m.textarea.View(),
		DimStyle.Render("session "+m.sessionID)+"  "+footer,
	)
}
