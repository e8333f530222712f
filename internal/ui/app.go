package ui

import (
	"context"
	"strings"

	bspinner "github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"citizen-impact/client/internal/controller"
	"citizen-impact/client/internal/i18n"
	"citizen-impact/client/internal/model"
	"citizen-impact/client/internal/reveal"
	"citizen-impact/client/internal/session"
	"citizen-impact/client/internal/timeline"
)

const sidebarWidth = 28

// Params wires the conversation engine into the terminal view.
type Params struct {
	Controller *controller.Controller
	Registry   *session.Registry
	Timeline   *timeline.Timeline
	Revealer   *reveal.Revealer
	Identity   model.Identity
	Text       i18n.Strings
	// SignOut clears the persisted identity and the loaded sessions.
	SignOut func()
}

// Model is the bubbletea model for the conversation view. All state
// mutation funnels through Update on the program goroutine; network calls
// run as commands and come back as messages.
type Model struct {
	ctrl     *controller.Controller
	registry *session.Registry
	timeline *timeline.Timeline
	revealer *reveal.Revealer
	identity model.Identity
	text     i18n.Strings
	signOut  func()

	input    textinput.Model
	viewport viewport.Model
	spinner  bspinner.Model

	width, height int
	sidebarOpen   bool
	selected      int
	sending       bool

	// in-flight typewriter animation for the newest assistant message
	revealing *reveal.Reveal
	revealID  string
	partial   string
}

func New(p Params) Model {
	ti := textinput.New()
	ti.Placeholder = p.Text.Placeholder
	ti.CharLimit = 2000
	ti.Focus()

	sp := bspinner.New()
	sp.Spinner = bspinner.Dot
	sp.Style = thinkingStyle

	vp := viewport.New(80, 20)

	if p.SignOut == nil {
		p.SignOut = func() {}
	}

	return Model{
		ctrl:        p.Controller,
		registry:    p.Registry,
		timeline:    p.Timeline,
		revealer:    p.Revealer,
		identity:    p.Identity,
		text:        p.Text,
		signOut:     p.SignOut,
		input:       ti,
		viewport:    vp,
		spinner:     sp,
		sidebarOpen: true,
	}
}

type replyMsg struct {
	reply *model.Message
}

type frameMsg struct {
	text string
	ok   bool
}

type historyMsg struct {
	err error
}

func (m Model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return replyMsg{reply: m.ctrl.Send(context.Background(), text)}
	}
}

func (m Model) selectCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return historyMsg{err: m.ctrl.SelectSession(context.Background(), id)}
	}
}

func waitFrame(rv *reveal.Reveal) tea.Cmd {
	return func() tea.Msg {
		frame, ok := <-rv.Frames()
		return frameMsg{text: frame, ok: ok}
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = m.mainWidth()
		m.viewport.Height = msg.Height - 4
		m.input.Width = m.mainWidth() - 4
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			// Teardown path: the reveal timer must not outlive the view.
			m.stopReveal()
			return m, tea.Quit
		case "enter":
			text := m.input.Value()
			if strings.TrimSpace(text) == "" || m.sending || m.ctrl.Pending() {
				return m, nil
			}
			m.input.Reset()
			m.input.Placeholder = m.text.FollowUpPlaceholder
			m.sending = true
			return m, tea.Batch(m.sendCmd(text), m.spinner.Tick)
		case "ctrl+n":
			m.stopReveal()
			m.ctrl.NewConversation()
			m.selected = 0
			m.input.Placeholder = m.text.Placeholder
			m.refreshViewport()
			return m, nil
		case "ctrl+b":
			m.sidebarOpen = !m.sidebarOpen
			m.viewport.Width = m.mainWidth()
			m.refreshViewport()
			return m, nil
		case "ctrl+x":
			if !m.identity.Known() {
				return m, nil
			}
			m.stopReveal()
			m.signOut()
			m.identity = model.Identity{}
			m.selected = 0
			m.input.Placeholder = m.text.Placeholder
			m.refreshViewport()
			return m, nil
		case "tab":
			sessions := m.registry.Sessions()
			if len(sessions) == 0 {
				return m, nil
			}
			m.selected = (m.selected + 1) % len(sessions)
			m.stopReveal()
			return m, m.selectCmd(sessions[m.selected].ID)
		case "alt+1", "alt+2", "alt+3", "alt+4":
			// starter questions, only live on an empty conversation
			if m.timeline.Len() > 0 || m.sending || m.ctrl.Pending() {
				return m, nil
			}
			idx := int(msg.String()[4] - '1')
			if idx >= len(m.text.Suggestions) {
				return m, nil
			}
			m.input.Placeholder = m.text.FollowUpPlaceholder
			m.sending = true
			return m, tea.Batch(m.sendCmd(m.text.Suggestions[idx]), m.spinner.Tick)
		}

	case replyMsg:
		m.sending = false
		if msg.reply == nil {
			// no-op send or a reply for a conversation the user left
			m.refreshViewport()
			return m, nil
		}
		m.revealing = m.revealer.Start(msg.reply.Text)
		m.revealID = msg.reply.ID
		m.partial = ""
		m.refreshViewport()
		return m, waitFrame(m.revealing)

	case frameMsg:
		if m.revealing == nil {
			return m, nil
		}
		if !msg.ok {
			m.revealing = nil
			m.revealID = ""
			m.partial = ""
			m.refreshViewport()
			return m, nil
		}
		m.partial = msg.text
		m.refreshViewport()
		return m, waitFrame(m.revealing)

	case historyMsg:
		m.refreshViewport()
		return m, nil

	case bspinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		// Each tick also re-projects the timeline so the optimistic user
		// append shows up while the round trip is still in flight.
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshViewport()
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// stopReveal cancels the in-flight animation; pending frame commands drain
// from the closed channel and arrive as a final not-ok frameMsg.
func (m *Model) stopReveal() {
	m.revealer.StopActive()
	m.revealing = nil
	m.revealID = ""
	m.partial = ""
}

func (m Model) mainWidth() int {
	if m.sidebarOpen {
		return max(20, m.width-sidebarWidth)
	}
	return max(20, m.width)
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(renderMessages(m.timeline.Messages(), m.revealID, m.partial, m.mainWidth()))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	main := m.viewMain()
	if !m.sidebarOpen {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.viewSidebar(), main)
}
