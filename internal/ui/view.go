package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"citizen-impact/client/internal/model"
)

func (m Model) viewSidebar() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.text.Title))
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render("+ " + m.text.NewChat))
	b.WriteString(mutedStyle.Render("  ctrl+n"))
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render(m.text.History))
	b.WriteString("\n")

	sessions := m.registry.Sessions()
	if len(sessions) == 0 {
		b.WriteString(mutedStyle.Render(m.text.NoChats))
		b.WriteString("\n")
	}
	activeID := m.registry.ActiveID()
	for _, s := range sessions {
		line := truncate(s.Title, sidebarWidth-4)
		if s.ID == activeID {
			b.WriteString(activeStyle.Render("> " + line))
		} else {
			b.WriteString(mutedStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.identity.Known() {
		b.WriteString(subtitleStyle.Render(m.identity.DisplayName))
	} else {
		b.WriteString(mutedStyle.Render(m.text.SignIn))
	}

	return sidebarStyle.Width(sidebarWidth - 1).Height(max(1, m.height-1)).Render(b.String())
}

func (m Model) viewMain() string {
	var b strings.Builder

	if m.timeline.Len() == 0 && !m.sending {
		b.WriteString(m.viewWelcome())
	} else {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	if m.sending {
		b.WriteString(m.spinner.View())
		b.WriteString(thinkingStyle.Render(m.text.Thinking))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("enter send · tab switch chat · ctrl+n new · ctrl+b sidebar · ctrl+x sign out · ctrl+c quit"))

	return lipgloss.NewStyle().Padding(0, 1).Width(m.mainWidth()).Render(b.String())
}

// viewWelcome is the empty-conversation greeting with tappable starter
// questions, shown until the first message lands.
func (m Model) viewWelcome() string {
	var b strings.Builder

	greeting := m.text.Welcome
	if m.identity.Known() {
		greeting = m.text.WelcomeBack + m.identity.DisplayName
	}
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(greeting))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(m.text.Subtitle))
	b.WriteString("\n\n")
	for i, s := range m.text.Suggestions {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  alt+%d ", i+1)))
		b.WriteString(botMsgStyle.Render(s))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	return b.String()
}

// renderMessages lays out the conversation, substituting the partial
// typewriter frame for the assistant message still being revealed.
func renderMessages(messages []model.Message, revealID, partial string, width int) string {
	var b strings.Builder
	wrap := lipgloss.NewStyle().Width(max(20, width-4))

	for _, msg := range messages {
		if msg.Author == model.AuthorUser {
			b.WriteString(userMsgStyle.Render("You"))
		} else {
			b.WriteString(botMsgStyle.Bold(true).Render("Assistant"))
		}
		b.WriteString("\n")

		text := msg.Text
		if msg.ID == revealID {
			text = partial
		}
		b.WriteString(wrap.Render(botMsgStyle.Render(text)))
		b.WriteString("\n\n")
	}

	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
