package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	sidebarStyle  = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderRight(true).BorderForeground(lipgloss.Color("240")).PaddingRight(1)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("246"))
	activeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	userMsgStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	botMsgStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	thinkingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
)
