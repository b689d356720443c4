// Package styles defines the visual styling for the application.
package styles

import "github.com/charmbracelet/lipgloss"

// Color definitions.
var (
	// Primary colors
	Primary   = lipgloss.Color("205") // Pink
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	// Diff colors
	Added    = lipgloss.Color("42")
	Modified = lipgloss.Color("220")
	Deleted  = lipgloss.Color("196")
	Renamed  = lipgloss.Color("39")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// MessagePanelStyle frames a proposed commit message.
var MessagePanelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Success).
	Padding(1, 2)

// MessageTitleStyle styles the panel caption.
var MessageTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Success)

// SubjectStyle styles the subject line of a message.
var SubjectStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(TextPrimary)

// FocusedBorderStyle creates a focused border.
var FocusedBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Primary).
	Padding(0, 1)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpDescStyle styles help descriptions.
var HelpDescStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// ListItemStyle styles list items.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedListItemStyle styles selected list items.
var SelectedListItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Foreground(Primary).
	Bold(true).
	SetString(">")

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	Padding(0, 1)

// TableCellStyle styles table cells.
var TableCellStyle = lipgloss.NewStyle().
	Padding(0, 1)

// TableBorderStyle styles table borders.
var TableBorderStyle = lipgloss.NewStyle().
	Foreground(Subtle)

// LimitOKStyle for spend well below the monthly limit.
var LimitOKStyle = lipgloss.NewStyle().
	Foreground(Success)

// LimitWarningStyle for spend above 80% of the monthly limit.
var LimitWarningStyle = lipgloss.NewStyle().
	Foreground(Warning).
	Bold(true)

// LimitExceededStyle for spend at or above the monthly limit.
var LimitExceededStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(Info)

// MutedTextStyle for secondary details.
var MutedTextStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// ChartStyle frames the cost chart.
var ChartStyle = lipgloss.NewStyle().
	Foreground(Info)

// GetLimitStyle returns the style for spend at percent of the monthly limit.
func GetLimitStyle(percent float64) lipgloss.Style {
	switch {
	case percent >= 100:
		return LimitExceededStyle
	case percent >= 80:
		return LimitWarningStyle
	default:
		return LimitOKStyle
	}
}

// GetChangeStyle returns the style for a staged change type.
func GetChangeStyle(changeType string) lipgloss.Style {
	switch changeType {
	case "A":
		return lipgloss.NewStyle().Foreground(Added)
	case "D":
		return lipgloss.NewStyle().Foreground(Deleted)
	case "R", "C":
		return lipgloss.NewStyle().Foreground(Renamed)
	default:
		return lipgloss.NewStyle().Foreground(Modified)
	}
}

// CenterHorizontal centers content horizontally within a given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}
