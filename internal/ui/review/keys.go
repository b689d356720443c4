package review

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the review screens.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	Accept     key.Binding
	Edit       key.Binding
	Regenerate key.Binding
	Cancel     key.Binding
	Save       key.Binding
	Abort      key.Binding
	Yes        key.Binding
	No         key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Accept:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Regenerate: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "regenerate")),
		Cancel:     key.NewBinding(key.WithKeys("c", "esc"), key.WithHelp("c", "cancel")),
		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Abort:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Yes:        key.NewBinding(key.WithKeys("y", "Y", "enter"), key.WithHelp("Y", "yes")),
		No:         key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "no")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

type selectHelp KeyMap

func (k selectHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Abort}
}

func (k selectHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type reviewHelp KeyMap

func (k reviewHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Accept, k.Edit, k.Regenerate, k.Cancel}
}

func (k reviewHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type editHelp KeyMap

func (k editHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Abort}
}

func (k editHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
