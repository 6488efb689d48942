package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the application's keybindings.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	Select key.Binding
	Back   key.Binding
	Quit   key.Binding

	Command key.Binding
	Help    key.Binding

	// Queue
	Refresh   key.Binding
	Sync      key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	FirstPage key.Binding
	LastPage  key.Binding
	Delete    key.Binding

	// Desk
	Analyze     key.Binding
	ForceAI     key.Binding
	Regenerate  key.Binding
	Template    key.Binding
	Variables   key.Binding
	Forward     key.Binding
	Reverse     key.Binding
	EditReply   key.Binding
	EditPreview key.Binding
	Send        key.Binding
	Next        key.Binding

	// Views
	Categories key.Binding
	Templates  key.Binding
	Setup      key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open email"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh page"),
		),
		Sync: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sync mail"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next page"),
		),
		FirstPage: key.NewBinding(
			key.WithKeys("{"),
			key.WithHelp("{", "first page"),
		),
		LastPage: key.NewBinding(
			key.WithKeys("}"),
			key.WithHelp("}", "last page"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Analyze: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "analyze"),
		),
		ForceAI: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "analyze with AI"),
		),
		Regenerate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "regenerate reply"),
		),
		Template: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pick template"),
		),
		Variables: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "fill variables"),
		),
		Forward: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "translate"),
		),
		Reverse: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "translate back"),
		),
		EditReply: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit reply"),
		),
		EditPreview: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "edit translation"),
		),
		Send: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "send"),
		),
		Next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next email"),
		),
		Categories: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "categories"),
		),
		Templates: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "templates"),
		),
		Setup: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "settings"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Analyze, k.Send, k.Help, k.Quit,
	}
}

// FullHelp returns all bindings grouped for the help overlay.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit, k.Help, k.Command},
		{k.Refresh, k.Sync, k.PrevPage, k.NextPage, k.FirstPage, k.LastPage, k.Delete},
		{k.Analyze, k.ForceAI, k.Regenerate, k.Template, k.Variables, k.Next},
		{k.Forward, k.Reverse, k.EditReply, k.EditPreview, k.Send},
		{k.Categories, k.Templates, k.Setup},
	}
}
