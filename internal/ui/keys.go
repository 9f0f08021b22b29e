package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	Down       key.Binding
	Up         key.Binding
	Next       key.Binding
	Prev       key.Binding
	First      key.Binding
	Last       key.Binding
	PageDown   key.Binding
	PageUp     key.Binding
	ReaderDown key.Binding
	ReaderUp   key.Binding
	Filter     key.Binding
	Escape     key.Binding
	Reload     key.Binding
	Enter      key.Binding
	Unread     key.Binding
	Debug      key.Binding
	TabNumbers key.Binding
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "sair")),
	NextTab:    key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "categoria")),
	PrevTab:    key.NewBinding(key.WithKeys("shift+tab", "left", "h")),
	Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "navegar")),
	Up:         key.NewBinding(key.WithKeys("k", "up")),
	Next:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "próxima")),
	Prev:       key.NewBinding(key.WithKeys("p")),
	First:      key.NewBinding(key.WithKeys("g", "home")),
	Last:       key.NewBinding(key.WithKeys("G", "end")),
	PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+d")),
	PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+u")),
	ReaderDown: key.NewBinding(key.WithKeys("J", "shift+down")),
	ReaderUp:   key.NewBinding(key.WithKeys("K", "shift+up")),
	Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filtrar")),
	Escape:     key.NewBinding(key.WithKeys("esc")),
	Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recarregar")),
	Enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "lida")),
	Unread:     key.NewBinding(key.WithKeys("u")),
	Debug:      key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
	TabNumbers: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8")),
}

// hints are the bindings shown in the status bar, in order.
func (k keyMap) hints() []key.Binding {
	return []key.Binding{k.Down, k.NextTab, k.Next, k.Filter, k.Enter, k.Reload, k.Debug, k.Quit}
}
