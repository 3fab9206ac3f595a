package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/nclock/internal/i18n"
)

type keyMap struct {
	Prev     key.Binding
	Next     key.Binding
	Jump     key.Binding
	Slower   key.Binding
	Faster   key.Binding
	Seconds  key.Binding
	Language key.Binding
	Quit     key.Binding

	StartStop key.Binding
	Lap       key.Binding
	Reset     key.Binding

	Add    key.Binding
	Toggle key.Binding
	Delete key.Binding
	Cancel key.Binding
	Submit key.Binding
}

func newKeyMap(tr *i18n.Translator) keyMap {
	return keyMap{
		Prev:     key.NewBinding(key.WithKeys("left", "shift+tab"), key.WithHelp("←/→", tr.Msg(i18n.KeyHelpTabs))),
		Next:     key.NewBinding(key.WithKeys("right", "tab"), key.WithHelp("←/→", tr.Msg(i18n.KeyHelpTabs))),
		Jump:     key.NewBinding(key.WithKeys("1", "2", "3", "4")),
		Slower:   key.NewBinding(key.WithKeys("-", "_")),
		Faster:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", tr.Msg(i18n.KeySpeedTitle))),
		Seconds:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", tr.Msg(i18n.KeyShowSeconds))),
		Language: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", tr.Msg(i18n.KeyLanguage))),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", tr.Msg(i18n.KeyHelpQuit))),

		StartStop: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", tr.Msg(i18n.KeyStart)+"/"+tr.Msg(i18n.KeyStop))),
		Lap:       key.NewBinding(key.WithKeys("l"), key.WithHelp("l", tr.Msg(i18n.KeyLap))),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", tr.Msg(i18n.KeyReset))),

		Add:    key.NewBinding(key.WithKeys("a", "enter"), key.WithHelp("a", tr.Msg(i18n.KeyAddAlarm))),
		Toggle: key.NewBinding(key.WithKeys("t", " "), key.WithHelp("t", "ON/OFF")),
		Delete: key.NewBinding(key.WithKeys("d", "x", "delete", "backspace"), key.WithHelp("d", "del")),
		Cancel: key.NewBinding(key.WithKeys("esc")),
		Submit: key.NewBinding(key.WithKeys("enter")),
	}
}

// global lists the bindings shown in the footer on every panel. Prev and
// Slower share a help entry with Next and Faster.
func (k keyMap) global() []key.Binding {
	return []key.Binding{k.Next, k.Faster, k.Seconds, k.Language, k.Quit}
}
