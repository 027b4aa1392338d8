package ui

import "github.com/charmbracelet/bubbles/key"

type appKeyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Back      key.Binding
	Dismiss   key.Binding
}

func defaultAppKeys() appKeyMap {
	return appKeyMap{
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Dismiss:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done")),
	}
}

type homeKeyMap struct {
	Open key.Binding
}

func defaultHomeKeys() homeKeyMap {
	return homeKeyMap{
		Open: key.NewBinding(key.WithKeys("enter", "p", " "), key.WithHelp("enter", "my profile")),
	}
}

type profileKeyMap struct {
	Edit key.Binding
	Link key.Binding
}

func defaultProfileKeys() profileKeyMap {
	return profileKeyMap{
		Edit: key.NewBinding(key.WithKeys("e", "i", "enter"), key.WithHelp("e", "edit about me")),
		Link: key.NewBinding(key.WithKeys("o", "g"), key.WithHelp("o", "my GitHub profile")),
	}
}
