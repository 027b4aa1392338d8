package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AboutInput is a multi-line text field limited to maxLength characters.
// Input beyond the limit is dropped rather than rejected.
//
// The value is kept as given. The text area only displays it, and it drops
// control characters and expands tabs, so a value set with SetValue is
// preserved exactly until the user types into the field. From then on the
// value is what the field shows.
type AboutInput struct {
	ta        textarea.Model
	raw       string
	maxLength int
	theme     Theme
}

// NewAboutInput creates a blurred field holding initial.
func NewAboutInput(maxLength int, initial string, theme Theme) *AboutInput {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	// Every character may be a line break.
	ta.MaxHeight = 0
	ta.SetHeight(4)
	ta.SetWidth(50)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.Cursor.SetMode(cursor.CursorStatic)
	ta.Blur()

	in := &AboutInput{ta: ta, maxLength: maxLength, theme: theme}
	in.SetValue(initial)
	return in
}

// Handle returns the focus handle for this field.
func (in *AboutInput) Handle() InputHandle {
	return InputHandle{in: in}
}

// Value returns the current text.
func (in *AboutInput) Value() string {
	return in.raw
}

// SetValue replaces the text, truncated to the limit.
func (in *AboutInput) SetValue(s string) {
	in.raw = TruncateRunes(s, in.maxLength)
	in.display(in.raw)
}

// display shows s in the text area, whole even where tabs expand it past
// the limit.
func (in *AboutInput) display(s string) {
	in.ta.CharLimit = 0
	in.ta.SetValue(lineBreaks.Replace(s))
}

// lineBreaks folds CRLF and lone CR into one line break.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Len returns the length of the current text in characters.
func (in *AboutInput) Len() int {
	return utf8.RuneCountInString(in.raw)
}

// SetWidth sets the text width, excluding the border.
func (in *AboutInput) SetWidth(w int) {
	if w < 10 {
		w = 10
	}
	in.ta.SetWidth(w)
}

// Update forwards input to the text area while focused. An edit replaces
// the value with the field's text.
func (in *AboutInput) Update(msg tea.Msg) tea.Cmd {
	before := in.ta.Value()
	room := max(in.maxLength-utf8.RuneCountInString(before), 0)
	if k, ok := msg.(tea.KeyMsg); ok && room == 0 && key.Matches(k, in.ta.KeyMap.InsertNewline) {
		return nil
	}
	// CharLimit is measured in cells; this leaves space for room characters.
	in.ta.CharLimit = in.ta.Length() + room
	var cmd tea.Cmd
	in.ta, cmd = in.ta.Update(msg)
	if after := in.ta.Value(); after != before {
		in.raw = TruncateRunes(after, in.maxLength)
		if in.raw != after {
			in.display(in.raw)
		}
	}
	return cmd
}

func (in *AboutInput) View() string {
	style := in.theme.Input
	if in.ta.Focused() {
		style = in.theme.InputFocus
	}
	return style.Render(in.ta.View())
}

// InputHandle controls focus of an AboutInput on behalf of its owner.
type InputHandle struct {
	in *AboutInput
}

// Focus gives the field the key stream.
func (h InputHandle) Focus() tea.Cmd {
	if h.in == nil {
		return nil
	}
	return h.in.ta.Focus()
}

// Blur takes the key stream away from the field.
func (h InputHandle) Blur() {
	if h.in == nil {
		return
	}
	h.in.ta.Blur()
}

// Focused reports whether the field has the key stream.
func (h InputHandle) Focused() bool {
	return h.in != nil && h.in.ta.Focused()
}

// TruncateRunes returns the first n characters of s. Invalid UTF-8 bytes
// count as one character each.
func TruncateRunes(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
