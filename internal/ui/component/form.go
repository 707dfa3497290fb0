package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
)

// FieldType represents the type of form field
type FieldType int

const (
	FieldTypeText FieldType = iota
	FieldTypeNumber
	FieldTypeSelect
)

// FormField represents a single form field
type FormField struct {
	Name        string
	Label       string
	Type        FieldType
	Value       string
	Options     []string // For select fields
	Placeholder string
	Required    bool
	Validation  func(string) error
	Error       string

	textInput   textinput.Model
	selectedIdx int
}

// Form is a small vertical form of text, number and select fields. Select
// fields cycle with left/right, tab moves between fields.
type Form struct {
	fields     []FormField
	focusIndex int
	focused    bool
	width      int

	labelStyle   lipgloss.Style
	inputStyle   lipgloss.Style
	focusedStyle lipgloss.Style
	errorStyle   lipgloss.Style
}

// NewForm creates a new form component
func NewForm() *Form {
	palette := style.DefaultPalette()

	return &Form{
		fields: make([]FormField, 0),

		labelStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true).
			MarginRight(1),

		inputStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		focusedStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),

		errorStyle: lipgloss.NewStyle().
			Foreground(palette.Error),
	}
}

// AddField adds a field to the form
func (f *Form) AddField(name string, fieldType FieldType, label string, required bool, placeholder string) *Form {
	ti := textinput.New()
	ti.Width = 20
	ti.Placeholder = placeholder
	ti.Prompt = ""
	if fieldType == FieldTypeNumber {
		ti.CharLimit = 12
		ti.Validate = numericInput
	}

	f.fields = append(f.fields, FormField{
		Name:        name,
		Label:       label,
		Type:        fieldType,
		Placeholder: placeholder,
		Required:    required,
		textInput:   ti,
	})
	return f
}

func numericInput(s string) error {
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return errNotNumeric
		}
	}
	return nil
}

type formError string

func (e formError) Error() string { return string(e) }

const errNotNumeric = formError("digits only")

// SetFieldValue sets the value of a field. For select fields the value must
// be one of the options.
func (f *Form) SetFieldValue(name, value string) *Form {
	field := f.field(name)
	if field == nil {
		return f
	}
	if field.Type == FieldTypeSelect {
		for i, opt := range field.Options {
			if opt == value {
				field.selectedIdx = i
				field.Value = value
			}
		}
		return f
	}
	field.Value = value
	field.textInput.SetValue(value)
	return f
}

// SetFieldOptions sets options for select fields
func (f *Form) SetFieldOptions(name string, options []string) *Form {
	field := f.field(name)
	if field == nil || field.Type != FieldTypeSelect {
		return f
	}
	field.Options = options
	field.selectedIdx = 0
	field.Value = ""
	if len(options) > 0 {
		field.Value = options[0]
	}
	return f
}

// SetFieldValidation sets a validation function for a field
func (f *Form) SetFieldValidation(name string, validation func(string) error) *Form {
	if field := f.field(name); field != nil {
		field.Validation = validation
	}
	return f
}

// SetWidth sets the form width
func (f *Form) SetWidth(width int) *Form {
	f.width = width
	inputWidth := width - 4
	if inputWidth > 10 {
		for i := range f.fields {
			f.fields[i].textInput.Width = inputWidth
		}
	}
	return f
}

// Focus gives keyboard focus to the current field.
func (f *Form) Focus() tea.Cmd {
	f.focused = true
	if len(f.fields) == 0 {
		return nil
	}
	return f.fields[f.focusIndex].textInput.Focus()
}

// Blur removes keyboard focus.
func (f *Form) Blur() {
	f.focused = false
	for i := range f.fields {
		f.fields[i].textInput.Blur()
	}
}

func (f *Form) Focused() bool {
	return f.focused
}

// Update handles form input while focused.
func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	if len(f.fields) == 0 || !f.focused {
		return f, nil
	}

	field := &f.fields[f.focusIndex]
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down":
			return f, f.moveFocus(1)
		case "shift+tab", "up":
			return f, f.moveFocus(-1)
		case "left":
			if field.Type == FieldTypeSelect {
				f.cycleOption(field, -1)
				return f, nil
			}
		case "right":
			if field.Type == FieldTypeSelect {
				f.cycleOption(field, 1)
				return f, nil
			}
		}
	}

	if field.Type == FieldTypeSelect {
		return f, nil
	}

	var cmd tea.Cmd
	field.textInput, cmd = field.textInput.Update(msg)
	field.Value = field.textInput.Value()
	field.Error = ""
	return f, cmd
}

// View renders the form
func (f *Form) View() string {
	if len(f.fields) == 0 {
		return "No fields defined"
	}

	var content strings.Builder
	for i, field := range f.fields {
		label := field.Label
		if field.Required {
			label += " *"
		}
		content.WriteString(f.labelStyle.Render(label))
		content.WriteString("\n")

		fieldStyle := f.inputStyle
		if f.focused && i == f.focusIndex {
			fieldStyle = f.focusedStyle
		}

		switch field.Type {
		case FieldTypeSelect:
			text := field.Value
			if f.focused && i == f.focusIndex {
				text = "◀ " + text + " ▶"
			}
			content.WriteString(fieldStyle.Render(text))
		default:
			content.WriteString(fieldStyle.Render(field.textInput.View()))
		}
		content.WriteString("\n")

		if field.Error != "" {
			content.WriteString(f.errorStyle.Render("⚠ " + field.Error))
			content.WriteString("\n")
		}
	}

	return strings.TrimRight(content.String(), "\n")
}

func (f *Form) moveFocus(delta int) tea.Cmd {
	f.fields[f.focusIndex].textInput.Blur()
	f.focusIndex = (f.focusIndex + delta + len(f.fields)) % len(f.fields)
	if f.fields[f.focusIndex].Type == FieldTypeSelect {
		return nil
	}
	return f.fields[f.focusIndex].textInput.Focus()
}

// Cycle moves a select field by delta options.
func (f *Form) Cycle(name string, delta int) {
	if field := f.field(name); field != nil && field.Type == FieldTypeSelect {
		f.cycleOption(field, delta)
	}
}

func (f *Form) cycleOption(field *FormField, delta int) {
	if len(field.Options) == 0 {
		return
	}
	field.selectedIdx = (field.selectedIdx + delta + len(field.Options)) % len(field.Options)
	field.Value = field.Options[field.selectedIdx]
}

// Validate validates all form fields
func (f *Form) Validate() bool {
	valid := true
	for i := range f.fields {
		field := &f.fields[i]
		field.Error = ""

		if field.Required && strings.TrimSpace(field.Value) == "" {
			field.Error = "This field is required"
			valid = false
			continue
		}
		if field.Validation != nil {
			if err := field.Validation(field.Value); err != nil {
				field.Error = err.Error()
				valid = false
			}
		}
	}
	return valid
}

// GetValue returns the value of a specific field
func (f *Form) GetValue(name string) string {
	if field := f.field(name); field != nil {
		return field.Value
	}
	return ""
}

// SelectedIndex is the option index of a select field.
func (f *Form) SelectedIndex(name string) int {
	if field := f.field(name); field != nil {
		return field.selectedIdx
	}
	return -1
}

func (f *Form) field(name string) *FormField {
	for i := range f.fields {
		if f.fields[i].Name == name {
			return &f.fields[i]
		}
	}
	return nil
}
