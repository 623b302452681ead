// Package dialog models confirmation steps and result notices as plain state.
//
// Asking for confirmation and reporting the outcome are separate: a Confirm
// is rendered as a page with an open dialog and resolved by the form post
// that follows it, while a Notice is queued on the session and shown once.
package dialog

type State int

const (
	Closed State = iota
	Open
	Confirmed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	default:
		return "closed"
	}
}

// Field is the form field that carries the user's answer.
const (
	Field = "confirm"
	Yes   = "yes"
	No    = "no"
)

type Confirm struct {
	State        State
	Title        string
	Text         string
	ConfirmLabel string
	CancelLabel  string
	// Action is where the answer is posted; CancelURL is where "no" leads.
	Action    string
	CancelURL string
	Fields    map[string]string
}

func NewConfirm(title, text, action string) Confirm {
	return Confirm{
		State:        Open,
		Title:        title,
		Text:         text,
		ConfirmLabel: "Yes, confirm",
		CancelLabel:  "Cancel",
		Action:       action,
		Fields:       map[string]string{},
	}
}

func (c Confirm) Labels(confirm, cancel string) Confirm {
	c.ConfirmLabel = confirm
	if cancel != "" {
		c.CancelLabel = cancel
	}
	return c
}

func (c Confirm) CancelTo(url string) Confirm {
	c.CancelURL = url
	return c
}

// With carries a hidden form value through the confirmation step.
func (c Confirm) With(key, value string) Confirm {
	fields := make(map[string]string, len(c.Fields)+1)
	for k, v := range c.Fields {
		fields[k] = v
	}
	fields[key] = value
	c.Fields = fields
	return c
}

// Resolve closes an open dialog with the posted answer. Anything but "yes"
// cancels. Dialogs that are not open stay as they are.
func (c Confirm) Resolve(answer string) Confirm {
	if c.State != Open {
		return c
	}
	if answer == Yes {
		c.State = Confirmed
	} else {
		c.State = Cancelled
	}
	return c
}

func (c Confirm) IsOpen() bool      { return c.State == Open }
func (c Confirm) IsConfirmed() bool { return c.State == Confirmed }

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

type Notice struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

func Success(title, text string) Notice { return Notice{Kind: KindSuccess, Title: title, Text: text} }
func Error(title, text string) Notice   { return Notice{Kind: KindError, Title: title, Text: text} }
func Info(title, text string) Notice    { return Notice{Kind: KindInfo, Title: title, Text: text} }
func Warning(title, text string) Notice { return Notice{Kind: KindWarning, Title: title, Text: text} }
