// Package keyboard defines inline keyboards and the callback payloads they carry.
package keyboard

// Callback payloads understood by the callback router.
const (
	PayloadEmpty        = "empty"
	PayloadNext         = "next"
	PayloadPrevious     = "previous"
	PayloadNextNote     = "nextnote"
	PayloadPreviousNote = "previousnote"
)

// DateLayout is the wire format of a date payload.
const DateLayout = "2006-01-02"

// Button is an inline keyboard button carrying a callback payload.
type Button struct {
	Text string `json:"text"`
	Data string `json:"callback_data"`
}

// Keyboard is an ordered list of button rows.
type Keyboard [][]Button

// Noop returns a button that does nothing when pressed.
func Noop(text string) Button {
	return Button{Text: text, Data: PayloadEmpty}
}
