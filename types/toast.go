package types

import "time"

type Icon string

const (
	IconSuccess Icon = "success"
	IconError   Icon = "error"
	IconInfo    Icon = "info"
	IconWarning Icon = "warning"
)

func (i Icon) String() string {
	return string(i)
}

// ToastMessage is one transient notification shown to the user.
type ToastMessage struct {
	ID          string    `json:"id,omitempty"`
	Heading     string    `json:"heading"`
	Body        string    `json:"body,omitempty"`
	Icon        Icon      `json:"icon"`
	AutoDismiss bool      `json:"auto_dismiss"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// SuccessToast is the short-lived toast shown after a successful call.
func SuccessToast(heading string) ToastMessage {
	return ToastMessage{Heading: heading, Icon: IconSuccess, AutoDismiss: true}
}

// ErrorToast stays on screen until dismissed.
func ErrorToast(heading, body string) ToastMessage {
	return ToastMessage{Heading: heading, Body: body, Icon: IconError}
}
