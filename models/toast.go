package models

type ToastLevel string

const (
	ToastSuccess ToastLevel = "success"
	ToastInfo    ToastLevel = "info"
	ToastError   ToastLevel = "error"
)

// Toast is a transient user notification.
type Toast struct {
	Level   ToastLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message,omitempty"`
}
