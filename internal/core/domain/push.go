package domain

import "time"

// PushNotificationPayload is the optional notification section of a push message.
type PushNotificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon"`
}

// PushMessage is a structured message delivered by the push channel to one recipient.
type PushMessage struct {
	UserID       string                   `json:"user_id"`
	Notification *PushNotificationPayload `json:"notification,omitempty"`
	Data         map[string]string        `json:"data,omitempty"`
}

// NotificationAction is a button rendered on an OS notification.
type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// Notification is the OS-level notification rendered by the push bridge.
type Notification struct {
	ID                 string               `json:"id"`
	UserID             string               `json:"user_id"`
	Title              string               `json:"title"`
	Body               string               `json:"body"`
	Icon               string               `json:"icon"`
	Badge              string               `json:"badge,omitempty"`
	Tag                string               `json:"tag"`
	Renotify           bool                 `json:"renotify"`
	RequireInteraction bool                 `json:"requireInteraction"`
	Vibrate            []int                `json:"vibrate"`
	Actions            []NotificationAction `json:"actions"`
	Data               map[string]string    `json:"data,omitempty"`
	Timestamp          time.Time            `json:"timestamp"`
}

// NotificationEventKind distinguishes user interactions reported back by a device.
type NotificationEventKind string

const (
	NotificationEventClick NotificationEventKind = "click"
	NotificationEventClose NotificationEventKind = "close"
)

// NotificationEvent is a click or close on a rendered notification, reported by the recipient's device.
type NotificationEvent struct {
	UserID       string                `json:"user_id"`
	Kind         NotificationEventKind `json:"kind"`
	Action       string                `json:"action,omitempty"`
	Notification Notification          `json:"notification"`
}

// ClientWindow is an open application window known to the push bridge.
type ClientWindow struct {
	ID      string
	UserID  string
	URL     string
	Focused bool
}
