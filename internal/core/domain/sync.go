package domain

import "time"

// SyncState is the per-session synchronisation status exposed to the UI.
type SyncState struct {
	IsOnline  bool       `json:"isOnline"`
	IsSyncing bool       `json:"isSyncing"`
	LastSync  *time.Time `json:"lastSync"`
	SyncError *string    `json:"syncError"`
}

// SyncReport summarises one reconciliation pass.
type SyncReport struct {
	Applied int
	Dropped int
}

// ToastType classifies transient UI feedback.
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
)

// Toast is a fire-and-forget user notification.
type Toast struct {
	UserID  string    `json:"user_id"`
	Type    ToastType `json:"type"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
}
