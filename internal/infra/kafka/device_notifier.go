package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
)

const (
	deviceCommandShow       = "show_notification"
	deviceCommandOpenWindow = "open_window"
	deviceCommandClose      = "close_notification"
)

type deviceCommand struct {
	Type         string               `json:"type"`
	UserID       string               `json:"user_id"`
	Notification *domain.Notification `json:"notification,omitempty"`
	URL          string               `json:"url,omitempty"`
	Tag          string               `json:"tag,omitempty"`
}

// DeviceNotifier sends rendering commands to the device agents on the device topic.
// Commands are keyed by recipient: device agents only act on their signed-in user's commands,
// and one user's commands keep their order.
type DeviceNotifier struct {
	producer *Producer
	topic    string
}

// NewDeviceNotifier constructs a notifier writing to the given device topic.
func NewDeviceNotifier(producer *Producer, deviceTopic string) *DeviceNotifier {
	return &DeviceNotifier{producer: producer, topic: producer.TopicName(deviceTopic)}
}

// ShowNotification asks the recipient's devices to display an OS-level notification.
func (n *DeviceNotifier) ShowNotification(ctx context.Context, notification domain.Notification) error {
	return n.send(ctx, deviceCommand{Type: deviceCommandShow, UserID: notification.UserID, Notification: &notification})
}

// CloseNotification dismisses the notification displayed under tag on the user's devices.
func (n *DeviceNotifier) CloseNotification(ctx context.Context, userID, tag string) error {
	return n.send(ctx, deviceCommand{Type: deviceCommandClose, UserID: userID, Tag: tag})
}

// OpenWindow asks the user's devices to open a new application window at url.
func (n *DeviceNotifier) OpenWindow(ctx context.Context, userID, url string) error {
	return n.send(ctx, deviceCommand{Type: deviceCommandOpenWindow, UserID: userID, URL: url})
}

func (n *DeviceNotifier) send(ctx context.Context, cmd deviceCommand) error {
	if cmd.UserID == "" {
		return fmt.Errorf("device command %s has no recipient", cmd.Type)
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal device command: %w", err)
	}
	if err := n.producer.Send(ctx, n.topic, cmd.UserID, payload); err != nil {
		return fmt.Errorf("send device command: %w", err)
	}
	return nil
}
