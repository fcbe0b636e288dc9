package notifier

import (
	"context"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest = "org.freedesktop.Notifications"
	notifyPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyCall = "org.freedesktop.Notifications.Notify"
)

// Message is one org.freedesktop.Notifications.Notify request
type Message struct {
	AppName    string
	ReplacesID uint32
	Icon       string
	Summary    string
	Body       string
	TimeoutMS  int32
}

// Bus abstracts the notification daemon so tests can stand in for D-Bus
type Bus interface {
	// Notify shows or replaces a notification and returns its id
	Notify(ctx context.Context, msg Message) (uint32, error)
	Close() error
}

// SessionBus sends notifications over a private session bus connection
type SessionBus struct {
	conn *dbus.Conn
}

func NewSessionBus() (*SessionBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return &SessionBus{conn: conn}, nil
}

func (b *SessionBus) Notify(ctx context.Context, msg Message) (uint32, error) {
	obj := b.conn.Object(notifyDest, notifyPath)
	call := obj.CallWithContext(ctx, notifyCall, 0,
		msg.AppName,
		msg.ReplacesID,
		msg.Icon,
		msg.Summary,
		msg.Body,
		[]string{},
		map[string]dbus.Variant{"category": dbus.MakeVariant("x-ytpresence.nowplaying")},
		msg.TimeoutMS,
	)

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (b *SessionBus) Close() error {
	return b.conn.Close()
}
