package main

import (
	"context"
	"strings"
	"sync"

	"remindme/internal/notify"
)

type noticeKind int

const (
	noticeAlert noticeKind = iota
	noticeNotification
)

type notice struct {
	kind    noticeKind
	title   string
	message string
}

// inbox collects alerts and due notifications from any goroutine. Update
// drains it, so nothing running on the event loop has to call Program.Send.
type inbox struct {
	mu    sync.Mutex
	items []notice
}

func (b *inbox) Alert(title, message string) {
	b.push(notice{kind: noticeAlert, title: title, message: message})
}

// Deliver is the on-screen notification channel.
func (b *inbox) Deliver(_ context.Context, n notify.Notification) error {
	b.push(notice{kind: noticeNotification, title: n.Title, message: n.Body})
	return nil
}

func (b *inbox) push(n notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
}

func (b *inbox) drain() []notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	return out
}

func (n notice) color() string {
	switch {
	case n.kind == noticeNotification:
		return colorWarn
	case strings.Contains(n.title, "Error"):
		return colorError
	case n.title == "Reminder Set!":
		return colorOK
	default:
		return colorInfo
	}
}

func (n notice) String() string {
	prefix := ""
	switch {
	case n.kind == noticeNotification:
		prefix = "🔔 "
	case strings.Contains(n.title, "Error"):
		prefix = "❌ "
	case n.title == "Reminder Set!":
		prefix = "✅ "
	}
	return prefix + n.title + ": " + n.message
}
