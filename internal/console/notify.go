package console

import "log/slog"

// Notification kinds.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notifier surfaces transient user-facing notices. The UI supplies the real
// implementation; LogNotifier is the fallback.
type Notifier interface {
	Notify(kind, message string)
}

// LogNotifier writes notices to the logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs the notice.
func (n LogNotifier) Notify(kind, message string) {
	if n.Logger == nil {
		return
	}
	if kind == NoticeError {
		n.Logger.Warn("notice", slog.String("message", message))
		return
	}
	n.Logger.Info("notice", slog.String("message", message))
}

// NopNotifier discards notices.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(kind, message string) {}
