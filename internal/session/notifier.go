package session

import "nc-param-manager/internal/common/logger"

// Notifier receives the short user-facing messages a session emits after
// mutations: preset saved, calculation failed and so on.
type Notifier interface {
	Success(msg string)
	Warning(msg string)
	Error(msg string)
}

// LogNotifier writes notifications through a logger.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.Named("notify")}
}

func (n *LogNotifier) Success(msg string) { n.log.Info(msg, nil) }
func (n *LogNotifier) Warning(msg string) { n.log.Warn(msg, nil) }
func (n *LogNotifier) Error(msg string)   { n.log.Error(msg, nil) }
