package forum

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
)

// LogAction appends an entry to the activity log. Unlike the other
// operations it is synchronous: no simulated latency is applied. It is
// called internally by every mutating operation and can be invoked directly.
func (s *Service) LogAction(ctx context.Context, username, action string, details map[string]any) error {
	return s.appendLog(ctx, username, action, details)
}

// logAction is the internal best-effort variant. A mutation that succeeded
// is not failed retroactively because its audit entry could not be written.
func (s *Service) logAction(ctx context.Context, username, action string, details map[string]any) {
	if err := s.appendLog(ctx, username, action, details); err != nil {
		log.Error("failed to record action", "username", username, "action", action, "error", err)
	}
}

func (s *Service) appendLog(ctx context.Context, username, action string, details map[string]any) error {
	logs, err := loadList[LogEntry](ctx, s, keyLogs)
	if err != nil {
		return err
	}
	if details == nil {
		details = map[string]any{}
	}
	logs = append(logs, LogEntry{
		Username: username,
		Action:   action,
		Details:  details,
		Time:     s.timestamp(),
	})
	return saveList(ctx, s, keyLogs, logs)
}

// Logs returns all log entries, or only those of the given username.
func (s *Service) Logs(ctx context.Context, username string) ([]LogEntry, error) {
	entries, err := s.loadLogs(ctx, username)
	return delayed(ctx, s, entries, err)
}

func (s *Service) loadLogs(ctx context.Context, username string) ([]LogEntry, error) {
	logs, err := loadList[LogEntry](ctx, s, keyLogs)
	if err != nil {
		return nil, err
	}
	if username == "" {
		return logs, nil
	}
	return lo.Filter(logs, func(l LogEntry, _ int) bool { return l.Username == username }), nil
}
