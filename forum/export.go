package forum

import (
	"context"
	"strings"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// ExportXML renders log entries as the activity-log XML document. Details
// are not included in the export. Text values are escaped, so a username
// containing markup cannot break the document.
func ExportXML(entries []LogEntry) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<logs>\n")
	frags := make([]string, len(entries))
	for i, e := range entries {
		frags[i] = "  <log>\n" +
			"    <time>" + xmlEscaper.Replace(e.Time) + "</time>\n" +
			"    <username>" + xmlEscaper.Replace(e.Username) + "</username>\n" +
			"    <action>" + xmlEscaper.Replace(e.Action) + "</action>\n" +
			"  </log>"
	}
	b.WriteString(strings.Join(frags, "\n"))
	b.WriteString("\n</logs>")
	return b.String()
}

// ExportLogsXML loads log entries, optionally filtered by username, and
// renders them as XML.
func (s *Service) ExportLogsXML(ctx context.Context, username string) (string, error) {
	logs, err := s.loadLogs(ctx, username)
	if err != nil {
		return "", err
	}
	return ExportXML(logs), nil
}
