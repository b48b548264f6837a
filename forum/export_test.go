package forum

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agorabbs/agora/config"
	"github.com/agorabbs/agora/store"
)

func TestExportXML(t *testing.T) {
	tests := []struct {
		name    string
		entries []LogEntry
		want    string
	}{
		{
			name:    "empty",
			entries: nil,
			want:    "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<logs>\n\n</logs>",
		},
		{
			name: "single entry",
			entries: []LogEntry{
				{Username: "alice", Action: "login", Time: "2024-01-01T00:00:00.000Z"},
			},
			want: "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<logs>\n" +
				"  <log>\n" +
				"    <time>2024-01-01T00:00:00.000Z</time>\n" +
				"    <username>alice</username>\n" +
				"    <action>login</action>\n" +
				"  </log>\n" +
				"</logs>",
		},
		{
			name: "multiple entries",
			entries: []LogEntry{
				{Username: "alice", Action: "login", Time: "2024-01-01T00:00:00.000Z"},
				{Username: "bob", Action: "register", Time: "2024-01-02T00:00:00.000Z"},
			},
			want: "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<logs>\n" +
				"  <log>\n" +
				"    <time>2024-01-01T00:00:00.000Z</time>\n" +
				"    <username>alice</username>\n" +
				"    <action>login</action>\n" +
				"  </log>\n" +
				"  <log>\n" +
				"    <time>2024-01-02T00:00:00.000Z</time>\n" +
				"    <username>bob</username>\n" +
				"    <action>register</action>\n" +
				"  </log>\n" +
				"</logs>",
		},
		{
			name: "markup in values is escaped",
			entries: []LogEntry{
				{Username: "<script>&", Action: "login", Time: "2024-01-01T00:00:00.000Z"},
			},
			want: "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<logs>\n" +
				"  <log>\n" +
				"    <time>2024-01-01T00:00:00.000Z</time>\n" +
				"    <username>&lt;script&gt;&amp;</username>\n" +
				"    <action>login</action>\n" +
				"  </log>\n" +
				"</logs>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExportXML(tt.entries))
		})
	}
}

func TestExportLogsXML(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := New(store.NewMemoryStore(), &config.Config{}, WithClock(func() time.Time { return fixed }))

	require.NoError(t, svc.LogAction(ctx, "alice", "login", nil))
	require.NoError(t, svc.LogAction(ctx, "bob", "register", nil))

	out, err := svc.ExportLogsXML(ctx, "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "<username>alice</username>")
	assert.NotContains(t, out, "<username>bob</username>")
	assert.Contains(t, out, "<time>2024-01-01T00:00:00.000Z</time>")

	// details never appear in the export
	require.NoError(t, svc.LogAction(ctx, "alice", "create_topic", map[string]any{"title": "secret"}))
	out, err = svc.ExportLogsXML(ctx, "")
	require.NoError(t, err)
	assert.NotContains(t, out, "secret")
}
