package logging

import "log/slog"

// SessionInfo is the live state stamped onto every record.
type SessionInfo struct {
	SessionID string
	Tick      uint64
	Level     int
}

// SessionContext returns a ContextProvider reading from get. Empty session
// IDs are omitted so records logged before a session starts stay clean.
func SessionContext(get func() SessionInfo) ContextProvider {
	return func() []slog.Attr {
		info := get()
		if info.SessionID == "" {
			return nil
		}
		return []slog.Attr{
			slog.String("session", info.SessionID),
			slog.Uint64("tick", info.Tick),
			slog.Int("difficulty", info.Level),
		}
	}
}
