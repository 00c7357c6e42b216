package session

// CommandKind enumerates the closed set of commands the UI can issue.
type CommandKind int

const (
	CmdRerunAll CommandKind = iota
	CmdRerunFailed
	CmdRerunSelected
	CmdStop
	CmdQuit
	CmdToggleSelection
)

// Command is one keyboard-driven action, applied sequentially to the
// session.
type Command struct {
	Kind   CommandKind
	NodeID string // CmdToggleSelection only
}
