package session

// State 是编辑会话的状态
type State int

const (
	Created State = iota
	Materialized
	EditorRunning
	Unchanged
	ParseFailed
	Parsed
	Saved
	Abandoned
	Failed
)

var stateNames = [...]string{
	Created:       "created",
	Materialized:  "materialized",
	EditorRunning: "editor-running",
	Unchanged:     "unchanged",
	ParseFailed:   "parse-failed",
	Parsed:        "parsed",
	Saved:         "saved",
	Abandoned:     "abandoned",
	Failed:        "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal 判断是否为终止状态
func (s State) Terminal() bool {
	switch s {
	case Unchanged, Saved, Abandoned, Failed:
		return true
	}
	return false
}
