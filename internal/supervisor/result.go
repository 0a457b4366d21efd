package supervisor

import (
	"strings"
	"time"
)

// ErrorKind classifies supervised-execution failures.
type ErrorKind string

const (
	// KindNone marks a result that is not a supervisor-level failure.
	KindNone ErrorKind = ""
	// KindExecutableNotFound means no process was ever created because
	// the command does not exist.
	KindExecutableNotFound ErrorKind = "executable_not_found"
	// KindSpawn means the OS refused to start the process.
	KindSpawn ErrorKind = "spawn_error"
	// KindTimeout means the deadline elapsed and the process was killed.
	KindTimeout ErrorKind = "timeout"
	// KindUnparsableOutput means the process completed but its primary
	// output was not valid JSON.
	KindUnparsableOutput ErrorKind = "unparsable_output"
)

// ProgressMarker tags diagnostic lines the external tool narrates for
// the caller. Marked lines are unwrapped; everything else is kept
// verbatim.
const ProgressMarker = "##[progress]"

// ProgressLine is one diagnostic-channel line, in emission order.
type ProgressLine struct {
	Text     string `json:"text"`
	Narrated bool   `json:"narrated"`
}

func tagLine(line string) ProgressLine {
	if rest, ok := strings.CutPrefix(line, ProgressMarker); ok {
		return ProgressLine{Text: strings.TrimPrefix(rest, " "), Narrated: true}
	}
	return ProgressLine{Text: line}
}

// Invocation describes one supervised run. Ephemeral; built per call.
type Invocation struct {
	Command string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// Result is the single, immutable outcome of an invocation.
type Result struct {
	Success  bool
	Payload  map[string]any
	RawText  string
	Progress []ProgressLine
	Elapsed  time.Duration
	ExitCode int
	Kind     ErrorKind
	Message  string
}

// Failed reports whether the run failed at the supervisor level.
func (r *Result) Failed() bool {
	return r.Kind != KindNone
}

// NarratedProgress returns only the narrated lines, unwrapped.
func (r *Result) NarratedProgress() []string {
	var out []string
	for _, line := range r.Progress {
		if line.Narrated {
			out = append(out, line.Text)
		}
	}
	return out
}

// ErrorMessage extracts the tool-reported error, falling back to the
// supervisor message.
func (r *Result) ErrorMessage() string {
	if r.Payload != nil {
		if msg, ok := r.Payload["errorMessage"].(string); ok && msg != "" {
			return msg
		}
	}
	return r.Message
}
