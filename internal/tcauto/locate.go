package tcauto

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrExecutableNotFound = errors.New("tcauto: TcAutomation.exe not found")

// DefaultCandidates returns the built-in probe order, anchored at the
// server binary's directory. Release builds are preferred over Debug,
// current layouts over legacy ones.
func DefaultCandidates() []string {
	base := "."
	if exe, err := os.Executable(); err == nil {
		base = filepath.Dir(exe)
	}
	return []string{
		filepath.Join(base, "..", "TcAutomation", "bin", "Release", "TcAutomation.exe"),
		filepath.Join(base, "..", "TcAutomation", "bin", "Debug", "TcAutomation.exe"),
		filepath.Join(base, "..", "TcAutomation", "bin", "Release", "net8.0-windows", "TcAutomation.exe"),
		filepath.Join(base, "..", "TcAutomation", "publish", "TcAutomation.exe"),
	}
}

// Locator probes candidate executable paths in order.
type Locator struct {
	candidates []string
}

func NewLocator(candidates []string) *Locator {
	if len(candidates) == 0 {
		candidates = DefaultCandidates()
	}
	return &Locator{candidates: candidates}
}

// Find returns the first existing candidate. The not-found error
// names every probed path so the operator can fix the install.
func (l *Locator) Find() (string, error) {
	for _, candidate := range l.candidates {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		return candidate, nil
	}
	var sb strings.Builder
	for _, candidate := range l.candidates {
		sb.WriteString("\n  - ")
		sb.WriteString(candidate)
	}
	return "", fmt.Errorf("%w; searched paths:%s\nbuild the TcAutomation project first", ErrExecutableNotFound, sb.String())
}

// Candidates returns the probe order, for logging.
func (l *Locator) Candidates() []string {
	return append([]string(nil), l.candidates...)
}
