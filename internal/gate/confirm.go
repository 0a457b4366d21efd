package gate

import (
	"crypto/subtle"
	"fmt"
)

// Confirmer checks the confirmation phrase for tools destructive
// enough to need per-call friction. Independent of armed state.
type Confirmer struct {
	phrase   string
	required map[string]bool
}

func NewConfirmer(phrase string, required map[string]bool) *Confirmer {
	req := make(map[string]bool, len(required))
	for tool, v := range required {
		if v {
			req[tool] = true
		}
	}
	return &Confirmer{phrase: phrase, required: req}
}

// Check reports whether the call may proceed. The phrase comparison is
// exact: case-sensitive and untrimmed. The friction is intentional.
func (c *Confirmer) Check(tool, supplied string) (bool, string) {
	if !c.required[tool] {
		return true, ""
	}
	if subtle.ConstantTimeCompare([]byte(c.phrase), []byte(supplied)) == 1 {
		return true, ""
	}
	return false, fmt.Sprintf(
		"%s is a destructive operation and requires per-call confirmation: retry with confirm=%q (exact match, case-sensitive)",
		tool, c.phrase,
	)
}

// Requires reports whether a tool is in the confirmation-required set.
func (c *Confirmer) Requires(tool string) bool {
	return c.required[tool]
}
