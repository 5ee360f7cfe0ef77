package scoring

import (
	"strings"

	domsvc "AraDetector/internal/domain/service"
)

// SubstringClassifier treats a status as accumulation when it contains Needle, case-insensitively.
// The zero value matches "accum".
type SubstringClassifier struct {
	Needle string
}

func (c SubstringClassifier) IsAccumulation(status string) bool {
	needle := c.Needle
	if needle == "" {
		needle = "accum"
	}
	return strings.Contains(strings.ToLower(status), strings.ToLower(needle))
}

var _ domsvc.StatusClassifier = SubstringClassifier{}
