package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/concierge.txt
	conciergeRaw string

	//go:embed template/vision.txt
	visionRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Concierge string
	Vision    string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Concierge: strings.TrimSpace(conciergeRaw),
		Vision:    strings.TrimSpace(visionRaw),
	}
}
