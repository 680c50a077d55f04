package notes

import (
	"fmt"
	"strings"
)

// Utterance is one speaker turn in a transcript.
type Utterance struct {
	Source  string `json:"source,omitempty"`
	Speaker string `json:"speaker,omitempty"`
	Text    string `json:"text"`
}

// SpeakerName resolves source, then speaker, then "Unknown".
func (u Utterance) SpeakerName() string {
	if u.Source != "" {
		return u.Source
	}
	if u.Speaker != "" {
		return u.Speaker
	}
	return "Unknown"
}

// FormatTranscript renders utterances as "[speaker]: text" lines, dropping
// blank ones.
func FormatTranscript(utterances []Utterance) string {
	var lines []string
	for _, u := range utterances {
		text := strings.TrimSpace(u.Text)
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s]: %s", u.SpeakerName(), text))
	}
	return strings.Join(lines, "\n")
}
