package onebot

import (
	"path/filepath"
	"strings"
)

// Segment is one element of a OneBot v11 message array.
type Segment struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func TextSegment(text string) Segment {
	return Segment{Type: "text", Data: map[string]any{"text": text}}
}

// ImageSegment references an image by the protocol's file field. Local
// paths are converted to file:// URIs; http/https/base64 references
// pass through unchanged.
func ImageSegment(ref string) Segment {
	return Segment{Type: "image", Data: map[string]any{"file": ImageRef(ref)}}
}

func ReplySegment(messageID string) Segment {
	return Segment{Type: "reply", Data: map[string]any{"id": messageID}}
}

func AtSegment(userID string) Segment {
	return Segment{Type: "at", Data: map[string]any{"qq": userID}}
}

func ImageRef(ref string) string {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "file://") ||
		strings.HasPrefix(lower, "base64://") {
		return ref
	}
	abs, err := filepath.Abs(ref)
	if err != nil {
		abs = ref
	}
	return "file://" + filepath.ToSlash(abs)
}
