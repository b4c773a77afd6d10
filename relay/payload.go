package relay

import (
	"fmt"
	"strings"
)

const dividerLine = "────────────────────────────────────────"

// NoteData is the record a submitted note is rendered from, either as
// an image card or as composed text.
type NoteData struct {
	Ticket     string
	Platform   string
	GroupID    string
	SenderName string
	SenderID   string
	Content    string
}

// ReplyData is the record an operator reply is rendered from.
type ReplyData struct {
	Ticket     string
	SenderName string
	SenderID   string
	Content    string
}

// Payload is what the delivery engine ships to one destination: text
// before the images, the images themselves (local paths or URLs), and
// text after. Rendered-card payloads carry only images; composed-text
// payloads keep the header/body in Before and the usage footer in
// After so the inline images land between them.
type Payload struct {
	Before string
	Images []string
	After  string
}

func (p Payload) IsEmpty() bool {
	return strings.TrimSpace(p.Before) == "" && strings.TrimSpace(p.After) == "" && len(p.Images) == 0
}

// PlainText flattens the payload for transports without inline media:
// image references are listed between the two text parts.
func (p Payload) PlainText() string {
	parts := make([]string, 0, 3)
	if s := strings.TrimSpace(p.Before); s != "" {
		parts = append(parts, s)
	}
	for _, img := range p.Images {
		parts = append(parts, fmt.Sprintf("[图片] %s", img))
	}
	if s := strings.TrimSpace(p.After); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n")
}

func ImagePayload(paths ...string) Payload {
	images := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) != "" {
			images = append(images, p)
		}
	}
	return Payload{Images: images}
}

// NoteTextPayload composes the forwarded-note text layout. The footer
// carries the reply usage hint; inbound images slot between body and
// footer.
func NoteTextPayload(data NoteData, images []string) Payload {
	groupID := strings.TrimSpace(data.GroupID)
	if groupID == "" {
		groupID = "私聊"
	}
	before := strings.Join([]string{
		fmt.Sprintf("[留言工单] %s", data.Ticket),
		dividerLine,
		fmt.Sprintf("来源平台：%s", data.Platform),
		fmt.Sprintf("来源群号：%s", groupID),
		fmt.Sprintf("来源用户：%s (%s)", data.SenderName, data.SenderID),
		dividerLine,
		"内容：",
		data.Content,
		dividerLine,
	}, "\n")
	return Payload{
		Before: before,
		Images: images,
		After:  fmt.Sprintf("使用 /回复 %s 内容 进行回复", data.Ticket),
	}
}

// ReplyTextPayload composes the reply routed back to the note's origin.
func ReplyTextPayload(data ReplyData) Payload {
	return Payload{
		Before: strings.Join([]string{
			fmt.Sprintf("[留言回复] 工单 %s", data.Ticket),
			dividerLine,
			fmt.Sprintf("回复给：%s (%s)", data.SenderName, data.SenderID),
			dividerLine,
			"内容：",
			data.Content,
		}, "\n"),
	}
}
