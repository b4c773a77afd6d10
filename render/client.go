// Package render talks to the external rendering service that turns an
// HTML card into a PNG. Failures here are recoverable: callers degrade
// to composed-text payloads.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bvzrays/astrbot-plugin-liuyan/internal/fsstore"
	"github.com/bvzrays/astrbot-plugin-liuyan/relay"
)

type Client struct {
	http     *http.Client
	endpoint string
	outDir   string
}

type renderOptions struct {
	Type           string `json:"type"`
	OmitBackground bool   `json:"omit_background"`
	FullPage       bool   `json:"full_page"`
}

type renderRequest struct {
	Template string        `json:"template"`
	Options  renderOptions `json:"options"`
}

func NewClient(httpClient *http.Client, endpoint, outDir string) (*Client, error) {
	endpoint = strings.TrimSpace(strings.TrimRight(endpoint, "/"))
	if endpoint == "" {
		return nil, fmt.Errorf("render endpoint is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	outDir = strings.TrimSpace(outDir)
	if outDir == "" {
		return nil, fmt.Errorf("render output dir is required")
	}
	return &Client{http: httpClient, endpoint: endpoint, outDir: outDir}, nil
}

func (c *Client) RenderNoteCard(ctx context.Context, data relay.NoteData) (string, error) {
	groupID := strings.TrimSpace(data.GroupID)
	if groupID == "" {
		groupID = "私聊"
	}
	tmpl := fillTemplate(noteCardTemplate, map[string]string{
		"ticket":      data.Ticket,
		"platform":    data.Platform,
		"group_id":    groupID,
		"sender_name": data.SenderName,
		"sender_id":   data.SenderID,
		"content":     data.Content,
	})
	return c.render(ctx, tmpl)
}

func (c *Client) RenderReplyCard(ctx context.Context, data relay.ReplyData) (string, error) {
	tmpl := fillTemplate(replyCardTemplate, map[string]string{
		"ticket":      data.Ticket,
		"sender_name": data.SenderName,
		"sender_id":   data.SenderID,
		"content":     data.Content,
	})
	return c.render(ctx, tmpl)
}

// render posts the filled template and writes the returned PNG under
// the output dir, returning its path.
func (c *Client) render(ctx context.Context, template string) (string, error) {
	bodyRaw, err := json.Marshal(renderRequest{
		Template: template,
		Options: renderOptions{
			Type:           "png",
			OmitBackground: true,
			FullPage:       true,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/render", bytes.NewReader(bodyRaw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("render request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("render service http %d", resp.StatusCode)
	}
	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read render response: %w", err)
	}
	if len(image) == 0 {
		return "", fmt.Errorf("render service returned an empty image")
	}

	path := filepath.Join(c.outDir, "card_"+uuid.NewString()+".png")
	if err := fsstore.WriteBytesAtomic(path, image, fsstore.FileOptions{}); err != nil {
		return "", err
	}
	return path, nil
}

// fillTemplate substitutes "{{ key }}" placeholders, escaping values so
// user content cannot inject markup into the card.
func fillTemplate(template string, values map[string]string) string {
	out := template
	for key, value := range values {
		out = strings.ReplaceAll(out, "{{ "+key+" }}", html.EscapeString(value))
	}
	return out
}
