package render

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/bvzrays/astrbot-plugin-liuyan/relay"
)

func TestFillTemplateEscapesValues(t *testing.T) {
	got := fillTemplate("<b>{{ content }}</b>", map[string]string{"content": `<script>"x"</script>`})
	if strings.Contains(got, "<script>") {
		t.Fatalf("fillTemplate did not escape markup: %s", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Fatalf("fillTemplate output = %s", got)
	}
}

func TestRenderNoteCardWritesImage(t *testing.T) {
	var gotReq renderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/render" {
			t.Errorf("path = %q", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotReq); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		_, _ = w.Write([]byte("\x89PNG fake image bytes"))
	}))
	defer srv.Close()

	client, err := NewClient(srv.Client(), srv.URL, t.TempDir())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	path, err := client.RenderNoteCard(context.Background(), relay.NoteData{
		Ticket:     "ab12cd34",
		Platform:   "aiocqhttp",
		SenderName: "alice",
		SenderID:   "10001",
		Content:    "机器人坏了",
	})
	if err != nil {
		t.Fatalf("RenderNoteCard() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("rendered image not written: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("rendered image empty")
	}

	if gotReq.Options.Type != "png" || !gotReq.Options.FullPage || !gotReq.Options.OmitBackground {
		t.Fatalf("render options = %+v", gotReq.Options)
	}
	if !strings.Contains(gotReq.Template, "ab12cd34") {
		t.Fatalf("template placeholders not filled")
	}
	if !strings.Contains(gotReq.Template, "来源群号：</span>私聊") {
		t.Fatalf("empty group id not replaced with 私聊")
	}
}

func TestRenderPropagatesServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(srv.Client(), srv.URL, t.TempDir())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := client.RenderReplyCard(context.Background(), relay.ReplyData{Ticket: "ab12cd34"}); err == nil {
		t.Fatalf("RenderReplyCard() error = nil, want error on http 502")
	}
}
