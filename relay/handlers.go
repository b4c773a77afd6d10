package relay

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/bvzrays/astrbot-plugin-liuyan/ticket"
)

// Renderer turns a card data record into an image on disk. Nil is a
// valid renderer slot; the handlers then compose text payloads.
type Renderer interface {
	RenderNoteCard(ctx context.Context, data NoteData) (string, error)
	RenderReplyCard(ctx context.Context, data ReplyData) (string, error)
}

// Event is one inbound command invocation as seen by the handlers: the
// conversation it came from, who sent it, the argument text after the
// command word, and any images attached to the original message.
type Event struct {
	UnifiedOrigin string
	Platform      string
	SenderID      string
	SenderName    string
	GroupID       string
	GroupName     string
	Message       string
	Images        []string
}

const (
	msgNoteUsage        = "用法：/留言 你的留言内容"
	msgNoDestinations   = "未配置留言接收目标，请在配置中设置 destination_umo 或开发者/开发群列表"
	msgNoteSubmitted    = "留言已提交，工单号：%s"
	msgNoteFailed       = "留言转发失败，请稍后再试或联系管理员。"
	msgReplyUsage       = "用法：/回复 工单号 内容"
	msgBadTicket        = "工单号格式不正确，请检查后再试。"
	msgEmptyReplyBody   = "回复内容不能为空。"
	msgTicketNotFound   = "未找到该工单号，请检查后再试。"
	msgReplySent        = "已回送给留言用户。"
	msgReplyFailed      = "回复发送失败，请稍后再试。"
	msgListUnauthorized = "仅留言接收目标可查看留言列表。"
	msgListEmpty        = "当前没有未处理的留言。"
)

const listLimit = 20

// The boundaries keep a longer hex run from being truncated to its
// first 8 chars and routed to the wrong ticket.
var ticketTokenPattern = regexp.MustCompile(`(?:^|[^0-9a-f])([0-9a-f]{8})(?:[^0-9a-f]|$)`)

type Handler struct {
	cfg      Config
	store    *ticket.Store
	engine   *Engine
	renderer Renderer
	logger   *slog.Logger
}

func NewHandler(cfg Config, store *ticket.Store, engine *Engine, renderer Renderer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{cfg: cfg, store: store, engine: engine, renderer: renderer, logger: logger}
}

// HandleNote processes a 留言 command and returns the reply text for
// the submitter. The ticket stays recorded even when every destination
// fails; only the submitter's confirmation differs.
func (h *Handler) HandleNote(ctx context.Context, ev Event) string {
	content := strings.TrimSpace(ev.Message)
	if content == "" {
		return msgNoteUsage
	}

	destinations := ResolveDestinations(h.cfg, h.logger)
	if len(destinations) == 0 {
		return msgNoDestinations
	}

	ticketID := h.store.Create(ticket.Origin{
		Address:    ev.UnifiedOrigin,
		SenderID:   ev.SenderID,
		SenderName: ev.SenderName,
		GroupID:    ev.GroupID,
		Platform:   ev.Platform,
		GroupName:  ev.GroupName,
	})
	h.logger.Info("ticket_created", "ticket", ticketID, "origin", ev.UnifiedOrigin)

	data := NoteData{
		Ticket:     ticketID,
		Platform:   ev.Platform,
		GroupID:    ev.GroupID,
		SenderName: ev.SenderName,
		SenderID:   ev.SenderID,
		Content:    content,
	}
	payload := h.notePayload(ctx, data, ev.Images)

	delivered, _ := h.engine.Deliver(ctx, destinations, payload)
	if !delivered {
		h.logger.Error("note_delivery_failed", "ticket", ticketID)
		return msgNoteFailed
	}
	return fmt.Sprintf(msgNoteSubmitted, ticketID)
}

// HandleReply processes a 回复 command from an operator. The ticket
// token may sit anywhere in the text; everything after it is the body.
// The ticket is only closed once delivery back to the origin succeeded.
func (h *Handler) HandleReply(ctx context.Context, ev Event) string {
	text := strings.TrimSpace(ev.Message)
	if text == "" {
		return msgReplyUsage
	}

	loc := ticketTokenPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return msgBadTicket
	}
	ticketID := text[loc[2]:loc[3]]
	body := strings.TrimSpace(text[loc[3]:])
	if body == "" {
		return msgEmptyReplyBody
	}

	rec, ok := h.store.Lookup(ticketID)
	if !ok {
		return msgTicketNotFound
	}

	data := ReplyData{
		Ticket:     ticketID,
		SenderName: rec.SenderName,
		SenderID:   rec.SenderID,
		Content:    body,
	}
	payload := h.replyPayload(ctx, data)

	delivered, _ := h.engine.Deliver(ctx, []string{rec.OriginAddress}, payload)
	if !delivered {
		h.logger.Error("reply_delivery_failed", "ticket", ticketID, "origin", rec.OriginAddress)
		return msgReplyFailed
	}

	h.store.Close(ticketID, body)
	h.logger.Info("ticket_closed", "ticket", ticketID)
	return msgReplySent
}

// HandleList lists open tickets. Only conversations that are themselves
// configured destinations may enumerate tickets.
func (h *Handler) HandleList(_ context.Context, ev Event) string {
	destinations := ResolveDestinations(h.cfg, h.logger)
	authorized := false
	for _, dest := range destinations {
		if dest == ev.UnifiedOrigin {
			authorized = true
			break
		}
	}
	if !authorized {
		return msgListUnauthorized
	}

	open := h.store.ListOpen(listLimit)
	if len(open) == 0 {
		return msgListEmpty
	}

	var b strings.Builder
	fmt.Fprintf(&b, "未处理留言（%d）：\n", len(open))
	for _, rec := range open {
		source := rec.GroupID
		if source == "" {
			source = "私聊"
		}
		fmt.Fprintf(&b, "%s | %s (%s) | %s\n", rec.ID, rec.SenderName, rec.SenderID, source)
	}
	b.WriteString("使用 /回复 工单号 内容 进行回复")
	return b.String()
}

func (h *Handler) notePayload(ctx context.Context, data NoteData, images []string) Payload {
	if h.cfg.RenderImage && h.renderer != nil {
		path, err := h.renderer.RenderNoteCard(ctx, data)
		if err == nil {
			return ImagePayload(append([]string{path}, images...)...)
		}
		h.logger.Error("note_render_failed", "ticket", data.Ticket, "error", err.Error())
	}
	return NoteTextPayload(data, images)
}

func (h *Handler) replyPayload(ctx context.Context, data ReplyData) Payload {
	if h.cfg.RenderImage && h.renderer != nil {
		path, err := h.renderer.RenderReplyCard(ctx, data)
		if err == nil {
			return ImagePayload(path)
		}
		h.logger.Error("reply_render_failed", "ticket", data.Ticket, "error", err.Error())
	}
	return ReplyTextPayload(data)
}
