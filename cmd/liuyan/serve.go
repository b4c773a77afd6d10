package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bvzrays/astrbot-plugin-liuyan/internal/logutil"
	"github.com/bvzrays/astrbot-plugin-liuyan/internal/onebot"
	"github.com/bvzrays/astrbot-plugin-liuyan/internal/umo"
	"github.com/bvzrays/astrbot-plugin-liuyan/relay"
	"github.com/bvzrays/astrbot-plugin-liuyan/render"
	"github.com/bvzrays/astrbot-plugin-liuyan/ticket"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to the OneBot endpoint and relay notes and replies",
		RunE:  runServe,
	}
	cmd.Flags().String("ws-url", "", "OneBot forward websocket URL (overrides onebot.ws_url).")
	cmd.Flags().String("data-dir", "", "State directory (overrides data_dir).")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger, err := logutil.LoggerFromViper()
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataDir := expandHomePath(flagOrViperString(cmd, "data-dir", "data_dir"))
	store := ticket.NewStore(dataDir, logger)
	store.Load()

	client, err := onebot.NewClient(onebot.Options{
		WSURL:             flagOrViperString(cmd, "ws-url", "onebot.ws_url"),
		AccessToken:       viper.GetString("onebot.access_token"),
		ReconnectInterval: viper.GetDuration("onebot.reconnect_interval"),
		Logger:            logger,
	})
	if err != nil {
		return err
	}
	if err := client.Start(ctx); err != nil {
		return err
	}
	defer client.Stop()

	cfg := relay.ConfigFromViper()

	var renderer relay.Renderer
	if cfg.RenderImage {
		endpoint := viper.GetString("render.endpoint")
		if strings.TrimSpace(endpoint) == "" {
			logger.Warn("render_image_enabled_without_endpoint")
		} else {
			rc, err := render.NewClient(
				&http.Client{Timeout: viper.GetDuration("render.timeout")},
				endpoint,
				filepath.Join(dataDir, "cards"),
			)
			if err != nil {
				return err
			}
			renderer = rc
		}
	}

	engine := relay.NewEngine(&onebotSender{client: client}, client, logger)
	handler := relay.NewHandler(cfg, store, engine, renderer, logger)

	logger.Info("liuyan_started", "tickets", store.Len(), "data_dir", dataDir)

	go func() {
		if info, err := client.GetLoginInfo(ctx); err == nil {
			logger.Info("onebot_identity", "user_id", info.UserID, "nickname", info.Nickname)
		}
	}()

	dispatchLoop(ctx, client, handler, logger)

	store.Save()
	logger.Info("liuyan_stopped")
	return nil
}

// onebotSender adapts the OneBot client to the high-level send shape.
// Destinations on any other platform report "no platform found" rather
// than an error, which the delivery engine records as undeliverable.
type onebotSender struct {
	client *onebot.Client
}

func (s *onebotSender) SendMessage(ctx context.Context, destination string, payload relay.Payload) (bool, error) {
	addr, err := umo.Parse(destination)
	if err != nil {
		return false, err
	}
	if !addr.IsAiocqhttp() {
		return false, nil
	}
	segments := relay.PayloadSegments(payload)
	if addr.Scope == umo.ScopeGroup {
		err = s.client.SendGroupMsg(ctx, addr.ID, segments)
	} else {
		err = s.client.SendPrivateMsg(ctx, addr.ID, segments)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// dispatchLoop consumes inbound OneBot events and routes command
// messages to the handlers, sending each handler's response back to the
// conversation the command came from.
func dispatchLoop(ctx context.Context, client *onebot.Client, handler *relay.Handler, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-client.Events():
			if !ok {
				return
			}
			reply := dispatchEvent(ctx, handler, ev)
			if reply == "" {
				continue
			}
			segments := []onebot.Segment{onebot.TextSegment(reply)}
			var err error
			if ev.GroupID != "" {
				segments = append([]onebot.Segment{onebot.AtSegment(ev.UserID), onebot.TextSegment(" ")}, segments...)
				err = client.SendGroupMsg(ctx, ev.GroupID, segments)
			} else {
				err = client.SendPrivateMsg(ctx, ev.UserID, segments)
			}
			if err != nil {
				logger.Error("command_reply_failed", "user", ev.UserID, "group", ev.GroupID, "error", err.Error())
			}
		}
	}
}

// dispatchEvent matches the command word and invokes the handler. The
// list command is matched before the note command so "留言列表" is not
// read as a note whose content is "列表".
func dispatchEvent(ctx context.Context, handler *relay.Handler, ev onebot.Event) string {
	text := strings.TrimSpace(ev.Text)
	command, args, ok := splitCommand(text)
	if !ok {
		return ""
	}

	rev := relay.Event{
		UnifiedOrigin: originAddress(ev),
		Platform:      umo.PlatformAiocqhttp,
		SenderID:      ev.UserID,
		SenderName:    ev.SenderName,
		GroupID:       ev.GroupID,
		Message:       args,
		Images:        ev.Images,
	}

	switch command {
	case "留言列表":
		return handler.HandleList(ctx, rev)
	case "留言":
		return handler.HandleNote(ctx, rev)
	case "回复":
		return handler.HandleReply(ctx, rev)
	default:
		return ""
	}
}

// splitCommand peels the command word off a message, tolerating an
// optional leading slash. Longer command words are tried first.
func splitCommand(text string) (command, args string, ok bool) {
	text = strings.TrimPrefix(text, "/")
	for _, word := range []string{"留言列表", "留言", "回复"} {
		if !strings.HasPrefix(text, word) {
			continue
		}
		rest := text[len(word):]
		if rest != "" && !startsWithSeparator(rest) {
			continue
		}
		return word, strings.TrimSpace(rest), true
	}
	return "", "", false
}

func startsWithSeparator(s string) bool {
	return strings.HasPrefix(s, " ") || strings.HasPrefix(s, "\n") || strings.HasPrefix(s, "\t") || strings.HasPrefix(s, "　")
}

// originAddress rebuilds the unified origin for an inbound event:
// groups address the group conversation, everything else the sender as
// a friend.
func originAddress(ev onebot.Event) string {
	scope := umo.ScopeFriend
	id := ev.UserID
	if ev.GroupID != "" {
		scope = umo.ScopeGroup
		id = ev.GroupID
	}
	addr, err := umo.Build(umo.PlatformAiocqhttp, scope, id)
	if err != nil {
		return ""
	}
	return addr.String()
}
