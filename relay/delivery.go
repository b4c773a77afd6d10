package relay

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bvzrays/astrbot-plugin-liuyan/internal/onebot"
	"github.com/bvzrays/astrbot-plugin-liuyan/internal/umo"
)

// Sender is the host's high-level send primitive. ok=false without an
// error means the host signaled it found no platform for the
// destination; anything other than an explicit failure counts as
// delivered.
type Sender interface {
	SendMessage(ctx context.Context, destination string, payload Payload) (ok bool, err error)
}

// FallbackSender is the low-level protocol path, only usable for
// destinations on the canonical OneBot platform.
type FallbackSender interface {
	SendPrivateMsg(ctx context.Context, userID string, segments []onebot.Segment) error
	SendGroupMsg(ctx context.Context, groupID string, segments []onebot.Segment) error
}

// DestinationResult records what happened for one destination, keeping
// "fallback attempted and failed" distinguishable from "fallback not
// applicable".
type DestinationResult struct {
	Address         string
	Delivered       bool
	FallbackUsed    bool
	FallbackSkipped bool
	Err             error
}

type Engine struct {
	sender   Sender
	fallback FallbackSender
	logger   *slog.Logger
}

func NewEngine(sender Sender, fallback FallbackSender, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{sender: sender, fallback: fallback, logger: logger}
}

// Deliver fans the payload out to every destination in order. A failing
// destination never aborts the remaining ones; overall success means at
// least one destination took the message.
func (e *Engine) Deliver(ctx context.Context, destinations []string, payload Payload) (bool, []DestinationResult) {
	if payload.IsEmpty() {
		e.logger.Warn("empty_payload_skipped", "destinations", len(destinations))
		return false, nil
	}

	results := make([]DestinationResult, 0, len(destinations))
	anyDelivered := false
	for _, dest := range destinations {
		res := e.deliverOne(ctx, dest, payload)
		if res.Err != nil {
			e.logger.Warn("destination_delivery_failed",
				"destination", dest,
				"fallback_used", res.FallbackUsed,
				"error", res.Err.Error())
		}
		anyDelivered = anyDelivered || res.Delivered
		results = append(results, res)
	}
	return anyDelivered, results
}

func (e *Engine) deliverOne(ctx context.Context, dest string, payload Payload) DestinationResult {
	res := DestinationResult{Address: dest}

	if e.sender != nil {
		ok, err := e.sender.SendMessage(ctx, dest, payload)
		if err == nil && ok {
			res.Delivered = true
			return res
		}
		if err != nil {
			res.Err = err
		}
	}

	addr, parseErr := umo.Parse(dest)
	if e.fallback == nil || parseErr != nil || !addr.IsAiocqhttp() {
		res.FallbackSkipped = true
		if res.Err == nil {
			res.Err = parseErr
		}
		return res
	}

	res.FallbackUsed = true
	segments := PayloadSegments(payload)
	var err error
	if addr.Scope == umo.ScopeGroup {
		err = e.fallback.SendGroupMsg(ctx, addr.ID, segments)
	} else {
		err = e.fallback.SendPrivateMsg(ctx, addr.ID, segments)
	}
	if err != nil {
		res.Err = err
		return res
	}
	res.Delivered = true
	res.Err = nil
	return res
}

// PayloadSegments translates a payload into OneBot message segments,
// keeping the before-text / images / after-text ordering.
func PayloadSegments(payload Payload) []onebot.Segment {
	segments := make([]onebot.Segment, 0, len(payload.Images)+2)
	if s := strings.TrimSpace(payload.Before); s != "" {
		segments = append(segments, onebot.TextSegment(s))
	}
	for _, img := range payload.Images {
		segments = append(segments, onebot.ImageSegment(img))
	}
	if s := strings.TrimSpace(payload.After); s != "" {
		segments = append(segments, onebot.TextSegment("\n"+s))
	}
	if len(segments) == 0 {
		segments = append(segments, onebot.TextSegment(""))
	}
	return segments
}
