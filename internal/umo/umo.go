// Package umo models unified message origins: the "platform:scope:id"
// strings the host uses to address a conversation. Addresses are parsed
// once into a typed form so delivery code never slices the raw string.
package umo

import (
	"fmt"
	"strings"
)

type Scope string

const (
	ScopeFriend  Scope = "friend"
	ScopePrivate Scope = "private"
	ScopeGroup   Scope = "group"
)

// PlatformAiocqhttp is the canonical identifier for the OneBot protocol
// family; it is the only platform the low-level fallback path can serve.
const PlatformAiocqhttp = "aiocqhttp"

type Address struct {
	Platform string
	Scope    Scope
	ID       string
}

func (a Address) String() string {
	return fmt.Sprintf("%s:%s:%s", a.Platform, a.Scope, a.ID)
}

func (a Address) IsAiocqhttp() bool {
	return a.Platform == PlatformAiocqhttp
}

func Build(platform string, scope Scope, id string) (Address, error) {
	platform = strings.TrimSpace(platform)
	if platform == "" {
		return Address{}, fmt.Errorf("platform is required")
	}
	if !isValidScope(scope) {
		return Address{}, fmt.Errorf("scope is invalid: %s", scope)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Address{}, fmt.Errorf("conversation id is required")
	}
	if strings.Contains(id, " ") {
		return Address{}, fmt.Errorf("conversation id must not contain spaces")
	}
	return Address{Platform: platform, Scope: scope, ID: id}, nil
}

// Parse splits a raw origin string into its three parts. The id keeps
// any further colons intact so ids containing ":" survive a round trip.
func Parse(raw string) (Address, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Address{}, fmt.Errorf("origin address is required")
	}
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return Address{}, fmt.Errorf("origin address is invalid: %s", raw)
	}
	scope := Scope(strings.TrimSpace(parts[1]))
	if !isValidScope(scope) {
		return Address{}, fmt.Errorf("origin scope is invalid: %s", raw)
	}
	return Build(parts[0], scope, parts[2])
}

func isValidScope(scope Scope) bool {
	switch scope {
	case ScopeFriend, ScopePrivate, ScopeGroup:
		return true
	default:
		return false
	}
}

// onebotAliases maps the protocol names users commonly configure for a
// OneBot-family endpoint onto the canonical identifier.
var onebotAliases = map[string]string{
	"aiocqhttp": PlatformAiocqhttp,
	"onebot":    PlatformAiocqhttp,
	"onebot11":  PlatformAiocqhttp,
	"onebotv11": PlatformAiocqhttp,
	"cqhttp":    PlatformAiocqhttp,
	"gocqhttp":  PlatformAiocqhttp,
	"go-cqhttp": PlatformAiocqhttp,
	"napcat":    PlatformAiocqhttp,
	"llonebot":  PlatformAiocqhttp,
	"lagrange":  PlatformAiocqhttp,
}

var passthroughPlatforms = map[string]bool{
	"telegram":     true,
	"slack":        true,
	"discord":      true,
	"qqofficial":   true,
	"wechatpadpro": true,
}

// NormalizePlatform canonicalizes a configured platform name. The
// second return value is false when the name was unrecognized or empty
// and the default was substituted, so callers can log a warning.
func NormalizePlatform(name string) (string, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := onebotAliases[trimmed]; ok {
		return canonical, true
	}
	if passthroughPlatforms[trimmed] {
		return trimmed, true
	}
	return PlatformAiocqhttp, false
}
