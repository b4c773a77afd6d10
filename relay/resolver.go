package relay

import (
	"log/slog"
	"strings"

	"github.com/bvzrays/astrbot-plugin-liuyan/internal/umo"
)

// ResolveDestinations computes the ordered, deduplicated operator
// destination list from configuration.
//
// Each configured user id yields two addresses, one friend-scoped and
// one private-scoped: hosts differ in which scope their send API
// expects for a direct message, so both are attempted and delivery
// dedups by full address string. The legacy single destination_umo
// override is appended verbatim.
//
// An empty result is a configuration problem for the command layer to
// surface, not an error here.
func ResolveDestinations(cfg Config, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}

	platform, recognized := umo.NormalizePlatform(cfg.PlatformName)
	if !recognized {
		logger.Warn("platform_name_unrecognized",
			"configured", strings.TrimSpace(cfg.PlatformName),
			"fallback", platform)
	}

	results := make([]string, 0, 2*len(cfg.DeveloperUserIDs)+len(cfg.DeveloperGroupIDs)+1)
	if cfg.SendToUsers {
		for _, id := range cleanIDs(cfg.DeveloperUserIDs) {
			for _, scope := range []umo.Scope{umo.ScopeFriend, umo.ScopePrivate} {
				addr, err := umo.Build(platform, scope, id)
				if err != nil {
					continue
				}
				results = append(results, addr.String())
			}
		}
	}
	if cfg.SendToGroups {
		for _, id := range cleanIDs(cfg.DeveloperGroupIDs) {
			addr, err := umo.Build(platform, umo.ScopeGroup, id)
			if err != nil {
				continue
			}
			results = append(results, addr.String())
		}
	}
	if dest := strings.TrimSpace(cfg.DestinationUMO); dest != "" {
		results = append(results, dest)
	}

	seen := map[string]bool{}
	dedup := make([]string, 0, len(results))
	for _, addr := range results {
		if seen[addr] {
			continue
		}
		seen[addr] = true
		dedup = append(dedup, addr)
	}

	if len(dedup) == 0 {
		logger.Warn("no_destinations_configured")
	} else {
		logger.Info("destinations_resolved", "count", len(dedup), "destinations", dedup)
	}
	return dedup
}
