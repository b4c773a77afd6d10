package relay

import (
	"io"
	"log/slog"
	"reflect"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveDestinationsUserYieldsFriendAndPrivate(t *testing.T) {
	cfg := Config{
		PlatformName:     "aiocqhttp",
		SendToUsers:      true,
		DeveloperUserIDs: []string{"10001"},
	}
	got := ResolveDestinations(cfg, discardLogger())
	want := []string{"aiocqhttp:friend:10001", "aiocqhttp:private:10001"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolveDestinations() = %v, want %v", got, want)
	}
}

func TestResolveDestinationsFullConfig(t *testing.T) {
	cfg := Config{
		PlatformName:      "napcat",
		SendToUsers:       true,
		SendToGroups:      true,
		DeveloperUserIDs:  []string{"1", " ", "2"},
		DeveloperGroupIDs: []string{"99"},
		DestinationUMO:    "telegram:private:555",
	}
	got := ResolveDestinations(cfg, discardLogger())
	want := []string{
		"aiocqhttp:friend:1",
		"aiocqhttp:private:1",
		"aiocqhttp:friend:2",
		"aiocqhttp:private:2",
		"aiocqhttp:group:99",
		"telegram:private:555",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolveDestinations() = %v, want %v", got, want)
	}
}

func TestResolveDestinationsDedupKeepsFirstSeenOrder(t *testing.T) {
	cfg := Config{
		PlatformName:      "aiocqhttp",
		SendToUsers:       true,
		SendToGroups:      true,
		DeveloperUserIDs:  []string{"1"},
		DeveloperGroupIDs: []string{"99"},
		DestinationUMO:    "aiocqhttp:friend:1",
	}
	got := ResolveDestinations(cfg, discardLogger())
	want := []string{
		"aiocqhttp:friend:1",
		"aiocqhttp:private:1",
		"aiocqhttp:group:99",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolveDestinations() = %v, want %v", got, want)
	}
}

func TestResolveDestinationsHonorsToggles(t *testing.T) {
	cfg := Config{
		PlatformName:      "aiocqhttp",
		SendToUsers:       false,
		SendToGroups:      false,
		DeveloperUserIDs:  []string{"1"},
		DeveloperGroupIDs: []string{"99"},
	}
	if got := ResolveDestinations(cfg, discardLogger()); len(got) != 0 {
		t.Fatalf("ResolveDestinations() = %v, want empty", got)
	}
}

func TestResolveDestinationsUnknownPlatformFallsBack(t *testing.T) {
	cfg := Config{
		PlatformName:      "matrix",
		SendToGroups:      true,
		DeveloperGroupIDs: []string{"7"},
	}
	got := ResolveDestinations(cfg, discardLogger())
	want := []string{"aiocqhttp:group:7"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolveDestinations() = %v, want %v", got, want)
	}
}
