package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// RedeliveryWindow is how long a byte-identical payload without a timestamp of
// its own is taken to be a resend of the first delivery
const RedeliveryWindow = 10 * time.Second

// redeliveryCacheSize bounds the payload digests remembered for RedeliveryWindow
const redeliveryCacheSize = 4096

// SourceAdapter converts one source's payload into a UnifiedGameEvent.
// A nil event with a nil error means the payload has no bingo relevance.
type SourceAdapter interface {
	Adapt(ctx context.Context, raw []byte) (*domain.UnifiedGameEvent, error)
}

// AccountResolver maps an in-game name to an internal account id. An empty id
// with a nil error means the player is unknown.
type AccountResolver interface {
	ResolveAccountByName(ctx context.Context, name string) (string, error)
}

// Table selects the adapter for a source. It is passed to the orchestrator as
// a value so no process-wide source state exists.
type Table map[string]SourceAdapter

// Adapt routes raw to the adapter registered for source
func (t Table) Adapt(ctx context.Context, source string, raw []byte) (*domain.UnifiedGameEvent, error) {
	a, ok := t[strings.ToLower(source)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSource, source)
	}
	return a.Adapt(ctx, raw)
}

// Sources lists the registered source names
func (t Table) Sources() []string {
	out := make([]string, 0, len(t))
	for name := range t {
		out = append(out, name)
	}
	return out
}

// EventID derives a stable identifier from an event's content so redelivery of
// the same payload maps to the same id.
func EventID(ev domain.UnifiedGameEvent) string {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", ev.Data))
	}

	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%s\x00",
		strings.ToLower(ev.Source),
		ev.EventType,
		strings.ToLower(ev.PlayerName),
		ev.AccountID,
		ev.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
