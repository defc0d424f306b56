package repositories

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// NameGenerator issues `<prefix>_<millis>.<ext>` names whose tokens strictly increase.
//
// Tokens are millisecond epoch timestamps. When the clock has not moved past the last issued token the
// generator hands out last+1 instead, so any number of names requested within one millisecond stay distinct.
type NameGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewNameGenerator creates a generator reading the given clock; nil uses [time.Now].
func NewNameGenerator(now func() time.Time) *NameGenerator {
	if now == nil {
		now = time.Now
	}
	return &NameGenerator{now: now}
}

// NextToken returns the next token.
func (g *NameGenerator) NextToken() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	token := g.now().UnixMilli()
	if token <= g.last {
		token = g.last + 1
	}
	g.last = token
	return token
}

// Next returns a name for prefix and ext built from the next token.
func (g *NameGenerator) Next(prefix, ext string) string {
	return FormatName(prefix, g.NextToken(), ext)
}

// FormatName joins prefix, token and extension. A leading dot on ext is ignored.
func FormatName(prefix string, token int64, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return fmt.Sprintf("%s_%d", prefix, token)
	}
	return fmt.Sprintf("%s_%d.%s", prefix, token, ext)
}
