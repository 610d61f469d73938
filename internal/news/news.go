package news

import (
	"sync"
	"time"
)

// Item is one headline in the market news feed.
type Item struct {
	Headline string `json:"headline"`
	TsUnixM  int64  `json:"ts"`
}

// Feed is an append-only list of headlines.
type Feed struct {
	mu    sync.RWMutex
	items []Item
}

// NewFeed creates a feed pre-populated with the given headlines.
func NewFeed(headlines ...string) *Feed {
	f := &Feed{}
	for _, h := range headlines {
		f.Publish(h)
	}
	return f
}

// Publish appends a headline.
func (f *Feed) Publish(headline string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, Item{Headline: headline, TsUnixM: time.Now().UnixMicro()})
}

// Items returns a copy of all headlines, oldest first.
func (f *Feed) Items() []Item {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Item, len(f.items))
	copy(out, f.items)
	return out
}
