package importer

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

const CodePrefix = "EMP"

// Counter hands out employee code ordinals. Safe for concurrent use.
type Counter struct {
	n atomic.Int64
}

// NewCounter starts after seed, so the first Next returns seed+1.
func NewCounter(seed int) *Counter {
	c := &Counter{}
	c.n.Store(int64(seed))
	return c
}

func (c *Counter) Next() int {
	return int(c.n.Add(1))
}

func (c *Counter) Current() int {
	return int(c.n.Load())
}

// AtLeast raises the counter to n if it is behind. It never moves backwards.
func (c *Counter) AtLeast(n int) {
	for {
		cur := c.n.Load()
		if cur >= int64(n) || c.n.CompareAndSwap(cur, int64(n)) {
			return
		}
	}
}

// FormatCode renders an ordinal as EMP007.
func FormatCode(ordinal int) string {
	return fmt.Sprintf("%s%03d", CodePrefix, ordinal)
}

// CodeOrdinal extracts N from a code shaped EMPnnn.
func CodeOrdinal(code string) (int, bool) {
	digits, ok := strings.CutPrefix(code, CodePrefix)
	if !ok || digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
