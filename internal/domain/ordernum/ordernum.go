// Package ordernum mints human-readable order numbers of the form ORD-<TIME36>-<RAND36>.
package ordernum

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	Prefix     = "ORD"
	randLength = 6
	alphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Generator produces order numbers without a store round trip.
// The time component is strictly increasing per Generator.
type Generator struct {
	mu     sync.Mutex
	now    func() time.Time
	lastMS int64
}

func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock is used by tests to pin the clock.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

func (g *Generator) Next() (string, error) {
	ms := g.nextMillis()
	suffix, err := randomSuffix(randLength)
	if err != nil {
		return "", err
	}
	return Prefix + "-" + strings.ToUpper(strconv.FormatInt(ms, 36)) + "-" + suffix, nil
}

func (g *Generator) nextMillis() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.lastMS {
		ms = g.lastMS + 1
	}
	g.lastMS = ms
	return ms
}

func randomSuffix(n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[idx.Int64()])
	}
	return b.String(), nil
}
