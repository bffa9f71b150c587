package ordernum

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-[0-9A-Z]+-[0-9A-Z]{6}$`)

func TestNext_Format(t *testing.T) {
	g := New()
	n, err := g.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !orderNumberPattern.MatchString(n) {
		t.Fatalf("unexpected format: %q", n)
	}
}

func TestNext_MonotonicUnderFrozenClock(t *testing.T) {
	frozen := time.UnixMilli(1_700_000_000_000)
	g := NewWithClock(func() time.Time { return frozen })

	var prev int64
	for i := 0; i < 50; i++ {
		n, err := g.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		ms, err := strconv.ParseInt(strings.Split(n, "-")[1], 36, 64)
		if err != nil {
			t.Fatalf("parse time part of %q: %v", n, err)
		}
		if ms <= prev {
			t.Fatalf("time part not increasing: prev=%d got=%d", prev, ms)
		}
		prev = ms
	}
}

func TestNext_UniqueAcrossGoroutines(t *testing.T) {
	g := New()
	const workers, per = 8, 250

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*per)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				n, err := g.Next()
				if err != nil {
					t.Errorf("Next: %v", err)
					return
				}
				mu.Lock()
				seen[n] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != workers*per {
		t.Fatalf("duplicates: want=%d unique got=%d", workers*per, len(seen))
	}
}
