// Package activity generates the demo transaction feed. The payloads are
// random and do not come from any blockchain.
package activity

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultInterval is how often a payload is broadcast.
const DefaultInterval = 3 * time.Second

// EventHandler defines a function that is called when events
// occur in the feed.
type EventHandler func(v string, args ...any)

// Broadcaster receives every generated payload.
type Broadcaster interface {
	Send(msg []byte)
}

// Payload is a single fake transaction.
type Payload struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
	Risk    string `json:"risk"`
}

// Generate builds a random payload from the specified source.
func Generate(rnd *rand.Rand) Payload {
	risk := "Low"
	if rnd.Float64() > 0.5 {
		risk = "High"
	}

	return Payload{
		Address: fmt.Sprintf("0x%08x", rnd.Uint32()),
		Amount:  fmt.Sprintf("%d ETH", rnd.IntN(10)+1),
		Risk:    risk,
	}
}

// Feed broadcasts a random payload on every interval until shutdown.
type Feed struct {
	bc        Broadcaster
	rnd       *rand.Rand
	ticker    *time.Ticker
	shut      chan struct{}
	wg        sync.WaitGroup
	once      sync.Once
	evHandler EventHandler
}

// Run constructs a feed and starts the goroutine broadcasting payloads.
func Run(bc Broadcaster, interval time.Duration, evHandler EventHandler) *Feed {
	if interval <= 0 {
		interval = DefaultInterval
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	f := Feed{
		bc:        bc,
		rnd:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		ticker:    time.NewTicker(interval),
		shut:      make(chan struct{}),
		evHandler: ev,
	}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.operations()
	}()

	return &f
}

// Shutdown terminates the goroutine broadcasting payloads.
func (f *Feed) Shutdown() {
	f.once.Do(func() {
		f.evHandler("activity: shutdown: started")
		defer f.evHandler("activity: shutdown: completed")

		f.ticker.Stop()
		close(f.shut)
		f.wg.Wait()
	})
}

// operations broadcasts on every tick.
func (f *Feed) operations() {
	f.evHandler("activity: operations: G started")
	defer f.evHandler("activity: operations: G completed")

	for {
		select {
		case <-f.ticker.C:
			f.broadcast()
		case <-f.shut:
			return
		}
	}
}

func (f *Feed) broadcast() {
	data, err := json.Marshal(Generate(f.rnd))
	if err != nil {
		f.evHandler("activity: broadcast: ERROR: %s", err)
		return
	}

	f.bc.Send(data)
}
