// Package monitor polls the gas oracle on a fixed interval and maintains the
// current sample, the chart history and the savings estimate for the
// selected transaction profile.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blocksentry/sentry/business/core/gas"
	"github.com/blocksentry/sentry/business/sys/metrics"
	"github.com/robfig/cron/v3"
)

// ErrNoSample is returned when an estimate is requested before the first
// successful poll.
var ErrNoSample = errors.New("no gas sample available yet")

// EventHandler defines a function that is called when events
// occur while polling.
type EventHandler func(v string, args ...any)

// Publisher receives every state change encoded as JSON.
type Publisher interface {
	Send(msg []byte)
}

// Config represents the configuration required to construct a monitor.
type Config struct {
	Source    Source
	Interval  time.Duration
	Profile   string
	Location  *time.Location
	Now       func() time.Time
	Publisher Publisher
	EvHandler EventHandler
}

// Snapshot is a copy of the monitor state.
type Snapshot struct {
	Sample   *gas.Sample   `json:"sample"`
	EthUSD   float64       `json:"eth_usd"`
	Profile  gas.Profile   `json:"profile"`
	Estimate *gas.Estimate `json:"estimate"`
	History  []gas.Point   `json:"history"`
}

// Monitor manages the polling lifecycle and the derived state.
type Monitor struct {
	fetcher   *Fetcher
	interval  time.Duration
	loc       *time.Location
	now       func() time.Time
	pub       Publisher
	evHandler EventHandler

	mu            sync.RWMutex
	sample        gas.Sample
	hasSample     bool
	rate          float64
	history       *gas.History
	profile       gas.Profile
	estimate      gas.Estimate
	appliedSample uint64
	appliedRate   uint64

	lifeMu    sync.Mutex
	seq       atomic.Uint64
	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// New constructs a monitor. Polling does not begin until Start is called.
func New(cfg Config) (*Monitor, error) {
	if cfg.Source == nil {
		return nil, errors.New("source is required")
	}

	if cfg.Interval < time.Second {
		return nil, fmt.Errorf("poll interval %s must be at least one second", cfg.Interval)
	}

	key := cfg.Profile
	if key == "" {
		key = gas.DefaultProfile
	}
	profile, err := gas.LookupProfile(key)
	if err != nil {
		return nil, err
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := Monitor{
		fetcher:   NewFetcher(cfg.Source, now),
		interval:  cfg.Interval,
		loc:       loc,
		now:       now,
		pub:       cfg.Publisher,
		evHandler: ev,
		history:   gas.NewHistory(loc),
		profile:   profile,
		cron:      cron.New(cron.WithLocation(loc)),
		ctx:       ctx,
		cancel:    cancel,
	}

	if _, err := m.cron.AddFunc(fmt.Sprintf("@every %s", cfg.Interval), m.tick); err != nil {
		cancel()
		return nil, fmt.Errorf("scheduling poll: %w", err)
	}

	return &m, nil
}

// Start performs an immediate poll and then polls on every interval. Start
// does nothing once Stop has been called.
func (m *Monitor) Start() {
	m.startOnce.Do(func() {
		m.lifeMu.Lock()
		defer m.lifeMu.Unlock()

		if m.ctx.Err() != nil {
			m.evHandler("monitor: start: already stopped")
			return
		}

		m.evHandler("monitor: start: interval[%s] profile[%s]", m.interval, m.profile.Key)

		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.Poll(m.ctx)
		}()

		m.cron.Start()
	})
}

// Stop cancels any in-flight poll, stops the schedule and waits for running
// polls to return. It is safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		m.evHandler("monitor: stop: started")
		defer m.evHandler("monitor: stop: completed")

		m.lifeMu.Lock()
		m.cancel()
		m.lifeMu.Unlock()

		<-m.cron.Stop().Done()
		m.wg.Wait()
	})
}

// tick is the scheduled job.
func (m *Monitor) tick() {
	m.wg.Add(1)
	defer m.wg.Done()

	m.Poll(m.ctx)
}

// Poll fetches the gas oracle and the price quote concurrently and applies
// the results. Failures are reported through the event handler and leave
// the previous values in place. Polls may overlap; a sample or rate that
// arrives after a newer one has been applied is discarded.
func (m *Monitor) Poll(ctx context.Context) {
	seq := m.seq.Add(1)
	metrics.PollsTotal.Inc()

	var (
		wg        sync.WaitGroup
		sample    gas.Sample
		sampleErr error
		rate      float64
		rateErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		sample, sampleErr = m.fetcher.FetchSample(ctx)
	}()
	go func() {
		defer wg.Done()
		rate, rateErr = m.fetcher.FetchRate(ctx)
	}()
	wg.Wait()

	if sampleErr != nil {
		metrics.PollErrorsTotal.WithLabelValues("gas").Inc()
		m.evHandler("monitor: poll[%d]: ERROR: %s", seq, sampleErr)
	}

	if rateErr != nil {
		metrics.PollErrorsTotal.WithLabelValues("price").Inc()
		m.evHandler("monitor: poll[%d]: ERROR: %s", seq, rateErr)
	}

	m.apply(seq, sample, sampleErr == nil, rate, rateErr == nil)
}

// apply stores the results of poll seq. The sample and the rate are tracked
// separately so a failed fetch in a newer poll never discards the other
// value of an older one.
func (m *Monitor) apply(seq uint64, sample gas.Sample, sampleOK bool, rate float64, rateOK bool) {
	if !sampleOK && !rateOK {
		return
	}

	m.mu.Lock()

	var rateApplied, sampleApplied bool

	if rateOK && seq > m.appliedRate {
		m.appliedRate = seq
		m.rate = rate
		rateApplied = true
		metrics.EthUSD.Set(rate)
	}

	if sampleOK && seq > m.appliedSample {
		m.appliedSample = seq
		m.sample = sample
		m.hasSample = true
		m.history.Append(sample)
		sampleApplied = true

		metrics.GasPriceGwei.WithLabelValues("safe").Set(sample.Safe)
		metrics.GasPriceGwei.WithLabelValues("average").Set(sample.Average)
		metrics.GasPriceGwei.WithLabelValues("fast").Set(sample.Fast)
		metrics.GasPriceGwei.WithLabelValues("base_fee").Set(sample.BaseFee)
	}

	if !rateApplied && !sampleApplied {
		appliedSample, appliedRate := m.appliedSample, m.appliedRate
		m.mu.Unlock()
		m.evHandler("monitor: poll[%d]: discarded, sample poll[%d] rate poll[%d] already applied", seq, appliedSample, appliedRate)
		return
	}

	m.recompute()
	snap := m.snapshot()
	m.mu.Unlock()

	sv := snap.sampleValue()
	m.evHandler("monitor: poll[%d]: applied: sample[%t] rate[%t] safe[%v] average[%v] fast[%v] ethusd[%v]", seq, sampleApplied, rateApplied, sv.Safe, sv.Average, sv.Fast, snap.EthUSD)
	m.publish(snap)
}

// Refresh polls immediately and returns the resulting state.
func (m *Monitor) Refresh(ctx context.Context) Snapshot {
	m.Poll(ctx)
	return m.Snapshot()
}

// SelectProfile changes the selected transaction profile and recomputes the
// estimate.
func (m *Monitor) SelectProfile(key string) (Snapshot, error) {
	profile, err := gas.LookupProfile(key)
	if err != nil {
		return Snapshot{}, err
	}

	m.mu.Lock()
	m.profile = profile
	m.recompute()
	snap := m.snapshot()
	m.mu.Unlock()

	m.evHandler("monitor: select profile: %s", profile.Key)
	m.publish(snap)

	return snap, nil
}

// Estimate computes an estimate for any profile from the current sample
// without changing the selection. An empty key uses the selected profile.
func (m *Monitor) Estimate(key string) (gas.Estimate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.hasSample {
		return gas.Estimate{}, ErrNoSample
	}

	if key == "" || key == m.profile.Key {
		return m.estimate, nil
	}

	profile, err := gas.LookupProfile(key)
	if err != nil {
		return gas.Estimate{}, err
	}

	return gas.NewEstimate(m.sample, profile, m.rate, m.now().In(m.loc)), nil
}

// Snapshot returns a copy of the current state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snapshot()
}

// =============================================================================

// recompute rebuilds the estimate. The caller must hold the write lock.
func (m *Monitor) recompute() {
	if !m.hasSample {
		return
	}

	m.estimate = gas.NewEstimate(m.sample, m.profile, m.rate, m.now().In(m.loc))
}

// snapshot copies the state. The caller must hold a lock.
func (m *Monitor) snapshot() Snapshot {
	snap := Snapshot{
		EthUSD:  m.rate,
		Profile: m.profile,
		History: m.history.Snapshot(),
	}

	if m.hasSample {
		sample := m.sample
		estimate := m.estimate
		snap.Sample = &sample
		snap.Estimate = &estimate
	}

	return snap
}

// publish sends the snapshot to the publisher if one is configured.
func (m *Monitor) publish(snap Snapshot) {
	if m.pub == nil {
		return
	}

	data, err := json.Marshal(snap)
	if err != nil {
		m.evHandler("monitor: publish: ERROR: %s", err)
		return
	}

	m.pub.Send(data)
}

// sampleValue returns the sample or the zero value.
func (s Snapshot) sampleValue() gas.Sample {
	if s.Sample == nil {
		return gas.Sample{}
	}
	return *s.Sample
}
