package traffic

import (
	"log/slog"

	"trafficalert/internal/clock"
	"trafficalert/internal/logging"
)

// Display receives the nearest-first view after every update cycle. The
// view is only valid during the call.
type Display interface {
	Show(own Ownship, view []Entry)
}

// Engine ties the table, threat assessment, ranking and alerting together.
//
// It runs in a single cooperative context: Ingest, SetOwnship and Loop must
// not be called concurrently.
type Engine struct {
	cfg   Config
	clock clock.Clock
	log   *slog.Logger

	table   *Table
	ranker  Ranker
	sched   *Scheduler
	display Display

	own    Contact
	top    *Contact
	topID  Identity
	marker int64
	cycles uint64
}

type Option func(*Engine)

func WithVoice(v Voice) Option {
	return func(e *Engine) { e.sched.voice = v }
}

func WithBuzzer(b Buzzer) Option {
	return func(e *Engine) { e.sched.buzzer = b }
}

func WithDisplay(d Display) Option {
	return func(e *Engine) { e.display = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = logging.OrDiscard(l)
		e.sched.log = e.log
	}
}

func NewEngine(cfg Config, clk clock.Clock, opts ...Option) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{
		cfg:    cfg,
		clock:  clk,
		log:    logging.OrDiscard(nil),
		table:  NewTable(cfg),
		sched:  NewScheduler(cfg, nil, nil, nil),
		marker: clk.Millis(),
	}
	e.own.live = true
	for _, opt := range opts {
		opt(e)
	}
	if e.sched.voice == nil {
		e.sched.voice = nopVoice{}
	}
	if e.sched.buzzer == nil {
		e.sched.buzzer = nopBuzzer{}
	}
	return e
}

// Ingest stores a decoded report. Reports beyond capacity are dropped.
func (e *Engine) Ingest(r Report) bool {
	ok := e.table.Ingest(e.clock.Millis(), r)
	if !ok {
		e.log.Debug("contact dropped", slog.String("id", r.Identity.String()), slog.Int("count", e.table.Count()))
	}
	return ok
}

// SetOwnship refreshes the own-aircraft state.
func (e *Engine) SetOwnship(o Ownship) {
	e.own.Timestamp = e.clock.Millis()
	e.own.Latitude = o.LatDeg
	e.own.Longitude = o.LonDeg
	e.own.Altitude = o.AltM
	e.own.Track = o.Track
	e.own.GroundSpeed = o.GroundSpeed
	e.own.ClimbRate = o.ClimbRate
}

// Ownship returns the current own-aircraft state.
func (e *Engine) Ownship() Ownship {
	return Ownship{
		LatDeg:      e.own.Latitude,
		LonDeg:      e.own.Longitude,
		AltM:        e.own.Altitude,
		Track:       e.own.Track,
		GroundSpeed: e.own.GroundSpeed,
		ClimbRate:   e.own.ClimbRate,
	}
}

func (e *Engine) isTimeToUpdateTraffic(now int64) bool {
	return now-e.marker > e.cfg.UpdateInterval.Milliseconds()
}

// Loop runs one update cycle when the update interval has elapsed and
// reports whether it did.
func (e *Engine) Loop() bool {
	now := e.clock.Millis()
	if !e.isTimeToUpdateTraffic(now) {
		return false
	}

	if n := e.table.ClearExpired(now); n > 0 {
		e.log.Debug("contacts expired", slog.Int("cleared", n), slog.Int("count", e.table.Count()))
	}
	e.top = Assess(e.cfg, &e.own, e.table)
	if e.top != nil {
		e.topID = e.top.Identity
	}
	e.ranker.Rebuild(e.table)
	e.sched.Step(now, e.ranker.ByAlarm())
	if e.display != nil {
		e.display.Show(e.Ownship(), e.ranker.ByDistance())
	}

	e.marker = now
	e.cycles++
	return true
}

// Count returns the number of live contacts.
func (e *Engine) Count() int {
	return e.table.Count()
}

// ByDistance returns the nearest-first view from the last cycle.
func (e *Engine) ByDistance() []Entry {
	return e.ranker.ByDistance()
}

// ByAlarm returns the most-threatening-first view from the last cycle.
func (e *Engine) ByAlarm() []Entry {
	return e.ranker.ByAlarm()
}

// Top returns the highest-priority contact of the last cycle, or nil once
// that contact has expired, even if its slot was reused since.
func (e *Engine) Top() *Contact {
	if !e.top.Live() || e.top.Identity != e.topID {
		return nil
	}
	return e.top
}

// Table exposes the contact table for direct Add/Update by the decoder.
func (e *Engine) Table() *Table {
	return e.table
}

func (e *Engine) Cycles() uint64 {
	return e.cycles
}

func (e *Engine) AlertsFired() uint64 {
	return e.sched.Fired()
}
