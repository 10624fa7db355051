package traffic

// Table is the fixed-capacity contact arena. Slots are never reallocated, so
// *Contact values handed out stay valid until the slot is cleared.
//
// Table is not safe for concurrent use: Add, Update, Ingest and ClearExpired
// must be serialized with the update loop by the caller.
type Table struct {
	slots [MaxContacts]Contact

	// free is a stack of unused slot indexes.
	free  [MaxContacts]uint8
	nfree int

	expiration int64 // ms
	minAlert   AlarmLevel
}

func NewTable(cfg Config) *Table {
	cfg = cfg.withDefaults()
	t := &Table{
		expiration: cfg.Expiration.Milliseconds(),
		minAlert:   cfg.MinAlert,
	}
	t.reset()
	return t
}

func (t *Table) reset() {
	for i := range t.slots {
		t.slots[i] = Contact{}
	}
	// Lowest index on top so slots fill in order.
	for i := 0; i < MaxContacts; i++ {
		t.free[i] = uint8(MaxContacts - 1 - i)
	}
	t.nfree = MaxContacts
}

// Add inserts a contact for a newly seen identity. It is a no-op when the
// identity is already tracked, no slot is free or r carries no geometry.
func (t *Table) Add(now int64, r Report) (*Contact, bool) {
	if r.Geometry == nil {
		return nil, false
	}
	if t.Lookup(r.Identity) != nil {
		return nil, false
	}
	if t.nfree == 0 {
		return nil, false
	}
	t.nfree--
	c := &t.slots[t.free[t.nfree]]
	*c = Contact{
		live:     true,
		Identity: r.Identity,
		MinAlert: t.minAlert,
	}
	apply(now, c, r)
	return c, true
}

// Update refreshes c from r. Identity is fixed once a slot is taken, so a
// report for a different identity is ignored.
func (t *Table) Update(now int64, c *Contact, r Report) {
	if !c.Live() || c.Identity != r.Identity {
		return
	}
	apply(now, c, r)
}

// Ingest routes r to Update when its identity is tracked and to Add
// otherwise. It reports whether r was stored.
func (t *Table) Ingest(now int64, r Report) bool {
	if c := t.Lookup(r.Identity); c != nil {
		t.Update(now, c, r)
		return true
	}
	_, ok := t.Add(now, r)
	return ok
}

// Lookup returns the live contact for id, or nil.
func (t *Table) Lookup(id Identity) *Contact {
	for i := range t.slots {
		if t.slots[i].live && t.slots[i].Identity == id {
			return &t.slots[i]
		}
	}
	return nil
}

// ClearExpired resets contacts older than the expiration window to the
// empty sentinel and returns how many were cleared.
func (t *Table) ClearExpired(now int64) int {
	n := 0
	for i := range t.slots {
		c := &t.slots[i]
		if !c.live || now-c.Timestamp <= t.expiration {
			continue
		}
		*c = Contact{}
		t.free[t.nfree] = uint8(i)
		t.nfree++
		n++
	}
	return n
}

// Count returns the number of live contacts.
func (t *Table) Count() int {
	return MaxContacts - t.nfree
}

// Each calls fn for every live contact in slot order.
func (t *Table) Each(fn func(*Contact)) {
	for i := range t.slots {
		if t.slots[i].live {
			fn(&t.slots[i])
		}
	}
}

func apply(now int64, c *Contact, r Report) {
	c.Timestamp = now
	if k := r.kind(); k != KindNone {
		c.Kind = k
	}
	c.reported = clampAlarm(r.AlarmLevel)
	if c.reported > c.AlarmLevel {
		c.AlarmLevel = c.reported
	}
	if r.Geometry != nil {
		c.geometry = r.Geometry
	}
	if r.Callsign != "" {
		putCallsign(&c.Callsign, r.Callsign)
	}

	// Bearing reports carry no velocity; keep what the last full report said.
	if c.Kind == KindPFLAU {
		return
	}
	c.Track = r.Track
	c.TurnRate = r.TurnRate
	c.GroundSpeed = r.GroundSpeed
	c.ClimbRate = r.ClimbRate
	c.AcftType = r.AcftType
	c.NoTrack = r.NoTrack
	c.Source = r.Source
}
