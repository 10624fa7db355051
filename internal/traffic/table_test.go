package traffic

import (
	"math/rand"
	"testing"
)

func TestTable_AddRejectsDuplicateIdentity(t *testing.T) {
	tbl := NewTable(DefaultConfig())
	r := flarmReport(0xABC123, Offset{North: 100})
	if _, ok := tbl.Add(0, r); !ok {
		t.Fatalf("first Add rejected")
	}
	if _, ok := tbl.Add(10, r); ok {
		t.Fatalf("duplicate Add accepted")
	}
	if got := tbl.Count(); got != 1 {
		t.Fatalf("Count()=%d want 1", got)
	}
}

func TestTable_IDTypeQualifiesIdentity(t *testing.T) {
	tbl := NewTable(DefaultConfig())
	tbl.Add(0, Report{Identity: Identity{Type: IDICAO, ID: 0x123456}, Geometry: Offset{North: 100}})
	if _, ok := tbl.Add(0, Report{Identity: Identity{Type: IDFLARM, ID: 0x123456}, Geometry: Offset{North: 100}}); !ok {
		t.Fatalf("same ID with different type should be a distinct contact")
	}
	if got := tbl.Count(); got != 2 {
		t.Fatalf("Count()=%d want 2", got)
	}
}

func TestTable_CapacityIsBounded(t *testing.T) {
	tbl := NewTable(DefaultConfig())
	for i := 0; i < MaxContacts+3; i++ {
		_, ok := tbl.Add(0, flarmReport(uint32(i+1), Offset{North: 100}))
		if want := i < MaxContacts; ok != want {
			t.Fatalf("Add #%d ok=%v want %v", i, ok, want)
		}
	}
	if got := tbl.Count(); got != MaxContacts {
		t.Fatalf("Count()=%d want %d", got, MaxContacts)
	}
	if tbl.Ingest(0, flarmReport(999, Offset{North: 100})) {
		t.Fatalf("Ingest beyond capacity should report false")
	}
	if !tbl.Ingest(5, flarmReport(1, Offset{North: 50})) {
		t.Fatalf("Ingest of a tracked identity should update even when full")
	}
}

func TestTable_AddRequiresGeometry(t *testing.T) {
	tbl := NewTable(DefaultConfig())
	id := Identity{Type: IDFLARM, ID: 0x55}
	if _, ok := tbl.Add(0, Report{Kind: KindPFLAA, Identity: id, Callsign: "X"}); ok {
		t.Fatalf("Add accepted a report without geometry")
	}
	if tbl.Ingest(0, Report{Identity: id, Callsign: "X"}) {
		t.Fatalf("Ingest stored an untracked identity without geometry")
	}
	if tbl.Count() != 0 || tbl.Lookup(id) != nil {
		t.Fatalf("Count()=%d want 0", tbl.Count())
	}

	c, ok := tbl.Add(10, Report{Identity: id, Geometry: Offset{North: 800}})
	if !ok {
		t.Fatalf("Add with geometry rejected")
	}
	tbl.Update(20, c, Report{Identity: id, Callsign: "D-1234"})
	if c.geometry == nil || c.Kind != KindPFLAA || c.CallsignString() != "D-1234" || c.Timestamp != 20 {
		t.Fatalf("metadata update lost geometry or was not applied: %+v", c)
	}
}

func TestTable_UpdateRefreshesButKeepsIdentity(t *testing.T) {
	tbl := NewTable(DefaultConfig())
	c, _ := tbl.Add(0, Report{
		Identity:    Identity{Type: IDFLARM, ID: 7},
		Track:       90,
		GroundSpeed: 30,
		Callsign:    "D-KABC",
		Geometry:    Offset{North: 100},
	})

	tbl.Update(1000, c, Report{Identity: Identity{Type: IDFLARM, ID: 8}, Track: 180})
	if c.Track != 90 || c.Timestamp != 0 {
		t.Fatalf("update with foreign identity applied: %+v", c)
	}

	tbl.Update(1000, c, Report{
		Kind:       KindPFLAU,
		Identity:   Identity{Type: IDFLARM, ID: 7},
		AlarmLevel: AlarmImportant,
		Geometry:   Bearing{RelativeBearing: 30, Distance: 900},
	})
	if c.Timestamp != 1000 {
		t.Fatalf("timestamp=%d want 1000", c.Timestamp)
	}
	if c.Track != 90 || c.GroundSpeed != 30 {
		t.Fatalf("bearing report clobbered velocity: track=%v gs=%v", c.Track, c.GroundSpeed)
	}
	if c.AlarmLevel != AlarmImportant {
		t.Fatalf("alarm=%v want important", c.AlarmLevel)
	}
	if got := c.CallsignString(); got != "D-KABC" {
		t.Fatalf("callsign=%q", got)
	}
	if c.Kind != KindPFLAU {
		t.Fatalf("kind=%v want PFLAU", c.Kind)
	}
}

func TestTable_ClearExpiredReleasesIdentity(t *testing.T) {
	tbl := NewTable(DefaultConfig())
	tbl.Add(0, flarmReport(1, Offset{North: 100}))
	tbl.Add(3000, flarmReport(2, Offset{North: 100}))

	if n := tbl.ClearExpired(5000); n != 0 {
		t.Fatalf("cleared %d at exactly the expiration window", n)
	}
	if n := tbl.ClearExpired(6000); n != 1 {
		t.Fatalf("cleared %d want 1", n)
	}
	if tbl.Lookup(Identity{Type: IDFLARM, ID: 1}) != nil {
		t.Fatalf("expired identity still tracked")
	}
	if got := tbl.Count(); got != 1 {
		t.Fatalf("Count()=%d want 1", got)
	}
	if _, ok := tbl.Add(6000, flarmReport(1, Offset{North: 100})); !ok {
		t.Fatalf("expired identity not reusable")
	}
}

func TestTable_ClearedSlotIsSentinel(t *testing.T) {
	tbl := NewTable(DefaultConfig())
	tbl.Add(0, flarmReport(1, Offset{North: 10}))
	tbl.ClearExpired(10000)
	for i := range tbl.slots {
		if tbl.slots[i] != (Contact{}) {
			t.Fatalf("slot %d not reset: %+v", i, tbl.slots[i])
		}
	}
}

func TestTable_RandomOpsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tbl := NewTable(DefaultConfig())
	now := int64(0)
	for step := 0; step < 5000; step++ {
		now += int64(rng.Intn(400))
		id := Identity{Type: IDType(rng.Intn(3)), ID: uint32(rng.Intn(12))}
		r := Report{Identity: id, Geometry: Offset{North: float64(rng.Intn(5000))}}
		switch rng.Intn(4) {
		case 0:
			tbl.Add(now, r)
		case 1:
			if c := tbl.Lookup(id); c != nil {
				tbl.Update(now, c, Report{Identity: id})
			}
		case 2:
			tbl.Ingest(now, r)
		case 3:
			tbl.ClearExpired(now)
		}

		seen := map[Identity]bool{}
		live := 0
		tbl.Each(func(c *Contact) {
			live++
			if seen[c.Identity] {
				t.Fatalf("step %d: duplicate live identity %v", step, c.Identity)
			}
			seen[c.Identity] = true
		})
		if live != tbl.Count() || live > MaxContacts {
			t.Fatalf("step %d: live=%d Count()=%d", step, live, tbl.Count())
		}
	}
}
