package traffic

import (
	"cmp"
	"slices"
)

const hexDigits = "0123456789ABCDEF"

// Entry is a ranked view element. It borrows the contact and is only valid
// until the next update cycle.
type Entry struct {
	Contact  *Contact
	Distance float64
	Label    [2]byte
}

func (e Entry) LabelString() string {
	return string(e.Label[:])
}

func newEntry(c *Contact) Entry {
	id := c.Identity.ID
	return Entry{
		Contact:  c,
		Distance: c.AdjDist,
		Label:    [2]byte{hexDigits[(id>>4)&0xF], hexDigits[id&0xF]},
	}
}

// CompareByDistance orders nearest first, identity breaking ties so the
// display does not flicker between equal distances.
func CompareByDistance(a, b Entry) int {
	if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
		return c
	}
	return compareIdentity(a.Contact.Identity, b.Contact.Identity)
}

// CompareByAlarm orders the most severe alarm first, then nearest, then by
// identity.
func CompareByAlarm(a, b Entry) int {
	if a.Contact.AlarmLevel != b.Contact.AlarmLevel {
		return cmp.Compare(b.Contact.AlarmLevel, a.Contact.AlarmLevel)
	}
	return CompareByDistance(a, b)
}

// Ranker keeps the two sorted views of the live contacts in fixed arrays.
type Ranker struct {
	byDist  [MaxContacts]Entry
	byAlarm [MaxContacts]Entry
	n       int
}

// Rebuild snapshots the live contacts of t and sorts both views.
func (r *Ranker) Rebuild(t *Table) {
	r.n = 0
	t.Each(func(c *Contact) {
		e := newEntry(c)
		r.byDist[r.n] = e
		r.byAlarm[r.n] = e
		r.n++
	})
	for i := r.n; i < MaxContacts; i++ {
		r.byDist[i] = Entry{}
		r.byAlarm[i] = Entry{}
	}
	slices.SortStableFunc(r.byDist[:r.n], CompareByDistance)
	slices.SortStableFunc(r.byAlarm[:r.n], CompareByAlarm)
}

// ByDistance returns the nearest-first view. Callers must not modify it.
func (r *Ranker) ByDistance() []Entry {
	return r.byDist[:r.n]
}

// ByAlarm returns the most-threatening-first view. Callers must not modify it.
func (r *Ranker) ByAlarm() []Entry {
	return r.byAlarm[:r.n]
}

func (r *Ranker) Len() int {
	return r.n
}
