package traffic

import "cmp"

// evaluate recomputes geometry and the alarm level of c. The level is the
// higher of what the source reported and what the local zone implies.
func (cfg Config) evaluate(own *Contact, c *Contact) {
	normalize(own, c)
	c.AdjDist = AdjustedDistance(c.Distance, c.RelativeVertical, cfg.VerticalSlope)
	c.Zone = cfg.classify(c.AdjDist)
	c.AlarmLevel = max(c.reported, c.Zone.Alarm())
}

// Assess re-evaluates every live contact against own and returns the most
// threatening one, or nil when the table is empty.
func Assess(cfg Config, own *Contact, t *Table) *Contact {
	cfg = cfg.withDefaults()
	var top *Contact
	t.Each(func(c *Contact) {
		cfg.evaluate(own, c)
		if top == nil || compareThreat(c, top) < 0 {
			top = c
		}
	})
	return top
}

// compareThreat orders by alarm level (highest first), then AdjDist, then
// identity.
func compareThreat(a, b *Contact) int {
	if a.AlarmLevel != b.AlarmLevel {
		return cmp.Compare(b.AlarmLevel, a.AlarmLevel)
	}
	if c := cmp.Compare(a.AdjDist, b.AdjDist); c != 0 {
		return c
	}
	return compareIdentity(a.Identity, b.Identity)
}
