package traffic

import (
	"time"

	"trafficalert/internal/clock"
)

func flarmReport(id uint32, g Geometry) Report {
	return Report{Identity: Identity{Type: IDFLARM, ID: id}, Geometry: g}
}

// northOf returns the latitude m metres north of lat.
func northOf(lat, m float64) float64 {
	return lat + m/earthRadiusM*radToDeg
}

type fakeVoice struct {
	clk   *clock.Manual
	got   []Announcement
	times []int64
}

func (v *fakeVoice) Announce(a Announcement) {
	v.got = append(v.got, a)
	if v.clk != nil {
		v.times = append(v.times, v.clk.Millis())
	}
}

type fakeBuzzer struct {
	beeps []time.Duration
}

func (b *fakeBuzzer) Beep(d time.Duration) {
	b.beeps = append(b.beeps, d)
}

type fakeDisplay struct {
	shows  int
	labels []string
}

func (d *fakeDisplay) Show(_ Ownship, view []Entry) {
	d.shows++
	d.labels = d.labels[:0]
	for _, e := range view {
		d.labels = append(d.labels, e.LabelString())
	}
}
