package udp

import (
	"log/slog"
	"time"

	"trafficalert/internal/gdl90"
	"trafficalert/internal/logging"
	"trafficalert/internal/traffic"
)

// Sender is the datagram sink a Picture writes to.
type Sender interface {
	Send(payload []byte) error
}

// Picture implements traffic.Display by sending a heartbeat, an ownship
// report and one traffic report per contact after every update cycle.
type Picture struct {
	out      Sender
	log      *slog.Logger
	ownID    uint32
	callsign string
	now      func() time.Time
}

func NewPicture(out Sender, ownID uint32, callsign string, log *slog.Logger) *Picture {
	return &Picture{
		out:      out,
		log:      logging.OrDiscard(log),
		ownID:    ownID,
		callsign: callsign,
		now:      time.Now,
	}
}

func (p *Picture) Show(own traffic.Ownship, view []traffic.Entry) {
	frames := make([][]byte, 0, 2+len(view))
	frames = append(frames,
		gdl90.HeartbeatFrameAt(p.now().UTC(), true, false),
		gdl90.OwnshipReportFrame(traffic.OwnshipToGDL90(own, p.ownID, p.callsign)),
	)
	for _, e := range view {
		frames = append(frames, gdl90.TrafficReportFrame(traffic.ToGDL90(e.Contact)))
	}
	for _, f := range frames {
		if err := p.out.Send(f); err != nil {
			p.log.Warn("gdl90 send failed", slog.Any("err", err))
			return
		}
	}
}
