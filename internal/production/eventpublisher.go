package production

import (
	"sync/atomic"
	"time"

	"github.com/comalice/statechart"
)

// PublishedTransition is a self-contained copy of one machine step, safe to
// hand to other goroutines.
type PublishedTransition struct {
	Chart   string           `json:"chart"`
	Event   statechart.Event `json:"event"`
	Ignored bool             `json:"ignored,omitempty"`
	Exited  []string         `json:"exited,omitempty"`
	Entered []string         `json:"entered,omitempty"`
	Time    time.Time        `json:"time"`
}

// Namer resolves state IDs to names. *statechart.Descriptor satisfies it.
type Namer interface {
	ID() string
	Name(id statechart.StateID) string
}

// ChannelPublisher is a statechart.Observer that forwards every step to a
// channel. Publishing never blocks the machine: when the channel is full the
// record is dropped and counted.
type ChannelPublisher struct {
	ch      chan<- PublishedTransition
	names   Namer
	dropped atomic.Uint64
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- PublishedTransition, names Namer) *ChannelPublisher {
	return &ChannelPublisher{ch: ch, names: names}
}

// OnTransition implements statechart.Observer.
func (p *ChannelPublisher) OnTransition(rec statechart.TransitionRecord) {
	p.publish(PublishedTransition{
		Chart:   p.names.ID(),
		Event:   rec.Event,
		Exited:  p.resolve(rec.Exited),
		Entered: p.resolve(rec.Entered),
		Time:    time.Now(),
	})
}

// OnIgnored implements statechart.Observer.
func (p *ChannelPublisher) OnIgnored(evt statechart.Event) {
	p.publish(PublishedTransition{
		Chart:   p.names.ID(),
		Event:   evt,
		Ignored: true,
		Time:    time.Now(),
	})
}

// Dropped returns how many records were discarded on backpressure.
func (p *ChannelPublisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Close closes the output channel. The publisher must not be used afterwards.
func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}

func (p *ChannelPublisher) publish(t PublishedTransition) {
	select {
	case p.ch <- t:
	default:
		p.dropped.Add(1)
	}
}

func (p *ChannelPublisher) resolve(ids []statechart.StateID) []string {
	if len(ids) == 0 {
		return nil
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = p.names.Name(id)
	}
	return names
}
