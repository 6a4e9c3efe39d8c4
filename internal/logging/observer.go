package logging

import (
	"context"
	"log/slog"

	"github.com/comalice/statechart"
)

// Namer resolves state IDs to names. *statechart.Descriptor satisfies it.
type Namer interface {
	Name(id statechart.StateID) string
}

// Observer logs machine steps at debug level.
type Observer struct {
	logger *slog.Logger
	names  Namer
}

// NewObserver returns a statechart.Observer writing to logger.
func NewObserver(logger *slog.Logger, names Namer) *Observer {
	return &Observer{logger: logger, names: names}
}

// OnTransition implements statechart.Observer.
func (o *Observer) OnTransition(rec statechart.TransitionRecord) {
	if !o.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	o.logger.Debug("transition",
		"event", rec.Event.Type,
		"rules", len(rec.Rules),
		"exited", o.resolve(rec.Exited),
		"entered", o.resolve(rec.Entered),
	)
}

// OnIgnored implements statechart.Observer.
func (o *Observer) OnIgnored(evt statechart.Event) {
	o.logger.Debug("event ignored", "event", evt.Type)
}

func (o *Observer) resolve(ids []statechart.StateID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = o.names.Name(id)
	}
	return names
}
