package statechart

// TransitionRecord describes one handled event. Its slices alias the
// machine's scratch space and are only valid during the callback.
type TransitionRecord struct {
	Event   Event
	Rules   []int     // fired rules in selection order
	Exited  []StateID // exit order
	Entered []StateID // entry order
}

// Observer is notified synchronously from Send. Implementations must not
// call back into the machine.
type Observer interface {
	OnTransition(rec TransitionRecord)
	OnIgnored(evt Event)
}

// Observers fans out to several observers in order.
type Observers []Observer

func (o Observers) OnTransition(rec TransitionRecord) {
	for _, obs := range o {
		obs.OnTransition(rec)
	}
}

func (o Observers) OnIgnored(evt Event) {
	for _, obs := range o {
		obs.OnIgnored(evt)
	}
}
