package production

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comalice/statechart"
)

type noContext struct{}

const deviceChart = `
id: device
initial: standby
states:
  - id: standby
    on:
      - event: power
        target: running
  - id: running
    type: parallel
    states:
      - id: display
        initial: dim
        states:
          - id: dim
            on:
              - event: brighten
                target: bright
          - id: bright
      - id: audio
        initial: muted
        states:
          - id: muted
          - id: playing
    on:
      - event: power
        target: standby
      - event: ping
        guard: always
`

func compileDevice(t *testing.T) *statechart.Descriptor[noContext] {
	t.Helper()
	reg := statechart.NewRegistry[noContext]().
		Guard("always", func(*noContext, statechart.Event) bool { return true })
	d, err := statechart.CompileChart([]byte(deviceChart), reg)
	require.NoError(t, err)
	return d
}
