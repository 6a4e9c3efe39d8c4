package extensibility

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/statechart"
)

func runAction(t *testing.T, v *statechart.Vars, name string, evt statechart.Event) error {
	t.Helper()
	a, err := ParseAction(name, nil)
	require.NoError(t, err)
	return a(v, evt)
}

func TestBuiltinActions(t *testing.T) {
	v := statechart.NewVars(map[string]any{"count": 2})
	none := statechart.NewEvent("test", nil)

	require.NoError(t, runAction(t, &v, "set mode=fast", none))
	require.NoError(t, runAction(t, &v, "set limit = 10", none))
	require.NoError(t, runAction(t, &v, "inc count", none))
	require.NoError(t, runAction(t, &v, "inc fresh", none))
	require.NoError(t, runAction(t, &v, "dec limit", none))
	require.NoError(t, runAction(t, &v, "assign payload", statechart.NewEvent("load", "data")))

	assert.Equal(t, map[string]any{
		"count":   3.0,
		"fresh":   1.0,
		"limit":   9.0,
		"mode":    "fast",
		"payload": "data",
	}, v.Snapshot())

	require.NoError(t, runAction(t, &v, "unset payload", none))
	_, ok := v.Get("payload")
	assert.False(t, ok)

	err := runAction(t, &v, "inc mode", none)
	assert.ErrorContains(t, err, "not numeric")
}

func TestParseActionRejectsMalformed(t *testing.T) {
	for _, name := range []string{"set", "set novalue", "set =1", "jump key", "inc"} {
		_, err := ParseAction(name, nil)
		assert.Error(t, err, name)
	}
}

func TestLoggedAction(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	boom := errors.New("boom")

	a := Logged(logger, "explode", func(*statechart.Vars, statechart.Event) error { return boom })
	v := statechart.NewVars(nil)
	assert.ErrorIs(t, a(&v, statechart.NewEvent("go", nil)), boom)
	assert.Contains(t, buf.String(), "action=explode")
	assert.Contains(t, buf.String(), "err=boom")

	assert.Nil(t, Logged[statechart.Vars](logger, "nil", nil))
}
