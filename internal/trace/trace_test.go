package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_ShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, true},
		{LevelError, ScopeModule, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeModule, false},
		{LevelDetail, ScopeModule, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.ShouldEmit(tt.scope), "%s/%s", tt.level, tt.scope)
	}
}

func TestParse(t *testing.T) {
	l, err := ParseLevel("DETAIL")
	require.NoError(t, err)
	assert.Equal(t, LevelDetail, l)
	_, err = ParseLevel("loud")
	assert.Error(t, err)

	m, err := ParseMode("both")
	require.NoError(t, err)
	assert.Equal(t, ModeBoth, m)

	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatNDJSON, f)
	_, err = ParseFormat("chrome")
	assert.Error(t, err)
}

func TestSpan_RingCapturesBeginEnd(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	root := Begin(ring, ScopeDriver, "build", 0)
	child := Begin(ring, ScopePass, "lower", root.ID())
	Point(ring, ScopeNode, "rewrite", child.ID(), "arith.negate")
	child.WithExtra("mutations", "3").End("")
	root.End("ok")

	evs := ring.Snapshot()
	require.Len(t, evs, 5)
	assert.Equal(t, KindSpanBegin, evs[0].Kind)
	assert.Equal(t, root.ID(), evs[1].ParentID)
	assert.Equal(t, KindPoint, evs[2].Kind)
	assert.Equal(t, "arith.negate", evs[2].Detail)
	assert.Equal(t, "3", evs[3].Extra["mutations"])
	assert.Equal(t, "ok", evs[4].Detail)
}

func TestSpan_FilteredByLevel(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase)
	s := Begin(ring, ScopeNode, "op", 0)
	assert.Zero(t, s.ID())
	s.End("")
	Point(ring, ScopeModule, "file", 0, "")
	assert.Empty(t, ring.Snapshot())
}

func TestRing_Wraps(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, n := range []string{"a", "b", "c"} {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopeDriver, Name: n})
	}
	evs := ring.Snapshot()
	require.Len(t, evs, 2)
	assert.Equal(t, "b", evs[0].Name)
	assert.Equal(t, "c", evs[1].Name)
}

func TestStream_Formats(t *testing.T) {
	var text bytes.Buffer
	st := NewStreamTracer(&text, LevelPhase, FormatText)
	s := Begin(st, ScopePass, "parse", 0)
	s.WithExtra("b", "2").WithExtra("a", "1").End("done")
	require.NoError(t, st.Flush())
	out := text.String()
	assert.Contains(t, out, "→ parse")
	assert.Contains(t, out, "← parse (done) {a=1, b=2}")

	var nd bytes.Buffer
	js := NewStreamTracer(&nd, LevelPhase, FormatNDJSON)
	Point(js, ScopeDriver, "start", 0, "x")
	require.NoError(t, js.Flush())
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(nd.String())), &got))
	assert.Equal(t, "point", got["kind"])
	assert.Equal(t, "start", got["name"])
}

func TestMulti_FansOut(t *testing.T) {
	a := NewRingTracer(4, LevelDebug)
	b := NewRingTracer(4, LevelDebug)
	m := NewMultiTracer(LevelDebug, a, b)
	Point(m, ScopeDriver, "x", 0, "")
	assert.Len(t, a.Snapshot(), 1)
	assert.Len(t, b.Snapshot(), 1)
	require.NoError(t, m.Close())
}

func TestContext_DefaultsToNop(t *testing.T) {
	assert.False(t, FromContext(context.Background()).Enabled())
	ring := NewRingTracer(1, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	assert.Same(t, ring, FromContext(ctx))
}

func TestNew_OffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	require.NoError(t, err)
	assert.False(t, tr.Enabled())
}

func TestNew_ErrorLevelUsesRing(t *testing.T) {
	var out bytes.Buffer
	tr, err := New(Config{Level: LevelError, Mode: ModeStream, Output: &out})
	require.NoError(t, err)
	_, isRing := tr.(*RingTracer)
	require.True(t, isRing)

	Begin(tr, ScopePass, "lower", 0).End("failed")
	assert.Zero(t, out.Len())

	require.NoError(t, Dump(tr, &out, FormatText))
	assert.Contains(t, out.String(), "← lower (failed)")
}

func TestNew_BothDumpsRing(t *testing.T) {
	var stream, dump bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &stream, RingSize: 4})
	require.NoError(t, err)
	Point(tr, ScopeDriver, "compile", 0, "main.c")
	require.NoError(t, tr.Flush())
	assert.Contains(t, stream.String(), "• compile (main.c)")

	require.NoError(t, Dump(tr, &dump, FormatNDJSON))
	assert.Contains(t, dump.String(), `"name":"compile"`)

	// stream tracers keep nothing
	dump.Reset()
	require.NoError(t, Dump(NewStreamTracer(&stream, LevelPhase, FormatText), &dump, FormatText))
	assert.Zero(t, dump.Len())
}

func TestNew_FormatFromPath(t *testing.T) {
	assert.Equal(t, FormatNDJSON, Config{OutputPath: "run.ndjson"}.OutputFormat())
	assert.Equal(t, FormatText, Config{OutputPath: "run.log"}.OutputFormat())
	assert.Equal(t, FormatNDJSON, Config{Format: FormatNDJSON}.OutputFormat())
}

func TestStream_BuffersUntilFlush(t *testing.T) {
	var out bytes.Buffer
	st := NewStreamTracer(&out, LevelPhase, FormatText)
	Point(st, ScopePass, "parse", 0, "")
	assert.Zero(t, out.Len())
	require.NoError(t, st.Close())
	assert.Contains(t, out.String(), "pass")
	assert.Contains(t, out.String(), "• parse")
}

func TestSpan_EndOnce(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase)
	before := OpenSpans()
	s := Begin(ring, ScopePass, "emit", 0)
	assert.Equal(t, before+1, OpenSpans())
	s.End("")
	s.End("again")
	assert.Equal(t, before, OpenSpans())
	assert.Len(t, ring.Snapshot(), 2)
}

func TestHeartbeat_ReportsOpenSpans(t *testing.T) {
	ring := NewRingTracer(64, LevelPhase)
	s := Begin(ring, ScopeDriver, "build", 0)
	h := StartHeartbeat(ring, time.Millisecond)
	require.NotNil(t, h)
	require.Eventually(t, func() bool {
		for _, ev := range ring.Snapshot() {
			if ev.Kind == KindHeartbeat {
				return ev.Extra["open_spans"] != ""
			}
		}
		return false
	}, time.Second, time.Millisecond)
	h.Stop()
	h.Stop()
	s.End("")

	assert.Nil(t, StartHeartbeat(Nop, time.Millisecond))
	var none *Heartbeat
	none.Stop()
}
