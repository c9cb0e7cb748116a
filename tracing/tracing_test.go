package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"pcbkern/kernel"
)

func attr(spans tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, kv := range spans.Attributes {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func byName(stubs tracetest.SpanStubs, name string) (tracetest.SpanStub, bool) {
	for _, s := range stubs {
		if s.Name == name {
			return s, true
		}
	}
	return tracetest.SpanStub{}, false
}

// The global provider is installed once, so all cases share one exporter.
func TestTracing(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	shutdown, err := InitWithExporter("pcbkern", "test", exp)
	require.NoError(t, err)
	defer shutdown(context.Background())

	t.Run("span status", func(t *testing.T) {
		exp.Reset()
		_, ok := StartSpan(context.Background(), "ok")
		EndSpan(ok, nil)
		_, bad := StartSpan(context.Background(), "bad")
		EndSpan(bad, errors.New("boom"))
		EndSpan(nil, nil)

		stubs := exp.GetSpans()
		require.Len(t, stubs, 2)
		assert.Equal(t, codes.Ok, stubs[0].Status.Code)
		assert.Equal(t, codes.Error, stubs[1].Status.Code)
		assert.Equal(t, "boom", stubs[1].Status.Description)
	})

	t.Run("process tree", func(t *testing.T) {
		exp.Reset()
		procs := NewProcesses(context.Background(), "boot-1")

		procs.Spawned(kernel.TaskInfo{ID: 0, Parent: kernel.NoTask, Priority: 3})
		procs.Spawned(kernel.TaskInfo{ID: 4, Parent: 0, Priority: 1, Stack: 0x2003a000})
		assert.Equal(t, 2, procs.Open())

		procs.Panicked(kernel.PanicInfo{TaskID: 4, Value: "boom"})
		procs.Exited(kernel.TaskInfo{ID: 4, Parent: 0})
		procs.Exited(kernel.TaskInfo{ID: 9})
		assert.Equal(t, 1, procs.Open())

		procs.Close()
		assert.Zero(t, procs.Open())

		stubs := exp.GetSpans()
		require.Len(t, stubs, 3)

		boot, ok := byName(stubs, "kernel")
		require.True(t, ok)
		v, ok := attr(boot, "kernel.boot_id")
		require.True(t, ok)
		assert.Equal(t, "boot-1", v.AsString())

		parent, ok := byName(stubs, "process 0")
		require.True(t, ok)
		child, ok := byName(stubs, "process 4")
		require.True(t, ok)

		assert.Equal(t, boot.SpanContext.SpanID(), parent.Parent.SpanID())
		assert.Equal(t, parent.SpanContext.SpanID(), child.Parent.SpanID())
		assert.Equal(t, codes.Error, child.Status.Code)

		v, ok = attr(child, "pcb.slot")
		require.True(t, ok)
		assert.Equal(t, int64(4), v.AsInt64())
		v, ok = attr(child, "pcb.stack")
		require.True(t, ok)
		assert.Equal(t, "2003a000", v.AsString())
	})
}
