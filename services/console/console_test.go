package console

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientcon "pcbkern/client/console"
	"pcbkern/hal"
	"pcbkern/kernel"
)

type testFB struct {
	w, h     int
	buf      []byte
	presents int
	clears   int
}

func newTestFB(w, h int) *testFB {
	return &testFB{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (f *testFB) Width() int              { return f.w }
func (f *testFB) Height() int             { return f.h }
func (f *testFB) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *testFB) StrideBytes() int        { return f.w * 2 }
func (f *testFB) Buffer() []byte          { return f.buf }
func (f *testFB) Present() error          { f.presents++; return nil }

func (f *testFB) ClearRGB(r, g, b uint8) {
	f.clears++
	p := hal.RGB565(r, g, b)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = byte(p)
		f.buf[i+1] = byte(p >> 8)
	}
}

func (f *testFB) pixel(x, y int) uint16 {
	off := y*f.StrideBytes() + x*2
	return uint16(f.buf[off]) | uint16(f.buf[off+1])<<8
}

type testDisplay struct{ fb hal.Framebuffer }

func (d testDisplay) Framebuffer() hal.Framebuffer { return d.fb }

var white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

func TestFBDisplaySetPixel(t *testing.T) {
	fb := newTestFB(4, 3)
	d := newFBDisplay(fb)

	x, y := d.Size()
	assert.Equal(t, int16(4), x)
	assert.Equal(t, int16(3), y)

	d.SetPixel(3, 2, white)
	assert.Equal(t, uint16(0xFFFF), fb.pixel(3, 2))

	assert.NotPanics(t, func() {
		d.SetPixel(-1, 0, white)
		d.SetPixel(4, 0, white)
		d.SetPixel(0, 3, white)
	})
}

func TestFBDisplayFillRectangleClamps(t *testing.T) {
	fb := newTestFB(4, 4)
	d := newFBDisplay(fb)

	require.NoError(t, d.FillRectangle(2, 2, 10, 10, white))

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := uint16(0)
			if x >= 2 && y >= 2 {
				want = 0xFFFF
			}
			assert.Equal(t, want, fb.pixel(x, y), "pixel %d,%d", x, y)
		}
	}

	require.NoError(t, d.FillRectangle(-5, -5, 2, 2, white), "fully outside")
	require.NoError(t, d.Display())
	assert.Equal(t, 1, fb.presents)
}

func TestFBDisplayNilFramebuffer(t *testing.T) {
	d := newFBDisplay(nil)
	x, y := d.Size()
	assert.Zero(t, x)
	assert.Zero(t, y)
	assert.NotPanics(t, func() { d.SetPixel(0, 0, white) })
	assert.NoError(t, d.FillRectangle(0, 0, 1, 1, white))
	assert.NoError(t, d.Display())
}

type stepFunc func(*kernel.Context)

func (f stepFunc) Step(ctx *kernel.Context) { f(ctx) }

func TestServicePresentsAfterDrain(t *testing.T) {
	fb := newTestFB(160, 80)
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	_, err := k.Spawn(kernel.NoTask, 10, New(testDisplay{fb: fb}, ep.Restrict(kernel.RightRecv)))
	require.NoError(t, err)

	require.True(t, k.Step())
	assert.Equal(t, 1, fb.clears, "terminal is built on first step")
	base := fb.presents

	_, err = k.Spawn(kernel.NoTask, 1, stepFunc(func(ctx *kernel.Context) {
		to := ep.Restrict(kernel.RightSend)
		assert.Equal(t, kernel.SendOK, clientcon.WriteString(ctx, to, "slot 0\r\n"))
		assert.Equal(t, kernel.SendOK, clientcon.WriteString(ctx, to, "slot 1\r\n"))
		ctx.Exit()
	}))
	require.NoError(t, err)

	for k.Step() {
	}
	assert.GreaterOrEqual(t, fb.presents, base+1, "drained batch is presented")
	base = fb.presents

	_, err = k.Spawn(kernel.NoTask, 1, stepFunc(func(ctx *kernel.Context) {
		assert.Equal(t, kernel.SendOK, clientcon.Clear(ctx, ep.Restrict(kernel.RightSend)))
		ctx.Exit()
	}))
	require.NoError(t, err)

	for k.Step() {
	}
	assert.Equal(t, 2, fb.clears)
	assert.Greater(t, fb.presents, base)
}

func TestServiceWithoutDisplayDrains(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	_, err := k.Spawn(kernel.NoTask, 10, New(nil, ep.Restrict(kernel.RightRecv)))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		_, err = k.Spawn(kernel.NoTask, 1, stepFunc(func(ctx *kernel.Context) {
			assert.Equal(t, kernel.SendOK, clientcon.WriteString(ctx, ep.Restrict(kernel.RightSend), "x"))
			ctx.Exit()
		}))
		if err != nil {
			break
		}
	}
	assert.NotPanics(t, func() {
		for k.Step() {
		}
	})
}

func TestRows(t *testing.T) {
	assert.Equal(t, 8, Rows(newTestFB(10, 80)))
	assert.Zero(t, Rows(nil))
}
