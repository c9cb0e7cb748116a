package console

import (
	"pcbkern/hal"
	"pcbkern/kernel"
	"pcbkern/proto"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

const (
	fontHeight = 10
	fontOffset = 6
)

// Rows returns how many text rows fit on fb.
func Rows(fb hal.Framebuffer) int {
	if fb == nil {
		return 0
	}
	return fb.Height() / fontHeight
}

// Service renders MsgConsoleWrite text onto the display framebuffer.
type Service struct {
	disp hal.Display
	ep   kernel.Capability

	fb hal.Framebuffer
	d  *fbDisplay
	t  *tinyterm.Terminal
}

func New(disp hal.Display, ep kernel.Capability) *Service {
	return &Service{disp: disp, ep: ep}
}

// Step drains the mailbox into the terminal and presents the result once.
func (s *Service) Step(ctx *kernel.Context) {
	if s.t == nil && s.disp != nil {
		if s.fb = s.disp.Framebuffer(); s.fb != nil {
			s.d = newFBDisplay(s.fb)
			s.reset()
		}
	}

	dirty := false
	for {
		msg, ok := ctx.Recv(s.ep)
		if !ok {
			break
		}
		if s.t == nil {
			continue
		}
		switch proto.Kind(msg.Kind) {
		case proto.MsgConsoleWrite:
			_, _ = s.t.Write(msg.Payload())
			dirty = true
		case proto.MsgConsoleClear:
			s.reset()
			dirty = true
		}
	}

	if dirty {
		s.t.Display()
	}
}

func (s *Service) reset() {
	s.t = tinyterm.NewTerminal(s.d)
	s.t.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: fontHeight,
		FontOffset: fontOffset,
	})
	s.fb.ClearRGB(0, 0, 0)
}
