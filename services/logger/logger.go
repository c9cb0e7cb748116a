package logger

import (
	"pcbkern/hal"
	"pcbkern/kernel"
	"pcbkern/proto"
)

// Service writes MsgLogLine payloads to a hal.Logger.
type Service struct {
	log hal.Logger
	ep  kernel.Capability
}

func New(log hal.Logger, ep kernel.Capability) *Service {
	return &Service{log: log, ep: ep}
}

// Step drains the mailbox, then blocks until the next message.
func (s *Service) Step(ctx *kernel.Context) {
	for {
		msg, ok := ctx.Recv(s.ep)
		if !ok {
			return
		}
		if s.log == nil || msg.Kind != uint16(proto.MsgLogLine) {
			continue
		}
		s.log.WriteLineBytes(msg.Payload())
	}
}
