package console

import (
	"pcbkern/kernel"
	"pcbkern/proto"
)

// Write sends a best-effort payload to the console service.
func Write(ctx *kernel.Context, conCap kernel.Capability, payload []byte) kernel.SendResult {
	if ctx == nil {
		return kernel.SendErrInvalidFromCap
	}
	if len(payload) > kernel.MaxMessageBytes {
		payload = payload[:kernel.MaxMessageBytes]
	}
	return ctx.SendToCapResult(conCap, uint16(proto.MsgConsoleWrite), payload, kernel.Capability{})
}

// WriteString sends a best-effort string to the console service.
func WriteString(ctx *kernel.Context, conCap kernel.Capability, s string) kernel.SendResult {
	return Write(ctx, conCap, []byte(s))
}

// Clear requests a console reset.
func Clear(ctx *kernel.Context, conCap kernel.Capability) kernel.SendResult {
	if ctx == nil {
		return kernel.SendErrInvalidFromCap
	}
	return ctx.SendToCapResult(conCap, uint16(proto.MsgConsoleClear), nil, kernel.Capability{})
}
