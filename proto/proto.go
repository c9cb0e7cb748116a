package proto

// Kind identifies the message type carried in kernel.Message.Kind.
type Kind uint16

const (
	MsgLogLine Kind = iota + 1
	MsgConsoleWrite
	MsgConsoleClear
)

func (k Kind) String() string {
	switch k {
	case MsgLogLine:
		return "log_line"
	case MsgConsoleWrite:
		return "console_write"
	case MsgConsoleClear:
		return "console_clear"
	default:
		return "unknown"
	}
}
