package pcb

import "fmt"

func assertf(ok bool, format string, args ...any) {
	if debug && !ok {
		panic(fmt.Sprintf("pcb: "+format, args...))
	}
}
