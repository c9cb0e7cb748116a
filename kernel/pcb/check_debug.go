//go:build debug

package pcb

const debug = true
