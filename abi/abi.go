// Package abi is the C ABI façade (spec.md §6): a flat, handle-based API
// shaped to be exported via cgo from a package main entry point; no such
// entry point is included in this repository. It mirrors
// _examples/original_source/keymagic-core/src/ffi.rs function-for-function,
// but trades ffi.rs's boxed-pointer EngineHandle for a registry-index
// handle, so no Go pointer ever crosses the cgo boundary.
package abi

import (
	"os"
	"sync"

	"github.com/GoFeGroup/keymagic-go/engine"
	"github.com/GoFeGroup/keymagic-go/vkey"
)

// ResultCode mirrors ffi.rs's KeyMagicResult enum exactly, including its
// numeric values, since a cgo caller switches on the raw integer.
type ResultCode int32

const (
	Success               ResultCode = 0
	ErrorInvalidHandle    ResultCode = -1
	ErrorInvalidParameter ResultCode = -2
	ErrorEngineFailure    ResultCode = -3
	ErrorUtf8Conversion   ResultCode = -4
	ErrorNoKeyboard       ResultCode = -5
)

// Version is the library version reported by keymagic_get_version.
const Version = "1.0.0"

// ProcessKeyOutput mirrors ffi.rs's ProcessKeyOutput struct, using Go
// strings in place of the owned/null-terminated C strings the cgo shim
// allocates from these fields.
type ProcessKeyOutput struct {
	ActionType    int32
	Text          string
	DeleteCount   int32
	ComposingText string
	IsProcessed   bool
}

// registry hands out opaque handles for *engine.Engine instances, playing
// the role of ffi.rs's Mutex<Option<KeyMagicEngine>>-guarded EngineHandle
// without ever exposing a Go pointer to the cgo caller (passing Go memory
// across the cgo boundary is unsafe; an index into a Go-side map is not).
type registry struct {
	mu      sync.Mutex
	engines map[uint64]*engine.Engine
	next    uint64
}

var reg = registry{engines: make(map[uint64]*engine.Engine)}

// NewEngine allocates a fresh, unloaded engine and returns its handle.
func NewEngine() uint64 {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.next++
	h := reg.next
	reg.engines[h] = engine.NewEngine()
	return h
}

// FreeEngine releases a handle. Freeing an unknown or already-freed handle
// is a no-op, matching ffi.rs's null-check-then-drop behavior.
func FreeEngine(handle uint64) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.engines, handle)
}

func lookup(handle uint64) (*engine.Engine, ResultCode) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	e, ok := reg.engines[handle]
	if !ok {
		return nil, ErrorInvalidHandle
	}
	return e, Success
}

// LoadKeyboardFromPath reads a km2 file from disk and loads it, mirroring
// keymagic_engine_load_keyboard.
func LoadKeyboardFromPath(handle uint64, path string) ResultCode {
	if path == "" {
		return ErrorInvalidParameter
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ErrorEngineFailure
	}
	return LoadKeyboardFromMemory(handle, data)
}

// LoadKeyboardFromMemory loads a km2 file already read into memory,
// mirroring keymagic_engine_load_keyboard_from_memory.
func LoadKeyboardFromMemory(handle uint64, data []byte) ResultCode {
	if len(data) == 0 {
		return ErrorInvalidParameter
	}
	e, code := lookup(handle)
	if code != Success {
		return code
	}
	if err := e.LoadKeyboard(data); err != nil {
		return ErrorEngineFailure
	}
	return Success
}

// ProcessKey mirrors keymagic_engine_process_key: process one key event
// against the live engine state and report the resulting edit.
func ProcessKey(handle uint64, input engine.KeyInput) (ProcessKeyOutput, ResultCode) {
	e, code := lookup(handle)
	if code != Success {
		return ProcessKeyOutput{}, code
	}
	out, err := e.ProcessKey(input)
	if err != nil {
		return ProcessKeyOutput{}, ErrorNoKeyboard
	}
	return toOutput(out), Success
}

// ProcessKeyWin mirrors keymagic_engine_process_key_win: translate a
// Windows virtual-key code to the engine's own code before processing.
// An unrecognized Windows code is passed through unchanged, exactly as
// ffi.rs's variant does, to allow host-side custom handling.
func ProcessKeyWin(handle uint64, winVKCode int, ch rune, hasChar bool, mods engine.ModifierState) (ProcessKeyOutput, ResultCode) {
	vk, ok := fromWindowsVK(winVKCode)
	if !ok {
		vk = rawVK(winVKCode)
	}
	return ProcessKey(handle, engine.KeyInput{
		KeyCode: vk, Modifiers: mods, Character: ch, HasChar: hasChar,
	})
}

// Reset mirrors keymagic_engine_reset.
func Reset(handle uint64) ResultCode {
	e, code := lookup(handle)
	if code != Success {
		return code
	}
	e.Reset()
	return Success
}

// GetComposingText mirrors keymagic_engine_get_composition /
// keymagic_engine_get_composing_text.
func GetComposingText(handle uint64) (string, ResultCode) {
	e, code := lookup(handle)
	if code != Success {
		return "", code
	}
	return e.ComposingText(), Success
}

func fromWindowsVK(code int) (vkey.VirtualKey, bool) {
	return vkey.FromWindowsVK(uint16(code))
}

func rawVK(code int) vkey.VirtualKey {
	return vkey.VirtualKey(uint16(code))
}

func toOutput(out engine.Output) ProcessKeyOutput {
	return ProcessKeyOutput{
		ActionType:    int32(out.Action),
		Text:          out.InsertText,
		DeleteCount:   int32(out.DeleteCount),
		ComposingText: out.ComposingText,
		IsProcessed:   out.IsProcessed,
	}
}
