// Package mobile is a facade shaped for a JNI/gomobile host (Android/iOS):
// a second, simpler embedding of the same abi contract for mobile callers
// that prefer plain method calls over C structs and numeric handles.
package mobile

import (
	"sync"

	"github.com/GoFeGroup/keymagic-go/engine"
	"github.com/GoFeGroup/keymagic-go/vkey"
)

// MobileOutput mirrors engine.Output with gomobile-friendly field types:
// gomobile bindings cannot export a Go int-based enum directly to Java/ObjC,
// so Action is exposed as a plain int32.
type MobileOutput struct {
	Action        int32
	Text          string
	DeleteCount   int
	ComposingText string
	IsProcessed   bool
}

// MobileEngine wraps one engine.Engine behind a gomobile-exportable API.
// gomobile only binds exported methods on exported structs with
// gomobile-compatible parameter/return types, which rules out exposing
// engine.Engine's own KeyInput/Output types (KeyInput carries a rune, a
// nested ModifierState struct, and Go-defined key and action types)
// directly across the boundary.
type MobileEngine struct {
	mu  sync.Mutex
	eng *engine.Engine
}

// NewMobileEngine creates an unloaded mobile engine facade.
func NewMobileEngine() *MobileEngine {
	return &MobileEngine{eng: engine.NewEngine()}
}

// Load parses and installs a km2 keyboard layout.
func (m *MobileEngine) Load(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eng.LoadKeyboard(data)
}

// ProcessKey processes one keystroke. winVKCode is a Windows virtual-key
// code as delivered by the host's soft-keyboard layer; hasChar/char carry
// the character the host's own layout would have produced, if any.
func (m *MobileEngine) ProcessKey(winVKCode int, char rune, hasChar bool, shift, ctrl, alt, capsLock bool) (MobileOutput, error) {
	vk, ok := vkey.FromWindowsVK(uint16(winVKCode))
	if !ok {
		vk = vkey.VirtualKey(uint16(winVKCode))
	}

	input := engine.KeyInput{
		KeyCode:   vk,
		Character: char,
		HasChar:   hasChar,
		Modifiers: engine.ModifierState{
			Shift:    shift,
			Ctrl:     ctrl,
			Alt:      alt,
			CapsLock: capsLock,
		},
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out, err := m.eng.ProcessKey(input)
	if err != nil {
		return MobileOutput{}, err
	}
	return MobileOutput{
		Action:        int32(out.Action),
		Text:          out.InsertText,
		DeleteCount:   out.DeleteCount,
		ComposingText: out.ComposingText,
		IsProcessed:   out.IsProcessed,
	}, nil
}

// Reset clears the composing buffer.
func (m *MobileEngine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eng.Reset()
}

// ComposingText returns the current composing buffer.
func (m *MobileEngine) ComposingText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eng.ComposingText()
}
