// Package hotkey parses hotkey strings like "Ctrl+Shift+K" into a
// structured binding. It performs no I/O and depends only on the vkey
// alias table, which is why it lives alongside the core packages rather
// than inside a host-facing package (spec.md §9, "Hotkey parser's scope").
package hotkey

import (
	"strings"

	"github.com/GoFeGroup/keymagic-go/core"
	"github.com/GoFeGroup/keymagic-go/vkey"
)

// Binding is a parsed hotkey: one non-modifier key plus the modifier keys
// that must be held with it.
type Binding struct {
	Key   vkey.VirtualKey
	Ctrl  bool
	Alt   bool
	Shift bool
	Meta  bool
}

// specialKeys maps the hotkey grammar's named keys (as opposed to the
// vkey.ByName alias table, which expects a "VK_"-prefixed or bare
// Windows-style name) to their VirtualKey.
var specialKeys = map[string]vkey.VirtualKey{
	"SPACE":     vkey.Space,
	"ENTER":     vkey.Return,
	"RETURN":    vkey.Return,
	"TAB":       vkey.Tab,
	"BACKSPACE": vkey.Back,
	"BACK":      vkey.Back,
	"DELETE":    vkey.Delete,
	"ESCAPE":    vkey.Escape,
	"ESC":       vkey.Escape,
	"CAPSLOCK":  vkey.Capital,
	"CAPS":      vkey.Capital,

	"F1": vkey.F1, "F2": vkey.F2, "F3": vkey.F3, "F4": vkey.F4,
	"F5": vkey.F5, "F6": vkey.F6, "F7": vkey.F7, "F8": vkey.F8,
	"F9": vkey.F9, "F10": vkey.F10, "F11": vkey.F11, "F12": vkey.F12,

	"PLUS": vkey.OemPlus, "=": vkey.OemPlus,
	"MINUS": vkey.OemMinus, "-": vkey.OemMinus,
	"COMMA": vkey.OemComma, ",": vkey.OemComma,
	"PERIOD": vkey.OemPeriod, ".": vkey.OemPeriod,
	"SEMICOLON": vkey.Oem1, ";": vkey.Oem1,
	"SLASH": vkey.Oem2, "/": vkey.Oem2,
	"GRAVE": vkey.Oem3, "`": vkey.Oem3,
	"LEFTBRACKET": vkey.Oem4, "[": vkey.Oem4,
	"BACKSLASH": vkey.Oem5, "\\": vkey.Oem5,
	"RIGHTBRACKET": vkey.Oem6, "]": vkey.Oem6,
	"QUOTE": vkey.Oem7, "'": vkey.Oem7,
}

var letterDigitKeys = map[byte]vkey.VirtualKey{
	'A': vkey.KeyA, 'B': vkey.KeyB, 'C': vkey.KeyC, 'D': vkey.KeyD,
	'E': vkey.KeyE, 'F': vkey.KeyF, 'G': vkey.KeyG, 'H': vkey.KeyH,
	'I': vkey.KeyI, 'J': vkey.KeyJ, 'K': vkey.KeyK, 'L': vkey.KeyL,
	'M': vkey.KeyM, 'N': vkey.KeyN, 'O': vkey.KeyO, 'P': vkey.KeyP,
	'Q': vkey.KeyQ, 'R': vkey.KeyR, 'S': vkey.KeyS, 'T': vkey.KeyT,
	'U': vkey.KeyU, 'V': vkey.KeyV, 'W': vkey.KeyW, 'X': vkey.KeyX,
	'Y': vkey.KeyY, 'Z': vkey.KeyZ,
	'0': vkey.Key0, '1': vkey.Key1, '2': vkey.Key2, '3': vkey.Key3,
	'4': vkey.Key4, '5': vkey.Key5, '6': vkey.Key6, '7': vkey.Key7,
	'8': vkey.Key8, '9': vkey.Key9,
}

// Parse parses a hotkey string such as "Ctrl+Shift+K" or "ctrl shift k".
// Components may be separated by '+' or spaces and are matched
// case-insensitively; exactly one non-modifier key is required.
func Parse(s string) (Binding, error) {
	if strings.TrimSpace(s) == "" {
		return Binding{}, core.CreateEngineError(core.ErrParseError, "empty hotkey string", nil)
	}

	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '+' || r == ' ' })
	if len(fields) == 0 {
		return Binding{}, core.CreateEngineError(core.ErrParseError, "no valid components in hotkey string", nil)
	}

	var b Binding
	haveKey := false

	for _, f := range fields {
		part := strings.ToUpper(strings.TrimSpace(f))
		switch part {
		case "CTRL", "CONTROL":
			b.Ctrl = true
		case "ALT", "OPTION":
			b.Alt = true
		case "SHIFT":
			b.Shift = true
		case "META", "CMD", "COMMAND", "WIN", "SUPER":
			b.Meta = true
		default:
			if haveKey {
				return Binding{}, core.CreateEngineError(core.ErrParseError,
					"multiple keys specified: "+part, nil)
			}
			key, err := parseKey(part)
			if err != nil {
				return Binding{}, err
			}
			b.Key = key
			haveKey = true
		}
	}

	if !haveKey {
		return Binding{}, core.CreateEngineError(core.ErrParseError, "no key specified in hotkey", nil)
	}
	return b, nil
}

func parseKey(s string) (vkey.VirtualKey, error) {
	if len(s) == 1 {
		if vk, ok := letterDigitKeys[s[0]]; ok {
			return vk, nil
		}
	}
	if vk, ok := specialKeys[s]; ok {
		return vk, nil
	}
	if vk, ok := vkey.ByName(s); ok {
		return vk, nil
	}
	return 0, core.CreateEngineError(core.ErrParseError, "unknown key: "+s, nil)
}
