package vkey

import "strings"

// aliases maps the canonical uppercase string names used by layout source
// text and hotkey strings to their VirtualKey. Several keys have more than
// one accepted spelling (VK_ENTER / VK_RETURN, VK_ESC / VK_ESCAPE, ...);
// all spellings map to the same VirtualKey.
var aliases = map[string]VirtualKey{
	"VK_BACK": Back, "VK_BACKSPACE": Back,
	"VK_TAB":     Tab,
	"VK_RETURN":  Return,
	"VK_ENTER":   Return,
	"VK_SHIFT":   Shift,
	"VK_CONTROL": Control,
	"VK_CTRL":    Control,
	"VK_MENU":    Menu,
	"VK_ALT":     Menu,
	"VK_PAUSE":   Pause,
	"VK_CAPITAL": Capital,
	"VK_CAPSLOCK": Capital,
	"VK_KANJI":    Kanji,
	"VK_ESCAPE":   Escape,
	"VK_ESC":      Escape,
	"VK_SPACE":    Space,
	"VK_PRIOR":    Prior,
	"VK_PAGEUP":   Prior,
	"VK_NEXT":     Next,
	"VK_PAGEDOWN": Next,
	"VK_DELETE":   Delete,
	"VK_DEL":      Delete,

	"VK_KEY_0": Key0, "VK_KEY_1": Key1, "VK_KEY_2": Key2, "VK_KEY_3": Key3,
	"VK_KEY_4": Key4, "VK_KEY_5": Key5, "VK_KEY_6": Key6, "VK_KEY_7": Key7,
	"VK_KEY_8": Key8, "VK_KEY_9": Key9,

	"VK_KEY_A": KeyA, "VK_KEY_B": KeyB, "VK_KEY_C": KeyC, "VK_KEY_D": KeyD,
	"VK_KEY_E": KeyE, "VK_KEY_F": KeyF, "VK_KEY_G": KeyG, "VK_KEY_H": KeyH,
	"VK_KEY_I": KeyI, "VK_KEY_J": KeyJ, "VK_KEY_K": KeyK, "VK_KEY_L": KeyL,
	"VK_KEY_M": KeyM, "VK_KEY_N": KeyN, "VK_KEY_O": KeyO, "VK_KEY_P": KeyP,
	"VK_KEY_Q": KeyQ, "VK_KEY_R": KeyR, "VK_KEY_S": KeyS, "VK_KEY_T": KeyT,
	"VK_KEY_U": KeyU, "VK_KEY_V": KeyV, "VK_KEY_W": KeyW, "VK_KEY_X": KeyX,
	"VK_KEY_Y": KeyY, "VK_KEY_Z": KeyZ,

	"VK_NUMPAD0": Numpad0, "VK_NUMPAD1": Numpad1, "VK_NUMPAD2": Numpad2,
	"VK_NUMPAD3": Numpad3, "VK_NUMPAD4": Numpad4, "VK_NUMPAD5": Numpad5,
	"VK_NUMPAD6": Numpad6, "VK_NUMPAD7": Numpad7, "VK_NUMPAD8": Numpad8,
	"VK_NUMPAD9": Numpad9,
	"VK_MULTIPLY": Multiply, "VK_ADD": Add, "VK_SEPARATOR": Separator,
	"VK_SUBTRACT": Subtract, "VK_DECIMAL": Decimal, "VK_DIVIDE": Divide,

	"VK_F1": F1, "VK_F2": F2, "VK_F3": F3, "VK_F4": F4, "VK_F5": F5,
	"VK_F6": F6, "VK_F7": F7, "VK_F8": F8, "VK_F9": F9, "VK_F10": F10,
	"VK_F11": F11, "VK_F12": F12,

	"VK_LSHIFT": LShift, "VK_RSHIFT": RShift,
	"VK_LCONTROL": LControl, "VK_RCONTROL": RControl,
	"VK_LMENU": LMenu, "VK_RMENU": RMenu, "VK_ALT_GR": RMenu, "VK_ALTGR": RMenu,

	"VK_OEM_1": Oem1, "VK_OEM_PLUS": OemPlus, "VK_OEM_COMMA": OemComma,
	"VK_OEM_MINUS": OemMinus, "VK_OEM_PERIOD": OemPeriod, "VK_OEM_2": Oem2,
	"VK_OEM_3": Oem3, "VK_OEM_4": Oem4, "VK_OEM_5": Oem5, "VK_OEM_6": Oem6,
	"VK_OEM_7": Oem7, "VK_OEM_8": Oem8, "VK_OEM_AX": OemAx,
	"VK_OEM_102": Oem102, "VK_ICO_HELP": IcoHelp, "VK_ICO_00": Ico00,
}

// ByName resolves a canonical VK alias (case-insensitive, "VK_" prefix
// optional) to a VirtualKey. Used by the hotkey grammar (§4.I) and by layout
// tooling that parses Predefined references by name.
func ByName(name string) (VirtualKey, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return 0, false
	}
	if !strings.HasPrefix(name, "VK_") {
		name = "VK_" + name
	}
	vk, ok := aliases[name]
	return vk, ok
}
