package vkey

// winVKToVirtualKey maps Windows-native virtual key codes (as seen in
// WM_KEYDOWN/WM_KEYUP and RDP TS_KEYBOARD_EVENT PDUs) to the engine's
// closed enumeration. Grounded on the VK_* constants gathered from a
// Windows-RDP client's keyboard PDU encoder, which carry the real Win32 VK
// numbering this table translates from.
var winVKToVirtualKey = map[uint16]VirtualKey{
	0x08: Back,
	0x09: Tab,
	0x0D: Return,
	0x10: Shift,
	0x11: Control,
	0x12: Menu,
	0x13: Pause,
	0x14: Capital,
	0x15: Kanji,
	0x1B: Escape,
	0x20: Space,
	0x21: Prior,
	0x22: Next,
	0x2E: Delete,

	0x30: Key0, 0x31: Key1, 0x32: Key2, 0x33: Key3, 0x34: Key4,
	0x35: Key5, 0x36: Key6, 0x37: Key7, 0x38: Key8, 0x39: Key9,

	0x41: KeyA, 0x42: KeyB, 0x43: KeyC, 0x44: KeyD, 0x45: KeyE,
	0x46: KeyF, 0x47: KeyG, 0x48: KeyH, 0x49: KeyI, 0x4A: KeyJ,
	0x4B: KeyK, 0x4C: KeyL, 0x4D: KeyM, 0x4E: KeyN, 0x4F: KeyO,
	0x50: KeyP, 0x51: KeyQ, 0x52: KeyR, 0x53: KeyS, 0x54: KeyT,
	0x55: KeyU, 0x56: KeyV, 0x57: KeyW, 0x58: KeyX, 0x59: KeyY,
	0x5A: KeyZ,

	0x60: Numpad0, 0x61: Numpad1, 0x62: Numpad2, 0x63: Numpad3,
	0x64: Numpad4, 0x65: Numpad5, 0x66: Numpad6, 0x67: Numpad7,
	0x68: Numpad8, 0x69: Numpad9,
	0x6A: Multiply, 0x6B: Add, 0x6C: Separator, 0x6D: Subtract,
	0x6E: Decimal, 0x6F: Divide,

	0x70: F1, 0x71: F2, 0x72: F3, 0x73: F4, 0x74: F5, 0x75: F6,
	0x76: F7, 0x77: F8, 0x78: F9, 0x79: F10, 0x7A: F11, 0x7B: F12,

	0xA0: LShift, 0xA1: RShift, 0xA2: LControl, 0xA3: RControl,
	0xA4: LMenu, 0xA5: RMenu,

	0xBA: Oem1, 0xBB: OemPlus, 0xBC: OemComma, 0xBD: OemMinus,
	0xBE: OemPeriod, 0xBF: Oem2, 0xC0: Oem3,
	0xDB: Oem4, 0xDC: Oem5, 0xDD: Oem6, 0xDE: Oem7, 0xDF: Oem8,
	0xE1: OemAx, 0xE2: Oem102, 0xE3: IcoHelp, 0xE4: Ico00,
}

// FromWindowsVK translates a Windows-native virtual key code into the
// engine's VirtualKey enumeration. Used by the C ABI's Windows-specific
// process-key entrypoint and by host adapters running on Windows.
func FromWindowsVK(code uint16) (VirtualKey, bool) {
	vk, ok := winVKToVirtualKey[code]
	return vk, ok
}
