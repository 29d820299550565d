package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoFeGroup/keymagic-go/engine"
	"github.com/GoFeGroup/keymagic-go/km2"
	"github.com/GoFeGroup/keymagic-go/km2/km2test"
	"github.com/GoFeGroup/keymagic-go/vkey"
)

func TestEngineLifecycle(t *testing.T) {
	h := NewEngine()
	assert.NotZero(t, h)
	FreeEngine(h)

	// Freeing again, or using the handle after free, must not panic.
	FreeEngine(h)
	_, code := GetComposingText(h)
	assert.Equal(t, ErrorInvalidHandle, code)
}

func TestInvalidHandleIsRejected(t *testing.T) {
	code := LoadKeyboardFromMemory(9999, []byte{1, 2, 3})
	assert.Equal(t, ErrorInvalidHandle, code)
}

func TestLoadKeyboardFromMemoryRejectsEmptyData(t *testing.T) {
	h := NewEngine()
	defer FreeEngine(h)
	assert.Equal(t, ErrorInvalidParameter, LoadKeyboardFromMemory(h, nil))
}

func TestLoadKeyboardFromPathRejectsEmptyPath(t *testing.T) {
	h := NewEngine()
	defer FreeEngine(h)
	assert.Equal(t, ErrorInvalidParameter, LoadKeyboardFromPath(h, ""))
}

func TestLoadKeyboardFromPathSurfacesReadFailure(t *testing.T) {
	h := NewEngine()
	defer FreeEngine(h)
	assert.Equal(t, ErrorEngineFailure, LoadKeyboardFromPath(h, "/nonexistent/no.km2"))
}

func TestProcessKeyBeforeLoadReturnsNoKeyboard(t *testing.T) {
	h := NewEngine()
	defer FreeEngine(h)
	_, code := ProcessKey(h, engine.KeyInput{KeyCode: vkey.KeyA, Character: 'a', HasChar: true})
	assert.Equal(t, ErrorNoKeyboard, code)
}

func buildKeyboard(t *testing.T) []byte {
	t.Helper()
	b := km2test.New(km2.LayoutOptions{})
	b.AddRule([]km2.RuleElement{km2test.String("ka")}, []km2.RuleElement{km2test.String("က")})
	return b.Build()
}

func TestProcessKeyRoundTrip(t *testing.T) {
	h := NewEngine()
	defer FreeEngine(h)

	require.Equal(t, Success, LoadKeyboardFromMemory(h, buildKeyboard(t)))

	out, code := ProcessKey(h, engine.KeyInput{KeyCode: vkey.KeyK, Character: 'k', HasChar: true})
	require.Equal(t, Success, code)
	assert.Equal(t, int32(engine.ActionInsert), out.ActionType)
	assert.Equal(t, "k", out.Text)

	out, code = ProcessKey(h, engine.KeyInput{KeyCode: vkey.KeyA, Character: 'a', HasChar: true})
	require.Equal(t, Success, code)
	assert.Equal(t, int32(engine.ActionBackspaceDeleteAndInsert), out.ActionType)
	assert.Equal(t, 1, int(out.DeleteCount))
	assert.Equal(t, "က", out.Text)

	text, code := GetComposingText(h)
	require.Equal(t, Success, code)
	assert.Equal(t, "က", text)

	require.Equal(t, Success, Reset(h))
	text, code = GetComposingText(h)
	require.Equal(t, Success, code)
	assert.Equal(t, "", text)
}

func TestProcessKeyWinTranslatesRecognizedCode(t *testing.T) {
	h := NewEngine()
	defer FreeEngine(h)
	require.Equal(t, Success, LoadKeyboardFromMemory(h, buildKeyboard(t)))

	// 0x4B is VK_K on Windows.
	out, code := ProcessKeyWin(h, 0x4B, 'k', true, engine.ModifierState{})
	require.Equal(t, Success, code)
	assert.Equal(t, int32(engine.ActionInsert), out.ActionType)
}

func TestProcessKeyWinPassesThroughUnrecognizedCode(t *testing.T) {
	h := NewEngine()
	defer FreeEngine(h)
	require.Equal(t, Success, LoadKeyboardFromMemory(h, buildKeyboard(t)))

	out, code := ProcessKeyWin(h, 0xFFFF, 0, false, engine.ModifierState{})
	require.Equal(t, Success, code)
	assert.Equal(t, int32(engine.ActionNone), out.ActionType)
}

func TestResetUnknownHandle(t *testing.T) {
	assert.Equal(t, ErrorInvalidHandle, Reset(424242))
}

func TestVersionIsNonEmpty(t *testing.T) {
	assert.NotEmpty(t, Version)
}
