package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoFeGroup/keymagic-go/km2"
	"github.com/GoFeGroup/keymagic-go/km2/km2test"
	"github.com/GoFeGroup/keymagic-go/vkey"
)

func charInput(vk vkey.VirtualKey, ch rune) KeyInput {
	return KeyInput{KeyCode: vk, Character: ch, HasChar: true}
}

func backInput() KeyInput {
	return KeyInput{KeyCode: vkey.Back}
}

func TestEngine_Scenario1_SimpleSubstitution(t *testing.T) {
	b := km2test.New(km2.LayoutOptions{})
	b.AddRule([]km2.RuleElement{km2test.String("ka")}, []km2.RuleElement{km2test.String("က")})

	e := NewEngine()
	require.NoError(t, e.LoadKeyboard(b.Build()))

	out1, err := e.ProcessKey(charInput(vkey.KeyK, 'k'))
	require.NoError(t, err)
	assert.Equal(t, "k", out1.ComposingText)
	assert.Equal(t, ActionInsert, out1.Action)
	assert.Equal(t, "k", out1.InsertText)

	out2, err := e.ProcessKey(charInput(vkey.KeyA, 'a'))
	require.NoError(t, err)
	assert.Equal(t, "က", out2.ComposingText)
	assert.Equal(t, ActionBackspaceDeleteAndInsert, out2.Action)
	assert.Equal(t, 1, out2.DeleteCount)
	assert.Equal(t, "က", out2.InsertText)
}

func TestEngine_Scenario2_LongestMatchPriority(t *testing.T) {
	b := km2test.New(km2.LayoutOptions{})
	b.AddRule([]km2.RuleElement{km2test.String("ah")}, []km2.RuleElement{km2test.String("အ")})
	b.AddRule([]km2.RuleElement{km2test.String("h")}, []km2.RuleElement{km2test.String("ဟ")})

	e := NewEngine()
	require.NoError(t, e.LoadKeyboard(b.Build()))

	_, err := e.ProcessKey(charInput(vkey.KeyA, 'a'))
	require.NoError(t, err)
	out, err := e.ProcessKey(charInput(vkey.KeyH, 'h'))
	require.NoError(t, err)

	assert.Equal(t, "အ", out.ComposingText)
	assert.Equal(t, ActionBackspaceDeleteAndInsert, out.Action)
	assert.Equal(t, 1, out.DeleteCount)
	assert.Equal(t, "အ", out.InsertText)
}

func TestEngine_Scenario3_SmartBackspaceRestore(t *testing.T) {
	b := km2test.New(km2.LayoutOptions{AutoBksp: true})
	b.AddRule([]km2.RuleElement{km2test.String("ka")}, []km2.RuleElement{km2test.String("က")})

	e := NewEngine()
	require.NoError(t, e.LoadKeyboard(b.Build()))

	_, err := e.ProcessKey(charInput(vkey.KeyK, 'k'))
	require.NoError(t, err)
	_, err = e.ProcessKey(charInput(vkey.KeyA, 'a'))
	require.NoError(t, err)
	require.Equal(t, "က", e.ComposingText())

	out, err := e.ProcessKey(backInput())
	require.NoError(t, err)

	assert.Equal(t, "k", out.ComposingText)
	assert.Equal(t, ActionBackspaceDeleteAndInsert, out.Action)
	assert.Equal(t, 1, out.DeleteCount)
	assert.Equal(t, "k", out.InsertText)
}

func TestEngine_Scenario4_StateToggle(t *testing.T) {
	b := km2test.New(km2.LayoutOptions{})
	zg := b.AddString("zg")

	b.AddRule(
		[]km2.RuleElement{km2test.Predefined(uint16(vkey.Oem3))},
		[]km2.RuleElement{km2test.Switch(zg)},
	)
	b.AddRule(
		[]km2.RuleElement{km2test.Switch(zg), km2test.String("1")},
		[]km2.RuleElement{km2test.String("ဍ္ဍ")},
	)
	b.AddRule(
		[]km2.RuleElement{km2test.String("1")},
		[]km2.RuleElement{km2test.String("၁")},
	)

	e := NewEngine()
	require.NoError(t, e.LoadKeyboard(b.Build()))

	// Each "commits X" checkpoint is verified through InsertText/Action —
	// the per-key edit the host applies — rather than the cumulative
	// composing buffer, since these rules never consume prior buffer
	// content and the buffer keeps accumulating across the scenario.
	out1, err := e.ProcessKey(charInput(vkey.Key1, '1'))
	require.NoError(t, err)
	assert.Equal(t, ActionInsert, out1.Action)
	assert.Equal(t, "၁", out1.InsertText)

	out2, err := e.ProcessKey(KeyInput{KeyCode: vkey.Oem3})
	require.NoError(t, err)
	assert.Equal(t, ActionNone, out2.Action)

	out3, err := e.ProcessKey(charInput(vkey.Key1, '1'))
	require.NoError(t, err)
	assert.Equal(t, ActionInsert, out3.Action)
	assert.Equal(t, "ဍ္ဍ", out3.InsertText)

	out3b, err := e.ProcessKey(KeyInput{KeyCode: vkey.Oem3})
	require.NoError(t, err)
	assert.Equal(t, ActionNone, out3b.Action)

	out4, err := e.ProcessKey(charInput(vkey.Key1, '1'))
	require.NoError(t, err)
	assert.Equal(t, ActionInsert, out4.Action)
	assert.Equal(t, "၁", out4.InsertText)
}

func TestEngine_Scenario5_VariableIndexedSubstitution(t *testing.T) {
	b := km2test.New(km2.LayoutOptions{})
	consK := b.AddString("abc")
	consU := b.AddString("ကခဂ")

	b.AddRule(
		[]km2.RuleElement{km2test.Variable(consK), km2test.Modifier(flagAnyOf)},
		[]km2.RuleElement{km2test.Variable(consU), km2test.Modifier(1)},
	)

	e := NewEngine()
	require.NoError(t, e.LoadKeyboard(b.Build()))

	out, err := e.ProcessKey(charInput(vkey.KeyB, 'b'))
	require.NoError(t, err)
	assert.Equal(t, "ခ", out.ComposingText)
}

func TestEngine_Scenario6_VowelEReordering(t *testing.T) {
	const (
		zwsp   = " "
		vowelE = "ေ"
		ka     = "က"
	)

	b := km2test.New(km2.LayoutOptions{})
	consU := b.AddString(ka)

	// "a" -> U+200A U+1031, a placeholder pre-base-consonant vowel marker.
	b.AddRule(
		[]km2.RuleElement{km2test.String("a")},
		[]km2.RuleElement{km2test.String(zwsp), km2test.String(vowelE)},
	)
	// U+200A U+1031 $consU[*] -> $3 U+1031: once a base consonant is
	// typed, reorder the vowel after it. The marker is two distinct LHS
	// string atoms, not one, so that $3 addresses the consonant capture.
	b.AddRule(
		[]km2.RuleElement{
			km2test.String(zwsp), km2test.String(vowelE),
			km2test.Variable(consU), km2test.Modifier(flagAnyOf),
		},
		[]km2.RuleElement{km2test.Reference(3), km2test.String(vowelE)},
	)
	// "k" -> U+1000: a key whose character maps to the base consonant.
	b.AddRule(
		[]km2.RuleElement{km2test.String("k")},
		[]km2.RuleElement{km2test.String(ka)},
	)

	e := NewEngine()
	require.NoError(t, e.LoadKeyboard(b.Build()))

	_, err := e.ProcessKey(charInput(vkey.KeyA, 'a'))
	require.NoError(t, err)
	require.Equal(t, zwsp+vowelE, e.ComposingText())

	out, err := e.ProcessKey(charInput(vkey.KeyK, 'k'))
	require.NoError(t, err)

	assert.Equal(t, ka+vowelE, out.ComposingText)
	assert.Equal(t, ActionBackspaceDeleteAndInsert, out.Action)
	assert.Equal(t, 2, out.DeleteCount)
	assert.Equal(t, ka+vowelE, out.InsertText)
}

func TestEngine_ProcessKeyTestIsSideEffectFree(t *testing.T) {
	b := km2test.New(km2.LayoutOptions{})
	b.AddRule([]km2.RuleElement{km2test.String("ka")}, []km2.RuleElement{km2test.String("က")})

	e := NewEngine()
	require.NoError(t, e.LoadKeyboard(b.Build()))

	_, err := e.ProcessKey(charInput(vkey.KeyK, 'k'))
	require.NoError(t, err)

	before := e.ComposingText()
	out, err := e.ProcessKeyTest(charInput(vkey.KeyA, 'a'))
	require.NoError(t, err)

	assert.Equal(t, "က", out.ComposingText)
	assert.Equal(t, before, e.ComposingText())
}

func TestEngine_EatSuppressesUnmatchedNonCharKeys(t *testing.T) {
	b := km2test.New(km2.LayoutOptions{Eat: true})
	e := NewEngine()
	require.NoError(t, e.LoadKeyboard(b.Build()))

	out, err := e.ProcessKey(KeyInput{KeyCode: vkey.F1})
	require.NoError(t, err)
	assert.True(t, out.IsProcessed)
	assert.Equal(t, ActionNone, out.Action)
}

func TestEngine_NoKeyboardLoadedErrors(t *testing.T) {
	e := NewEngine()
	_, err := e.ProcessKey(charInput(vkey.KeyA, 'a'))
	assert.Error(t, err)
}

func TestEngine_BackspaceWithoutAutoBkspTruncatesOneChar(t *testing.T) {
	b := km2test.New(km2.LayoutOptions{})
	b.AddRule([]km2.RuleElement{km2test.String("ka")}, []km2.RuleElement{km2test.String("က")})

	e := NewEngine()
	require.NoError(t, e.LoadKeyboard(b.Build()))

	_, err := e.ProcessKey(charInput(vkey.KeyK, 'k'))
	require.NoError(t, err)

	out, err := e.ProcessKey(backInput())
	require.NoError(t, err)
	assert.Equal(t, "", out.ComposingText)
	assert.True(t, out.IsProcessed)
}

type upperCaseTransform struct{}

func (upperCaseTransform) TransformComposing(buffer string) string {
	return strings.ToUpper(buffer)
}

func TestEngine_PluginTransformsComposingBuffer(t *testing.T) {
	b := km2test.New(km2.LayoutOptions{})
	b.AddRule([]km2.RuleElement{km2test.String("ka")}, []km2.RuleElement{km2test.String("ka")})

	e := NewEngine()
	require.NoError(t, e.LoadKeyboard(b.Build()))
	e.AddPlugin(upperCaseTransform{})

	_, err := e.ProcessKey(charInput(vkey.KeyK, 'k'))
	require.NoError(t, err)
	out, err := e.ProcessKey(charInput(vkey.KeyA, 'a'))
	require.NoError(t, err)

	assert.Equal(t, "KA", out.ComposingText)
}
