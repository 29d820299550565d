package km2_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoFeGroup/keymagic-go/km2"
	"github.com/GoFeGroup/keymagic-go/km2/km2test"
)

func TestLoad_EmptyLayout(t *testing.T) {
	data := km2test.New(km2.LayoutOptions{}).Build()

	file, err := km2.Km2Loader{}.Load(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), file.Header.MajorVersion)
	assert.Equal(t, uint8(5), file.Header.MinorVersion)
	assert.Empty(t, file.Strings)
	assert.Empty(t, file.Info)
	assert.Empty(t, file.Rules)
}

func TestLoad_InvalidMagic(t *testing.T) {
	data := km2test.New(km2.LayoutOptions{}).Build()
	data[0] = 'X'

	_, err := km2.Km2Loader{}.Load(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_magic_code")
}

func TestLoad_FileTooSmall(t *testing.T) {
	_, err := km2.Km2Loader{}.Load([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestLoad_StringsAndInfo(t *testing.T) {
	b := km2test.New(km2.LayoutOptions{TrackCaps: true, AutoBksp: true})
	idx := b.AddString("ကေ")
	b.AddInfo("name", "Test Keyboard")
	data := b.Build()

	file, err := km2.Km2Loader{}.Load(data)
	require.NoError(t, err)
	require.Len(t, file.Strings, 1)
	assert.Equal(t, "ကေ", file.Strings[idx-1].Value)
	assert.Equal(t, "Test Keyboard", file.InfoString("name"))
	assert.True(t, file.Header.Options.TrackCaps)
	assert.True(t, file.Header.Options.AutoBksp)
}

func TestLoad_RuleRoundTrip(t *testing.T) {
	b := km2test.New(km2.LayoutOptions{})
	varIdx := b.AddString("aeiou")
	b.AddRule(
		[]km2.RuleElement{km2test.Predefined(65), km2test.And(), km2test.Modifier(1), km2test.AnyOf(varIdx)},
		[]km2.RuleElement{km2test.Reference(1)},
	)
	data := b.Build()

	file, err := km2.Km2Loader{}.Load(data)
	require.NoError(t, err)
	require.Len(t, file.Rules, 1)
	rule := file.Rules[0]
	require.Len(t, rule.LHS, 4)
	assert.Equal(t, km2.OpPredefined, rule.LHS[0].Op)
	assert.Equal(t, km2.OpAnd, rule.LHS[1].Op)
	assert.Equal(t, km2.OpModifier, rule.LHS[2].Op)
	assert.Equal(t, km2.OpAnyOf, rule.LHS[3].Op)
	require.Len(t, rule.RHS, 1)
	assert.Equal(t, km2.OpReference, rule.RHS[0].Op)
}

func TestLoad_InvalidOpcode(t *testing.T) {
	b := km2test.New(km2.LayoutOptions{})
	b.AddRule([]km2.RuleElement{{Op: 99}}, nil)
	data := b.Build()

	_, err := km2.Km2Loader{}.Load(data)
	require.Error(t, err)
}

