package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talktonic/internal/apperr"
)

func TestFormat_JSONToCSV_SingleObject(t *testing.T) {
	out, err := Format(`{"a":1,"b":2}`, ModeJSONToCSV)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", out)
}

func TestFormat_JSONToCSV_Array(t *testing.T) {
	out, err := Format(`[{"a":1},{"a":2}]`, ModeJSONToCSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, []string{"a", "1", "2"}, lines)
}

func TestFormat_JSONToCSV_KeepsFirstElementKeyOrder(t *testing.T) {
	out, err := Format(`[{"z":"x","a":null},{"a":true,"z":"y, quoted"}]`, ModeJSONToCSV)
	require.NoError(t, err)
	assert.Equal(t, "z,a\nx,\n\"y, quoted\",True\n", out)
}

func TestFormat_JSONToCSV_BooleansUseCapitalizedWords(t *testing.T) {
	out, err := Format(`[{"ok":true,"n":1.5},{"ok":false,"n":null}]`, ModeJSONToCSV)
	require.NoError(t, err)
	assert.Equal(t, "ok,n\nTrue,1.5\nFalse,\n", out)
}

func TestFormat_JSONToCSV_MissingKeysAreEmpty(t *testing.T) {
	out, err := Format(`[{"a":1,"b":2},{"a":3}]`, ModeJSONToCSV)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n3,\n", out)
}

func TestFormat_JSONToCSV_Failures(t *testing.T) {
	for _, in := range []string{
		"not json",
		`[]`,
		`42`,
		`[1,2]`,
		`[{"a":1},{"a":2,"c":3}]`,
	} {
		_, err := Format(in, ModeJSONToCSV)
		require.Error(t, err, "input %q", in)
		assert.Equal(t, apperr.KindFormat, apperr.KindOf(err), "input %q", in)
	}
}

func TestRender_SoftFailureMarker(t *testing.T) {
	out := Render("not json", ModeJSONToCSV)
	assert.True(t, strings.HasPrefix(out, "Data format error: "), "got %q", out)
}

func TestFormat_CaseRoundTrip(t *testing.T) {
	for _, in := range []string{"Hello World", "ÄÖÜ straße", "MiXeD 123 !?"} {
		up, err := Format(in, ModeUpper)
		require.NoError(t, err)
		down, err := Format(up, ModeLower)
		require.NoError(t, err)
		lower, _ := Format(in, ModeLower)
		assert.Equal(t, lower, down)
	}
}

func TestFormat_UnknownMode(t *testing.T) {
	out, err := Format("abc", Mode("yaml"))
	require.NoError(t, err)
	assert.Equal(t, Unsupported, out)
}
