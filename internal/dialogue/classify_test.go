package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := map[string]InputType{
		`  {"a":1}`:                     TypeJSON,
		"[1,2]":                         TypeJSON,
		"HTTPS://Example.com/x":         TypeURL,
		"http://a.b":                    TypeURL,
		"a,b\n1,2":                      TypeCSV,
		"hello, there\nhow are you":     TypeCSV,
		"what is the capital of France": TypeChat,
		"a,b,c":                         TypeChat,
		"":                              TypeChat,
	}
	for in, want := range cases {
		assert.Equal(t, want, Classify(in), "input %q", in)
	}
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("  https://example.com "))
	assert.True(t, IsURL("HtTp://x"))
	assert.False(t, IsURL("see https://example.com"))
	assert.False(t, IsURL("ftp://example.com"))
}

func TestIsCSV(t *testing.T) {
	assert.True(t, IsCSV("a,b\n"))
	assert.False(t, IsCSV("a,b"))
	assert.False(t, IsCSV("a\nb"))
}

func TestExtractURL(t *testing.T) {
	u, ok := ExtractURL("what is on https://example.com today")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", u)

	u, ok = ExtractURL("first http://a.io/x?y=1 then https://b.io")
	assert.True(t, ok)
	assert.Equal(t, "http://a.io/x?y=1", u)

	_, ok = ExtractURL("no links here")
	assert.False(t, ok)
}

func TestTriggers_Normalized(t *testing.T) {
	tr := Triggers{
		Keywords:    []string{" Scrape ", "scrape", ""},
		Uncertainty: []string{"As of", "SORRY"},
	}.Normalized()
	assert.Equal(t, []string{"scrape"}, tr.Keywords)
	assert.Equal(t, []string{"as of", "sorry"}, tr.Uncertainty)
	assert.True(t, tr.SoundsUncertain("As Of my last update"))
	assert.False(t, tr.SoundsUncertain("Paris."))
}
