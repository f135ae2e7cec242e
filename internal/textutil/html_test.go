package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripHTML_ParagraphAndBreak(t *testing.T) {
	got := StripHTML("<p>a</p><br>b")
	require.Equal(t, " a b", got)
	require.Equal(t, []string{"a", "b"}, strings.Fields(got))
}

func TestStripHTML_Empty(t *testing.T) {
	require.Equal(t, "", StripHTML(""))
}

func TestStripHTML_Anchor(t *testing.T) {
	got := StripHTML(`see <a href="https://example.com/x" target="_blank">the doc</a> now`)
	require.Equal(t, "see https://example.com/x the doc now", got)

	got = StripHTML(`<a href="https://example.com">https://example.com</a>`)
	require.Equal(t, " https://example.com ", got)
}

func TestStripHTML_Entities(t *testing.T) {
	require.Equal(t, "a b & c", StripHTML("a&nbsp;&nbsp;b &amp;&amp; c"))
}

func TestStripHTML_NoTagsRemain(t *testing.T) {
	inputs := []string{
		"<div><strong>bold</strong> <em>it</em></div>",
		"<ul><li>one</li><li>two</li></ul>",
		`<p class="x">para</p><BR/>after`,
		"<span\nclass=\"multi\">line</span>",
	}
	for _, in := range inputs {
		out := StripHTML(in)
		require.NotContains(t, out, "<", in)
		require.NotContains(t, out, ">", in)
	}
}

func TestSimplifyJiraLinks(t *testing.T) {
	in := "fix https://acme.atlassian.net/browse/ABC-123 and http://acme.atlassian.net/browse/ABC-7"
	require.Equal(t, "fix ABC-123 and ABC-7", SimplifyJiraLinks(in))
	require.Equal(t, "no links", SimplifyJiraLinks("no links"))
}
