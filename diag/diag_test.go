package diag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordTracksCountAndFirstMessage(t *testing.T) {
	s := New(nil)
	s.Record("html", "unexpected-null-character")
	s.Record("html", "bad-doctype")
	require.Equal(t, 2, s.Count())
	msg, ok := s.FirstMessage("html")
	require.True(t, ok)
	require.Equal(t, "unexpected-null-character", msg)
}

func TestWarnOnceOnlyCountsRepeats(t *testing.T) {
	s := New(nil)
	s.WarnOnce("selector", "div", "unsupported pseudo-class")
	s.WarnOnce("selector", "div", "unsupported pseudo-class")
	s.WarnOnce("selector", "div", "unsupported pseudo-class")
	require.Equal(t, 3, s.WarnOnceCount("selector", "div"))
	require.Equal(t, 0, s.WarnOnceCount("selector", "span"))
}

func TestParseErrorCallbackTagsConstruct(t *testing.T) {
	s := New(nil)
	cb := s.ParseErrorCallback("css")
	cb("malformed-declaration")
	msg, ok := s.FirstMessage("css")
	require.True(t, ok)
	require.Equal(t, "malformed-declaration", msg)
}
