package fontmetrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApproximateTextWidth(t *testing.T) {
	var m Approximate
	require.Equal(t, float64(3)*0.6*10, m.TextWidth("abc", "serif", 10))
}

func TestApproximateLineHeight(t *testing.T) {
	var m Approximate
	require.Equal(t, float64(12), m.LineHeight("serif", 10))
}
