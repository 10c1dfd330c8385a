package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_MidLadder(t *testing.T) {
	c := MustCatalog(ladder())

	p := c.Progress(dec("60000"))

	assertDecimal(t, "50000", p.CurrentTier.Threshold)
	require.NotNil(t, p.NextTier)
	assertDecimal(t, "100000", p.NextTier.Threshold)
	assertDecimal(t, "40000", p.RemainingToNext)
	assertDecimal(t, "60", p.PercentToNext)
}

func TestProgress_TopTier(t *testing.T) {
	c := MustCatalog(ladder())

	p := c.Progress(dec("250000"))

	assert.Equal(t, "Platinum", p.CurrentTier.Name)
	assert.Nil(t, p.NextTier)
	assertDecimal(t, "0", p.RemainingToNext)
	assertDecimal(t, "100", p.PercentToNext)
}

func TestProgress_ZeroSpend(t *testing.T) {
	c := MustCatalog(ladder())

	p := c.Progress(dec("0"))

	assert.Equal(t, "Member", p.CurrentTier.Name)
	require.NotNil(t, p.NextTier)
	assert.Equal(t, "Silver", p.NextTier.Name)
	assertDecimal(t, "10000", p.RemainingToNext)
	assertDecimal(t, "0", p.PercentToNext)
}

func TestProgress_PercentRounded(t *testing.T) {
	c := MustCatalog(ladder())

	p := c.Progress(dec("3333"))

	assertDecimal(t, "33.33", p.PercentToNext)
	assertDecimal(t, "6667", p.RemainingToNext)
}

func TestProgress_ExactlyOnThreshold(t *testing.T) {
	c := MustCatalog(ladder())

	p := c.Progress(dec("10000"))

	assert.Equal(t, "Silver", p.CurrentTier.Name)
	require.NotNil(t, p.NextTier)
	assert.Equal(t, "Gold", p.NextTier.Name)
	assertDecimal(t, "20", p.PercentToNext)
}
