package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointIDDeterministic(t *testing.T) {
	a := PointID("2024-06-01")
	b := PointID("2024-06-01")
	assert.Equal(t, a, b)
}

func TestPointIDKnownValues(t *testing.T) {
	// Values are the first 8 bytes of md5("summary_" + date) read big-endian.
	assert.Equal(t, uint64(14780089444035170871), PointID("2024-06-01"))
	assert.Equal(t, uint64(13036798132857282503), PointID("2024-06-02"))
	assert.Equal(t, uint64(3169210823391504528), PointID("2024-01-15"))
}

func TestPointIDDistinctDates(t *testing.T) {
	assert.NotEqual(t, PointID("2024-06-01"), PointID("2024-06-02"))
	assert.NotEqual(t, PointID("2024-06-01"), PointID("2023-06-01"))
}
