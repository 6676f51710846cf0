package geocode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmsecure/outbreak-sync-service/internal/domain"
)

func TestStaticResolver_ExactMatch(t *testing.T) {
	r := NewStaticResolver()

	result, err := r.Resolve(context.Background(), "India")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 20.5937, result.Lat)
	assert.Equal(t, 78.9629, result.Lng)
	assert.Equal(t, domain.AccuracyCountry, result.Accuracy)
}

func TestStaticResolver_SubstringMatch(t *testing.T) {
	r := NewStaticResolver()

	// Country name embedded in a longer location string.
	result, err := r.Resolve(context.Background(), "Punjab, India")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 20.5937, result.Lat)

	// Partial query contained in a table entry.
	result, err = r.Resolve(context.Background(), "south kor")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 35.9078, result.Lat)
}

func TestStaticResolver_Unknown(t *testing.T) {
	r := NewStaticResolver()

	result, err := r.Resolve(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Nil(t, result)

	result, err = r.Resolve(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, result)
}
