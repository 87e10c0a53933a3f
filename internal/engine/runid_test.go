package engine

import (
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_Format(t *testing.T) {
	gen := UUIDv7Generator{}
	id := gen.Generate()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_Sortable(t *testing.T) {
	gen := UUIDv7Generator{}
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = gen.Generate()
	}
	assert.True(t, sort.StringsAreSorted(ids), "UUIDv7 run IDs should sort in creation order")
}
