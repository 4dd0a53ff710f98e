package qdrant

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointIDDeterministic(t *testing.T) {
	docID := uuid.NewString()

	first := PointID(docID, 0)
	second := PointID(docID, 0)

	assert.Equal(t, first, second, "same (doc, index) must map to the same point id")

	// Must parse as a UUID so Qdrant accepts it as a point id.
	_, err := uuid.Parse(first)
	require.NoError(t, err)
}

func TestPointIDDistinctAcrossIndexes(t *testing.T) {
	docID := uuid.NewString()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		id := PointID(docID, i)
		assert.False(t, seen[id], "index %d produced a colliding point id", i)
		seen[id] = true
	}
}

func TestPointIDDistinctAcrossDocuments(t *testing.T) {
	a := PointID(uuid.NewString(), 3)
	b := PointID(uuid.NewString(), 3)

	assert.NotEqual(t, a, b)
}

func TestPointIDNonUUIDDocID(t *testing.T) {
	// Document ids are UUIDs in practice, but the derivation must not break
	// on arbitrary strings.
	first := PointID("not-a-uuid", 1)
	second := PointID("not-a-uuid", 1)

	assert.Equal(t, first, second)
	_, err := uuid.Parse(first)
	require.NoError(t, err)
}
