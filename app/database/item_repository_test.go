package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListQueryNoFilter(t *testing.T) {
	query, args, err := buildListQuery(ItemFilter{})
	require.NoError(t, err)

	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "ORDER BY published_at DESC NULLS LAST, created_at DESC")
	assert.Empty(t, args)
}

func TestBuildListQuerySourceFilter(t *testing.T) {
	sourceID := "src-a"
	query, args, err := buildListQuery(ItemFilter{SourceID: &sourceID})
	require.NoError(t, err)

	assert.Contains(t, query, "source_id = $1")
	assert.Equal(t, []interface{}{"src-a"}, args)
}

func TestBuildListQueryCombinedFilter(t *testing.T) {
	sourceID := "src-a"
	read := false
	query, args, err := buildListQuery(ItemFilter{SourceID: &sourceID, Read: &read})
	require.NoError(t, err)

	assert.Contains(t, query, "source_id = $1")
	assert.Contains(t, query, "is_read = $2")
	assert.Equal(t, []interface{}{"src-a", false}, args)
}
