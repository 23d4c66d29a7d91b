package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataValueAndScan(t *testing.T) {
	original := Metadata{
		"description": "hello",
		"categories":  []interface{}{"go", "feeds"},
	}

	value, err := original.Value()
	require.NoError(t, err)

	var restored Metadata
	require.NoError(t, restored.Scan(value))
	assert.Equal(t, original, restored)
}

func TestMetadataNil(t *testing.T) {
	var m Metadata

	value, err := m.Value()
	require.NoError(t, err)
	assert.Nil(t, value)

	var restored Metadata
	require.NoError(t, restored.Scan(nil))
	assert.Nil(t, restored)
}

func TestMetadataScanUnsupportedType(t *testing.T) {
	var m Metadata
	assert.Error(t, m.Scan(42))
}
