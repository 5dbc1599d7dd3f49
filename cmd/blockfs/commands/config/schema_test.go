package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	s := Schema()
	assert.Equal(t, "blockfs Configuration", s.Title)

	disk, ok := s.Properties.Get("disk")
	require.True(t, ok)

	blockSize, ok := disk.Properties.Get("block_size")
	require.True(t, ok)
	assert.Equal(t, "string", blockSize.Type)

	totalBlocks, ok := disk.Properties.Get("total_blocks")
	require.True(t, ok)
	assert.Equal(t, "integer", totalBlocks.Type)

	_, ok = s.Properties.Get("image")
	assert.True(t, ok)
}
