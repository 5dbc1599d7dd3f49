package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		input    string
		expected ByteSize
	}{
		{"512", 512},
		{"512B", 512},
		{" 512 b ", 512},
		{"4Ki", 4 * KiB},
		{"4KiB", 4096},
		{"1k", 1000},
		{"1MB", MB},
		{"1.5KiB", 1536},
		{"2Gi", 2 * GiB},
		{"1TB", TB},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseByteSize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseByteSize_Errors(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "-1", "12XB", "1..5K"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseByteSize(input)
			assert.Error(t, err)
		})
	}
}

func TestByteSize_TextRoundTrip(t *testing.T) {
	for _, v := range []ByteSize{0, 1, 512, 1000, 4 * KiB, 3 * MiB, 5 * GiB, 2 * TiB, 1536} {
		text, err := v.MarshalText()
		require.NoError(t, err)

		var got ByteSize
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, v, got, "text %q", text)
	}
}

func TestByteSize_String(t *testing.T) {
	assert.Equal(t, "512B", ByteSize(512).String())
	assert.Equal(t, "4KiB", (4 * KiB).String())
	assert.Equal(t, "1536B", ByteSize(1536).String())
	assert.Equal(t, "1MiB", MiB.String())
	assert.Equal(t, "0B", ByteSize(0).String())
}

func TestByteSize_UnmarshalText_Invalid(t *testing.T) {
	b := ByteSize(7)
	assert.Error(t, b.UnmarshalText([]byte("lots")))
	assert.Equal(t, ByteSize(7), b, "value must be untouched on error")
}

func TestByteSize_Conversions(t *testing.T) {
	assert.Equal(t, 512, ByteSize(512).Int())
	assert.Equal(t, int64(4096), (4 * KiB).Int64())
}
