package cryptoutil

import (
	"bytes"
	"errors"
	"testing"

	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHasher(t *testing.T) {
	tests := []struct {
		algorithm HashAlgorithm
		hexLen    int
	}{
		{SHA256, 64},
		{SHA512, 128},
		{BLAKE2B, 64},
		{BLAKE3, 64},
		{"BLAKE3", 64},
	}
	for _, tt := range tests {
		t.Run(string(tt.algorithm), func(t *testing.T) {
			h, err := NewHasher(tt.algorithm)
			require.NoError(t, err)

			digest := h.Hash([]byte("LOAD\"*\",8,1"))
			assert.Len(t, digest, tt.hexLen)

			streamed, err := h.HashReader(bytes.NewReader([]byte("LOAD\"*\",8,1")))
			require.NoError(t, err)
			assert.Equal(t, digest, streamed)
		})
	}
}

func TestKnownDigest(t *testing.T) {
	h, err := NewHasher(SHA256)
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", h.Hash(nil))
}

func TestNewHasherUnsupported(t *testing.T) {
	_, err := NewHasher("md5")
	assert.True(t, errors.Is(err, bbterrors.ErrInvalidArgument))
}

func TestVerify(t *testing.T) {
	h, err := NewHasher(BLAKE3)
	require.NoError(t, err)
	data := []byte("intro music")
	digest := h.Hash(data)

	assert.True(t, h.Verify(data, digest))
	assert.True(t, h.Verify(data, Format(BLAKE3, digest)))
	assert.False(t, h.Verify(data, Format(SHA256, digest)))
	assert.False(t, h.Verify([]byte("other"), digest))
}

func TestParseHashWithAlgorithm(t *testing.T) {
	hash, algorithm := ParseHashWithAlgorithm("blake2b:abcd")
	assert.Equal(t, "abcd", hash)
	assert.Equal(t, BLAKE2B, algorithm)

	hash, algorithm = ParseHashWithAlgorithm("crc32:abcd")
	assert.Equal(t, "crc32:abcd", hash)
	assert.Empty(t, algorithm)
}
