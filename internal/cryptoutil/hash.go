// Package cryptoutil computes digests of container chunks
package cryptoutil

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	bbterrors "github.com/deploymenttheory/go-backbit/internal/errors"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// HashAlgorithm represents supported hash algorithms
type HashAlgorithm string

const (
	SHA256  HashAlgorithm = "sha256"
	SHA512  HashAlgorithm = "sha512"
	BLAKE2B HashAlgorithm = "blake2b"
	BLAKE3  HashAlgorithm = "blake3"
)

// Algorithms lists the supported algorithms
var Algorithms = []HashAlgorithm{SHA256, SHA512, BLAKE2B, BLAKE3}

// Hasher provides an interface for hashing operations
type Hasher interface {
	// Algorithm returns the algorithm the hasher uses
	Algorithm() HashAlgorithm

	// Hash hashes the provided data
	Hash(data []byte) string

	// HashReader hashes data from a reader
	HashReader(reader io.Reader) (string, error)

	// Verify checks if the provided hash matches the calculated hash for the data
	Verify(data []byte, expectedHash string) bool
}

// hasherImpl implements the Hasher interface
type hasherImpl struct {
	algorithm HashAlgorithm
	newHash   func() hash.Hash
}

// NewHasher creates a new Hasher for the specified algorithm
func NewHasher(algorithm HashAlgorithm) (Hasher, error) {
	var newHashFunc func() hash.Hash

	switch HashAlgorithm(strings.ToLower(string(algorithm))) {
	case SHA256:
		newHashFunc = sha256.New
	case SHA512:
		newHashFunc = sha512.New
	case BLAKE2B:
		newHashFunc = func() hash.Hash {
			// only fails for keys longer than 64 bytes
			h, _ := blake2b.New256(nil)
			return h
		}
	case BLAKE3:
		newHashFunc = func() hash.Hash { return blake3.New() }
	default:
		return nil, bbterrors.Newf(bbterrors.ErrInvalidArgument, "digest", string(algorithm), "unsupported hash algorithm, use one of %s", algorithmList())
	}

	return &hasherImpl{
		algorithm: HashAlgorithm(strings.ToLower(string(algorithm))),
		newHash:   newHashFunc,
	}, nil
}

func algorithmList() string {
	names := make([]string, len(Algorithms))
	for i, a := range Algorithms {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

func (h *hasherImpl) Algorithm() HashAlgorithm {
	return h.algorithm
}

// Hash hashes the provided data
func (h *hasherImpl) Hash(data []byte) string {
	hasher := h.newHash()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashReader hashes data from a reader
func (h *hasherImpl) HashReader(reader io.Reader) (string, error) {
	hasher := h.newHash()
	if _, err := io.Copy(hasher, reader); err != nil {
		return "", fmt.Errorf("hash operation failed: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Verify checks if the provided hash matches the calculated hash for the data. The
// expected hash may carry an "algorithm:" prefix.
func (h *hasherImpl) Verify(data []byte, expectedHash string) bool {
	expected, algorithm := ParseHashWithAlgorithm(expectedHash)
	if algorithm != "" && algorithm != h.algorithm {
		return false
	}
	return strings.EqualFold(h.Hash(data), expected)
}

// Format returns the digest with its algorithm prefix, e.g. "blake3:af13..."
func Format(algorithm HashAlgorithm, digest string) string {
	return string(algorithm) + ":" + digest
}

// ParseHashWithAlgorithm parses a hash string that might include the algorithm as a prefix
// Example formats: "sha256:1234abcd..." or "1234abcd..."
func ParseHashWithAlgorithm(hashStr string) (string, HashAlgorithm) {
	parts := strings.SplitN(hashStr, ":", 2)

	if len(parts) == 2 {
		algorithm := HashAlgorithm(strings.ToLower(parts[0]))
		for _, known := range Algorithms {
			if algorithm == known {
				return parts[1], algorithm
			}
		}
	}

	return hashStr, ""
}
