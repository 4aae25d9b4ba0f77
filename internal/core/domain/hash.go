package domain

import "encoding/hex"

// DigestSize is the length in bytes of a Digest (blake3's default output size).
const DigestSize = 32

// Digest is a 32-byte blake3 output. Equality is byte-wise.
type Digest [DigestSize]byte

// String returns the lowercase hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// DigestFromHex decodes a hex string into a Digest, for reading the
// persisted registry format.
func DigestFromHex(s string) (Digest, bool) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != DigestSize {
		return Digest{}, false
	}
	copy(d[:], b)
	return d, true
}

// Hashes is the per-task record kept in the hash registry: the last-seen
// input hash, and a reserved slot for an output hash (not populated by the
// core today).
type Hashes struct {
	InputsHash  *Digest
	OutputsHash *Digest
}

// HashRecord is a Hashes entry paired with the TaskRef it belongs to. The
// on-disk registry does not store this type; it uses its own wire record.
type HashRecord struct {
	Task   TaskRef
	Hashes Hashes
}
