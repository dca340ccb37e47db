// Package block0 encodes and decodes the genesis block ("block0") from
// which a wallet learns the chain settings and its initial funds.
//
// Layout:
//
//	magic "KB0\x00"(4) | version(2) | timestamp(8) | content_hash(32) | count(4) | fragments...
//
// The block0 hash is the BLAKE3 hash of the header (everything before the
// fragments). content_hash is the merkle root of the fragment IDs.
package block0

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/crypto"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/fragment"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/wire"
)

// Version is the only block0 layout this package understands.
const Version = 1

// HeaderSize is the encoded header length.
const HeaderSize = 4 + 2 + 8 + types.HashSize + 4

var magic = []byte{'K', 'B', '0', 0}

// Block0 errors.
var (
	ErrMalformedBlock0          = errors.New("malformed block0")
	ErrUnsupportedBlock0Version = errors.New("unsupported block0 version")
)

// Header is the block0 header.
type Header struct {
	Version     uint16     `json:"version"`
	Timestamp   uint64     `json:"timestamp"`
	ContentHash types.Hash `json:"content_hash"`
	Count       uint32     `json:"count"`
}

// Bytes returns the encoded header.
func (h *Header) Bytes() []byte {
	buf := make([]byte, 0, HeaderSize)
	buf = append(buf, magic...)
	buf = binary.LittleEndian.AppendUint16(buf, h.Version)
	buf = binary.LittleEndian.AppendUint64(buf, h.Timestamp)
	buf = append(buf, h.ContentHash[:]...)
	return binary.LittleEndian.AppendUint32(buf, h.Count)
}

// Hash returns the block0 hash.
func (h *Header) Hash() types.Hash {
	return crypto.Hash(h.Bytes())
}

// Block0 is a decoded genesis block.
type Block0 struct {
	Header    Header
	Fragments []*fragment.Fragment
}

// New assembles a block0 from fragments, filling in the header.
func New(timestamp uint64, frags []*fragment.Fragment) (*Block0, error) {
	ids := make([]types.FragmentID, len(frags))
	for i, f := range frags {
		id, err := f.ID()
		if err != nil {
			return nil, fmt.Errorf("fragment %d: %w", i, err)
		}
		ids[i] = id
	}
	b := &Block0{
		Header: Header{
			Version:     Version,
			Timestamp:   timestamp,
			ContentHash: ContentHash(ids),
			Count:       uint32(len(frags)),
		},
		Fragments: frags,
	}
	if err := b.validateLayout(); err != nil {
		return nil, err
	}
	return b, nil
}

// Hash returns the block0 hash.
func (b *Block0) Hash() types.Hash {
	return b.Header.Hash()
}

// Initial returns the initial-parameters fragment.
func (b *Block0) Initial() *fragment.Fragment {
	if len(b.Fragments) == 0 {
		return nil
	}
	return b.Fragments[0]
}

// Encode returns the block0 bytes.
func (b *Block0) Encode() ([]byte, error) {
	buf := b.Header.Bytes()
	for i, f := range b.Fragments {
		fb, err := f.Encode()
		if err != nil {
			return nil, fmt.Errorf("fragment %d: %w", i, err)
		}
		buf = append(buf, fb...)
	}
	return buf, nil
}

// Decode parses block0 bytes. Structural problems yield ErrMalformedBlock0;
// a well-formed header with another version yields
// ErrUnsupportedBlock0Version.
func Decode(raw []byte) (*Block0, error) {
	r := wire.NewReader(raw)
	if !bytes.Equal(r.Bytes(len(magic)), magic) {
		return nil, fmt.Errorf("%w: bad magic", ErrMalformedBlock0)
	}

	var b Block0
	b.Header.Version = r.U16()
	if r.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlock0, r.Err())
	}
	if b.Header.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBlock0Version, b.Header.Version)
	}
	b.Header.Timestamp = r.U64()
	r.Copy(b.Header.ContentHash[:])
	b.Header.Count = r.U32()
	if r.Err() != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedBlock0, r.Err())
	}

	// Every fragment needs at least its 5-byte frame.
	if uint64(b.Header.Count)*5 > uint64(r.Remaining()) {
		return nil, fmt.Errorf("%w: %d fragments cannot fit in %d bytes", ErrMalformedBlock0, b.Header.Count, r.Remaining())
	}
	b.Fragments = make([]*fragment.Fragment, 0, b.Header.Count)
	ids := make([]types.FragmentID, 0, b.Header.Count)
	for i := uint32(0); i < b.Header.Count; i++ {
		f, err := fragment.ReadFrom(r)
		if err != nil {
			return nil, fmt.Errorf("%w: fragment %d: %v", ErrMalformedBlock0, i, err)
		}
		id, err := f.ID()
		if err != nil {
			return nil, fmt.Errorf("%w: fragment %d: %v", ErrMalformedBlock0, i, err)
		}
		b.Fragments = append(b.Fragments, f)
		ids = append(ids, id)
	}
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlock0, err)
	}
	if ContentHash(ids) != b.Header.ContentHash {
		return nil, fmt.Errorf("%w: content hash mismatch", ErrMalformedBlock0)
	}
	if err := b.validateLayout(); err != nil {
		return nil, err
	}
	return &b, nil
}

// validateLayout requires exactly one initial fragment, in first position,
// and no vote casts.
func (b *Block0) validateLayout() error {
	if len(b.Fragments) == 0 || b.Fragments[0].Kind != fragment.KindInitial {
		return fmt.Errorf("%w: first fragment must be initial", ErrMalformedBlock0)
	}
	for i, f := range b.Fragments[1:] {
		switch f.Kind {
		case fragment.KindInitial:
			return fmt.Errorf("%w: duplicate initial fragment at %d", ErrMalformedBlock0, i+1)
		case fragment.KindVoteCast:
			return fmt.Errorf("%w: vote cast at %d", ErrMalformedBlock0, i+1)
		}
	}
	return nil
}
