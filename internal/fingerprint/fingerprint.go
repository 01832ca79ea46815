// Package fingerprint turns SMILES structure strings into fixed-length
// numeric feature vectors. Fingerprints are circular (ECFP-style): each atom's
// environment up to the configured radius is hashed and folded into a bit
// vector. The same structure string with the same radius and length always
// yields the same vector.
package fingerprint

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sort"
)

// Defaults for the fingerprint parameters.
const (
	DefaultRadius = 2
	DefaultBits   = 1024
)

// Fingerprinter computes hashed circular fingerprints.
type Fingerprinter struct {
	radius  int
	numBits int
}

// New creates a Fingerprinter with the given radius and output length.
func New(radius, numBits int) (*Fingerprinter, error) {
	if radius < 0 {
		return nil, fmt.Errorf("fingerprint: radius must be non-negative, got %d", radius)
	}
	if numBits <= 0 {
		return nil, fmt.Errorf("fingerprint: bit length must be positive, got %d", numBits)
	}
	return &Fingerprinter{radius: radius, numBits: numBits}, nil
}

// NumBits returns the output vector length.
func (f *Fingerprinter) NumBits() int { return f.numBits }

// Compute parses the structure and returns its fingerprint vector. The only
// failure mode is an unparseable structure string.
func (f *Fingerprinter) Compute(smiles string) ([]float32, error) {
	mol, err := ParseSMILES(smiles)
	if err != nil {
		return nil, err
	}
	return f.fold(mol), nil
}

// fold runs the iterative environment hashing and sets one bit per distinct
// environment identifier.
func (f *Fingerprinter) fold(mol *Molecule) []float32 {
	adj := mol.Neighbors()

	// Round 0: per-atom invariants.
	ids := make([]uint64, len(mol.Atoms))
	for i, a := range mol.Atoms {
		ids[i] = atomInvariant(a, len(adj[i]))
	}

	vec := make([]float32, f.numBits)
	setBits := func(hashes []uint64) {
		for _, h := range hashes {
			vec[h%uint64(f.numBits)] = 1
		}
	}
	setBits(ids)

	// Rounds 1..radius: combine each atom's identifier with its neighbors'
	// identifiers from the previous round, in a canonical order.
	for r := 1; r <= f.radius; r++ {
		next := make([]uint64, len(ids))
		for i := range mol.Atoms {
			next[i] = environmentHash(r, ids[i], adj[i], ids)
		}
		ids = next
		setBits(ids)
	}
	return vec
}

// atomInvariant hashes the properties that distinguish an atom on its own:
// element, aromaticity, charge, explicit hydrogen count and degree.
func atomInvariant(a Atom, degree int) uint64 {
	h := fnv.New64a()
	h.Write([]byte(a.Symbol))
	var buf [6]byte
	buf[0] = boolByte(a.Aromatic)
	buf[1] = byte(int8(a.Charge))
	buf[2] = byte(int8(a.Hydrogens))
	buf[3] = byte(degree)
	binary.LittleEndian.PutUint16(buf[4:], uint16(a.Isotope))
	h.Write(buf[:])
	return h.Sum64()
}

// environmentHash combines an atom's previous-round identifier with the
// (bond, neighbor identifier) pairs, sorted so that neighbor order in the
// input string cannot affect the result.
func environmentHash(round int, center uint64, neighbors []neighbor, prev []uint64) uint64 {
	type pair struct {
		bond uint64
		id   uint64
	}
	pairs := make([]pair, len(neighbors))
	for i, nb := range neighbors {
		pairs[i] = pair{bond: bondCode(nb.bond), id: prev[nb.atom]}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].bond != pairs[j].bond {
			return pairs[i].bond < pairs[j].bond
		}
		return pairs[i].id < pairs[j].id
	})

	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(round))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], center)
	h.Write(buf[:])
	for _, p := range pairs {
		binary.LittleEndian.PutUint64(buf[:], p.bond)
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], p.id)
		h.Write(buf[:])
	}
	return h.Sum64()
}

func bondCode(b Bond) uint64 {
	if b.Aromatic {
		return 5
	}
	return uint64(b.Order)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
