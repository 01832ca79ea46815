package fingerprint

import (
	"fmt"
	"strings"
)

// Atom is one atom of a parsed structure.
type Atom struct {
	Symbol    string
	Aromatic  bool
	Charge    int
	Hydrogens int // explicit H count from a bracket atom; -1 when unspecified
	Isotope   int
}

// Bond connects two atoms by index into Molecule.Atoms.
type Bond struct {
	From     int
	To       int
	Order    int // 1–3
	Aromatic bool
}

// Molecule is a parsed SMILES structure: an atom list and a bond list.
// It carries just enough information for fingerprinting; coordinates,
// stereochemistry and the like are discarded.
type Molecule struct {
	Atoms []Atom
	Bonds []Bond
}

// Neighbors returns, per atom, the list of (bond, neighbor index) pairs.
func (m *Molecule) Neighbors() [][]neighbor {
	adj := make([][]neighbor, len(m.Atoms))
	for _, b := range m.Bonds {
		adj[b.From] = append(adj[b.From], neighbor{bond: b, atom: b.To})
		adj[b.To] = append(adj[b.To], neighbor{bond: b, atom: b.From})
	}
	return adj
}

type neighbor struct {
	bond Bond
	atom int
}

// Two-letter organic-subset symbols must be tried before single letters.
var organicTwoLetter = []string{"Cl", "Br"}

var organicOneLetter = map[byte]bool{
	'B': true, 'C': true, 'N': true, 'O': true,
	'P': true, 'S': true, 'F': true, 'I': true,
}

var aromaticOrganic = map[byte]bool{
	'b': true, 'c': true, 'n': true, 'o': true, 'p': true, 's': true,
}

// bracket-atom element symbols beyond the organic subset are accepted as any
// capital letter optionally followed by a lowercase one; aromatic bracket
// atoms as a small fixed set.
var aromaticBracket = map[string]bool{
	"b": true, "c": true, "n": true, "o": true, "p": true, "s": true,
	"se": true, "as": true, "te": true, "si": true,
}

type parser struct {
	input string
	pos   int
	mol   Molecule

	prev        int // index of the atom a new atom bonds to; -1 at start or after '.'
	pendingBond byte
	branchStack []int
	ringBonds   map[int]ringOpen
}

type ringOpen struct {
	atom int
	bond byte
}

// ParseSMILES parses a SMILES string into a Molecule. It accepts the common
// subset used for small-molecule structures (organic subset atoms, bracket
// atoms with charge/isotope/H counts, branches, ring closures including %nn,
// aromatic lowercase forms, and disconnected components). It is the sanitize
// gate of the pipeline: anything it rejects is dropped from the dataset.
func ParseSMILES(s string) (*Molecule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("smiles: empty structure")
	}

	p := &parser{
		input:     s,
		prev:      -1,
		ringBonds: make(map[int]ringOpen),
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	if len(p.branchStack) != 0 {
		return nil, fmt.Errorf("smiles: %d unclosed branch(es) in %q", len(p.branchStack), s)
	}
	if len(p.ringBonds) != 0 {
		return nil, fmt.Errorf("smiles: unclosed ring bond in %q", s)
	}
	if p.pendingBond != 0 {
		return nil, fmt.Errorf("smiles: trailing bond symbol in %q", s)
	}
	if len(p.mol.Atoms) == 0 {
		return nil, fmt.Errorf("smiles: no atoms in %q", s)
	}
	return &p.mol, nil
}

func (p *parser) run() error {
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.errorf("branch with no preceding atom")
			}
			p.branchStack = append(p.branchStack, p.prev)
			p.pos++
		case c == ')':
			if len(p.branchStack) == 0 {
				return p.errorf("unmatched ')'")
			}
			p.prev = p.branchStack[len(p.branchStack)-1]
			p.branchStack = p.branchStack[:len(p.branchStack)-1]
			p.pos++
		case c == '.':
			if p.pendingBond != 0 {
				return p.errorf("bond before '.'")
			}
			p.prev = -1
			p.pos++
		case isBondSymbol(c):
			if p.pendingBond != 0 {
				return p.errorf("doubled bond symbol")
			}
			p.pendingBond = c
			p.pos++
		case c == '/' || c == '\\':
			// Directional bonds carry stereo information we do not keep;
			// treat as a single bond.
			p.pos++
		case c >= '0' && c <= '9':
			if err := p.ringClosure(int(c - '0')); err != nil {
				return err
			}
			p.pos++
		case c == '%':
			if p.pos+2 >= len(p.input) || !isDigit(p.input[p.pos+1]) || !isDigit(p.input[p.pos+2]) {
				return p.errorf("malformed %%nn ring closure")
			}
			n := int(p.input[p.pos+1]-'0')*10 + int(p.input[p.pos+2]-'0')
			if err := p.ringClosure(n); err != nil {
				return err
			}
			p.pos += 3
		case c == '[':
			atom, consumed, err := parseBracketAtom(p.input[p.pos:])
			if err != nil {
				return fmt.Errorf("smiles: %v at position %d in %q", err, p.pos, p.input)
			}
			p.pos += consumed
			p.addAtom(atom)
		default:
			atom, consumed, err := parseOrganicAtom(p.input[p.pos:])
			if err != nil {
				return fmt.Errorf("smiles: %v at position %d in %q", err, p.pos, p.input)
			}
			p.pos += consumed
			p.addAtom(atom)
		}
	}
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("smiles: %s at position %d in %q", msg, p.pos, p.input)
}

func (p *parser) addAtom(a Atom) {
	idx := len(p.mol.Atoms)
	p.mol.Atoms = append(p.mol.Atoms, a)
	if p.prev >= 0 {
		p.mol.Bonds = append(p.mol.Bonds, makeBond(p.prev, idx, p.pendingBond, p.mol.Atoms[p.prev].Aromatic && a.Aromatic))
	}
	p.pendingBond = 0
	p.prev = idx
}

func (p *parser) ringClosure(n int) error {
	if p.prev < 0 {
		return p.errorf("ring closure digit with no preceding atom")
	}
	open, ok := p.ringBonds[n]
	if !ok {
		p.ringBonds[n] = ringOpen{atom: p.prev, bond: p.pendingBond}
		p.pendingBond = 0
		return nil
	}
	delete(p.ringBonds, n)

	bondSym := open.bond
	if p.pendingBond != 0 {
		if bondSym != 0 && bondSym != p.pendingBond {
			return p.errorf("conflicting bond orders on ring closure %d", n)
		}
		bondSym = p.pendingBond
	}
	p.pendingBond = 0
	if open.atom == p.prev {
		return p.errorf("ring closure %d bonds an atom to itself", n)
	}
	aromatic := p.mol.Atoms[open.atom].Aromatic && p.mol.Atoms[p.prev].Aromatic
	p.mol.Bonds = append(p.mol.Bonds, makeBond(open.atom, p.prev, bondSym, aromatic))
	return nil
}

func makeBond(from, to int, sym byte, bothAromatic bool) Bond {
	b := Bond{From: from, To: to, Order: 1}
	switch sym {
	case '=':
		b.Order = 2
	case '#':
		b.Order = 3
	case '$':
		b.Order = 4
	case ':':
		b.Aromatic = true
	case 0:
		// Unspecified bond between two aromatic atoms is aromatic.
		b.Aromatic = bothAromatic
	}
	return b
}

func isBondSymbol(c byte) bool {
	return c == '-' || c == '=' || c == '#' || c == '$' || c == ':'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

// parseOrganicAtom reads an organic-subset atom (no brackets) from the head
// of s. Returns the atom and the number of bytes consumed.
func parseOrganicAtom(s string) (Atom, int, error) {
	for _, sym := range organicTwoLetter {
		if strings.HasPrefix(s, sym) {
			return Atom{Symbol: sym, Hydrogens: -1}, len(sym), nil
		}
	}
	c := s[0]
	if organicOneLetter[c] {
		return Atom{Symbol: string(c), Hydrogens: -1}, 1, nil
	}
	if aromaticOrganic[c] {
		return Atom{Symbol: strings.ToUpper(string(c)), Aromatic: true, Hydrogens: -1}, 1, nil
	}
	if c == '*' {
		return Atom{Symbol: "*", Hydrogens: -1}, 1, nil
	}
	return Atom{}, 0, fmt.Errorf("unexpected character %q", c)
}

// parseBracketAtom reads a full bracket atom expression starting at '['.
// Grammar: [ isotope? symbol chiral? hcount? charge? class? ]
func parseBracketAtom(s string) (Atom, int, error) {
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return Atom{}, 0, fmt.Errorf("unterminated bracket atom")
	}
	body := s[1:end]
	if body == "" {
		return Atom{}, 0, fmt.Errorf("empty bracket atom")
	}

	atom := Atom{Hydrogens: 0} // bracket atoms have fully explicit hydrogens
	i := 0

	for i < len(body) && isDigit(body[i]) {
		atom.Isotope = atom.Isotope*10 + int(body[i]-'0')
		i++
	}

	switch {
	case i < len(body) && isUpper(body[i]):
		j := i + 1
		// Any capital+lowercase pair is taken as a two-letter element.
		if j < len(body) && isLower(body[j]) {
			j++
		}
		atom.Symbol = body[i:j]
		i = j
	case i < len(body) && isLower(body[i]):
		j := i + 1
		if j < len(body) && isLower(body[j]) && aromaticBracket[body[i:j+1]] {
			j++
		}
		sym := body[i:j]
		if !aromaticBracket[sym] {
			return Atom{}, 0, fmt.Errorf("unknown aromatic symbol %q", sym)
		}
		atom.Symbol = strings.ToUpper(sym[:1]) + sym[1:]
		atom.Aromatic = true
		i = j
	case i < len(body) && body[i] == '*':
		atom.Symbol = "*"
		i++
	default:
		return Atom{}, 0, fmt.Errorf("missing element symbol in bracket atom")
	}

	// Chirality markers: @, @@, @TH1 style suffixes are skipped.
	for i < len(body) && body[i] == '@' {
		i++
		for i < len(body) && (isUpper(body[i]) || isDigit(body[i])) && body[i] != 'H' {
			i++
		}
	}

	if i < len(body) && body[i] == 'H' {
		i++
		atom.Hydrogens = 1
		if i < len(body) && isDigit(body[i]) {
			atom.Hydrogens = int(body[i] - '0')
			i++
		}
	}

	for i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		i++
		if i < len(body) && isDigit(body[i]) {
			atom.Charge += sign * int(body[i]-'0')
			i++
		} else {
			atom.Charge += sign
		}
	}

	if i < len(body) && body[i] == ':' {
		i++
		if i >= len(body) || !isDigit(body[i]) {
			return Atom{}, 0, fmt.Errorf("malformed atom class")
		}
		for i < len(body) && isDigit(body[i]) {
			i++ // atom-map class number, not retained
		}
	}

	if i != len(body) {
		return Atom{}, 0, fmt.Errorf("unexpected %q in bracket atom", body[i:])
	}
	return atom, end + 1, nil
}
