package gf

import "fmt"

// Block is an orbital group: a name and its ordered inner indices.
type Block struct {
	Name    string
	Indices []int
}

// Size returns the number of inner indices.
func (b Block) Size() int { return len(b.Indices) }

// Structure is an ordered, validated list of blocks. Immutable after NewStructure.
type Structure struct {
	blocks []Block
	byName map[string]int
}

// NewStructure validates and copies blocks.
//
// Errors: ErrEmptyStructure, ErrDuplicateBlock, ErrEmptyBlock, ErrDuplicateIndex.
func NewStructure(blocks ...Block) (Structure, error) {
	if len(blocks) == 0 {
		return Structure{}, ErrEmptyStructure
	}
	s := Structure{blocks: make([]Block, len(blocks)), byName: make(map[string]int, len(blocks))}
	for b, blk := range blocks {
		if _, dup := s.byName[blk.Name]; dup {
			return Structure{}, fmt.Errorf("block %q: %w", blk.Name, ErrDuplicateBlock)
		}
		if len(blk.Indices) == 0 {
			return Structure{}, fmt.Errorf("block %q: %w", blk.Name, ErrEmptyBlock)
		}
		seen := make(map[int]struct{}, len(blk.Indices))
		for _, ix := range blk.Indices {
			if _, dup := seen[ix]; dup {
				return Structure{}, fmt.Errorf("block %q index %d: %w", blk.Name, ix, ErrDuplicateIndex)
			}
			seen[ix] = struct{}{}
		}
		s.byName[blk.Name] = b
		s.blocks[b] = Block{Name: blk.Name, Indices: append([]int(nil), blk.Indices...)}
	}

	return s, nil
}

// Len returns the number of blocks.
func (s Structure) Len() int { return len(s.blocks) }

// Block returns block b.
func (s Structure) Block(b int) Block { return s.blocks[b] }

// Blocks returns a copy of the block list.
func (s Structure) Blocks() []Block { return append([]Block(nil), s.blocks...) }

// Size returns the inner dimension of block b.
func (s Structure) Size(b int) int { return len(s.blocks[b].Indices) }

// Lookup returns the position of the named block.
func (s Structure) Lookup(name string) (int, error) {
	b, ok := s.byName[name]
	if !ok {
		return 0, fmt.Errorf("Lookup(%q): %w", name, ErrUnknownBlock)
	}

	return b, nil
}

// Equal reports whether both structures list the same blocks in the same order.
func (s Structure) Equal(o Structure) bool {
	if len(s.blocks) != len(o.blocks) {
		return false
	}
	for b := range s.blocks {
		if s.blocks[b].Name != o.blocks[b].Name || len(s.blocks[b].Indices) != len(o.blocks[b].Indices) {
			return false
		}
		for i := range s.blocks[b].Indices {
			if s.blocks[b].Indices[i] != o.blocks[b].Indices[i] {
				return false
			}
		}
	}

	return true
}
