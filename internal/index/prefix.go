package index

import (
	"slices"

	"github.com/Aman-CERP/nexus/internal/entry"
)

// PrefixIndex maps every prefix of every entry word to the ids of the
// entries containing such a word. Each trie node keeps the ids below it,
// so a lookup costs the prefix length plus the size of the answer.
type PrefixIndex struct {
	root *node
}

type node struct {
	children map[rune]*node
	ids      []entry.ID
}

// NewPrefixIndex returns an empty index.
func NewPrefixIndex() *PrefixIndex {
	return &PrefixIndex{root: &node{}}
}

// Insert indexes the entry's words and its initials.
// Entries must be inserted at most once.
func (p *PrefixIndex) Insert(e entry.Entry) {
	for _, w := range e.Words {
		p.insertWord(w, e.ID)
	}
	if e.Initials != "" {
		p.insertWord(e.Initials, e.ID)
	}
}

func (p *PrefixIndex) insertWord(word string, id entry.ID) {
	n := p.root
	for _, r := range word {
		child, ok := n.children[r]
		if !ok {
			if n.children == nil {
				n.children = make(map[rune]*node)
			}
			child = &node{}
			n.children[r] = child
		}
		// Words of one entry are inserted back to back, so checking the
		// last id is enough to keep each node's list unique.
		if len(child.ids) == 0 || child.ids[len(child.ids)-1] != id {
			child.ids = append(child.ids, id)
		}
		n = child
	}
}

// Lookup returns the ids of entries having any word that starts with
// prefix, in insertion order. An empty prefix matches nothing.
func (p *PrefixIndex) Lookup(prefix string) []entry.ID {
	if prefix == "" {
		return nil
	}
	n := p.root
	for _, r := range prefix {
		n = n.children[r]
		if n == nil {
			return nil
		}
	}
	return slices.Clone(n.ids)
}

// LookupAll returns the entries for which every word in words prefixes
// some entry word. Order follows the lookup of the first word.
func (p *PrefixIndex) LookupAll(words []string) []entry.ID {
	if len(words) == 0 {
		return nil
	}
	ids := p.Lookup(words[0])
	for _, w := range words[1:] {
		if len(ids) == 0 {
			return nil
		}
		keep := make(map[entry.ID]struct{})
		for _, id := range p.Lookup(w) {
			keep[id] = struct{}{}
		}
		ids = slices.DeleteFunc(ids, func(id entry.ID) bool {
			_, ok := keep[id]
			return !ok
		})
	}
	return ids
}
