package piecetable

// Iter is a lazy forward byte iterator over the document. A fresh
// iterator can be started from any position; an empty document or an
// out-of-range position yields nothing.
type Iter struct {
	table    *Table
	pieceIdx int
	idx      int
	current  byte
	started  bool
}

// Iter returns a forward iterator over the whole document.
func (t *Table) Iter() *Iter {
	return &Iter{table: t}
}

// IterAt returns a forward iterator starting at position.
func (t *Table) IterAt(position ByteOffset) *Iter {
	offset := 0
	for i := range t.pieces {
		p := &t.pieces[i]
		if position < offset+p.length {
			return &Iter{table: t, pieceIdx: i, idx: position - offset}
		}
		offset += p.length
	}
	return &Iter{table: t, pieceIdx: len(t.pieces)}
}

// Next advances to the next byte. Returns false when iteration is done.
func (it *Iter) Next() bool {
	if it.started {
		it.idx++
	}
	it.started = true

	for it.pieceIdx < len(it.table.pieces) {
		p := &it.table.pieces[it.pieceIdx]
		if it.idx < p.length {
			it.current = it.table.buffer(p)[p.start+it.idx]
			return true
		}
		it.pieceIdx++
		it.idx = 0
	}
	return false
}

// Byte returns the current byte.
func (it *Iter) Byte() byte {
	return it.current
}

// ReverseIter is a lazy backward byte iterator. It yields the byte at
// its start position first and walks toward document start.
type ReverseIter struct {
	table    *Table
	pieceIdx int
	idx      int
	current  byte
	started  bool
	done     bool
}

// IterReverseAt returns a backward iterator starting at position,
// inclusive. An out-of-range position yields nothing.
func (t *Table) IterReverseAt(position ByteOffset) *ReverseIter {
	offset := 0
	for i := range t.pieces {
		p := &t.pieces[i]
		if position < offset+p.length {
			return &ReverseIter{table: t, pieceIdx: i, idx: position - offset}
		}
		offset += p.length
	}
	return &ReverseIter{table: t, done: true}
}

// Next advances toward the document start. Returns false when done.
func (it *ReverseIter) Next() bool {
	if it.done {
		return false
	}
	if it.started {
		it.idx--
		for it.idx < 0 {
			if it.pieceIdx == 0 {
				it.done = true
				return false
			}
			it.pieceIdx--
			it.idx = it.table.pieces[it.pieceIdx].length - 1
		}
	}
	it.started = true

	p := &it.table.pieces[it.pieceIdx]
	it.current = it.table.buffer(p)[p.start+it.idx]
	return true
}

// Byte returns the current byte.
func (it *ReverseIter) Byte() byte {
	return it.current
}
