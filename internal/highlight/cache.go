package highlight

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tverras/kiln/internal/engine/piecetable"
	"github.com/tverras/kiln/internal/language"
)

// DefaultChunkLines is the number of lines per highlight chunk.
const DefaultChunkLines = 100

// pollInterval is the worker's queue poll period, one target frame.
const pollInterval = 8333 * time.Microsecond

// Kind classifies a highlight span.
type Kind uint8

const (
	KindKeyword Kind = iota
	KindString
	KindComment
	KindNumber
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindString:
		return "string"
	case KindComment:
		return "comment"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Span is one highlighted run. Start is a byte offset relative to the
// start of the chunk the span was computed for, or to the query start
// for spans returned by SpansForLines.
type Span struct {
	Start  int
	Length int
	Kind   Kind
}

// chunkText is one unit of work for the worker: a chunk index and the
// chunk's raw text, extracted on the edit thread so the worker never
// touches the piece table.
type chunkText struct {
	index int
	text  []byte
}

// Cache is the per-buffer highlight cache plus its worker.
type Cache struct {
	language   *language.Language
	keywords   map[string]struct{}
	chunkLines int

	queueMu sync.Mutex
	queue   []chunkText

	mu    sync.RWMutex
	spans map[int][]Span

	updated   atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// New builds a cache for lang and starts the worker. Returns nil for
// unrecognised languages; a nil *Cache means no highlighting.
// chunkLines <= 0 selects DefaultChunkLines.
func New(lang *language.Language, chunkLines int) *Cache {
	if lang == nil || !lang.Known() {
		return nil
	}
	if chunkLines <= 0 {
		chunkLines = DefaultChunkLines
	}
	c := &Cache{
		language:   lang,
		keywords:   lang.KeywordSet(),
		chunkLines: chunkLines,
		spans:      make(map[int][]Span),
		done:       make(chan struct{}),
	}
	go c.worker()
	return c
}

// Close stops the worker.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// ChunkLines returns the configured chunk size in lines.
func (c *Cache) ChunkLines() int {
	return c.chunkLines
}

// TakeUpdated reports whether the worker has replaced a chunk since
// the last call and clears the flag. The render loop uses it to decide
// whether a redraw is needed.
func (c *Cache) TakeUpdated() bool {
	return c.updated.Swap(false)
}

func (c *Cache) worker() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		item, ok := c.pop()
		if !ok {
			continue
		}
		spans := tokenize(item.text, c.keywords, c.language.LineCommentToken)

		c.mu.Lock()
		c.spans[item.index] = spans
		c.mu.Unlock()
		c.updated.Store(true)
	}
}

func (c *Cache) pop() (chunkText, bool) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	if len(c.queue) == 0 {
		return chunkText{}, false
	}
	item := c.queue[0]
	c.queue = c.queue[1:]
	return item, true
}

func (c *Cache) enqueue(index int, text []byte) {
	c.queueMu.Lock()
	c.queue = append(c.queue, chunkText{index: index, text: text})
	c.queueMu.Unlock()
}

// chunkIndex returns the index of the chunk containing position.
func (c *Cache) chunkIndex(t *piecetable.Table, position piecetable.ByteOffset) int {
	return t.LineIndex(position) / c.chunkLines
}

// Refresh extracts the text of the chunk containing position and
// queues it for recomputation.
func (c *Cache) Refresh(t *piecetable.Table, position piecetable.ByteOffset) {
	index := c.chunkIndex(t, position)
	startLine := index * c.chunkLines
	c.enqueue(index, t.TextBetweenLines(startLine, startLine+c.chunkLines-1))
}

// Reload drops every cached chunk and re-queues the whole document.
// Used after undo/redo, where no single edit range describes the
// change.
func (c *Cache) Reload(t *piecetable.Table) {
	c.mu.Lock()
	c.spans = make(map[int][]Span)
	c.mu.Unlock()

	// NumLines counts line breaks, so the document has one more line.
	chunks := (t.NumLines() + c.chunkLines) / c.chunkLines
	if chunks == 0 {
		chunks = 1
	}
	for index := 0; index < chunks; index++ {
		startLine := index * c.chunkLines
		c.enqueue(index, t.TextBetweenLines(startLine, startLine+c.chunkLines-1))
	}
}

// InsertRebalance shifts cached spans in the chunk containing
// position forward by count when they start at or after the edit
// point, keeping the chunk approximately valid until the worker
// recomputes it. Called after the table mutation.
func (c *Cache) InsertRebalance(t *piecetable.Table, position piecetable.ByteOffset, count int) {
	index := c.chunkIndex(t, position)
	chunkOffset, ok := t.OffsetFromLineCol(index*c.chunkLines, 0)
	if !ok {
		return
	}
	rel := position - chunkOffset

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, span := range c.spans[index] {
		if span.Start >= rel {
			c.spans[index][i].Start += count
		}
	}
}

// DeleteRebalance shifts cached spans at or after the deleted range
// [position, end) backward by its length. Called before the table
// mutation, so line/offset lookups still see the old text.
func (c *Cache) DeleteRebalance(t *piecetable.Table, position, end piecetable.ByteOffset) {
	index := c.chunkIndex(t, position)
	chunkOffset, ok := t.OffsetFromLineCol(index*c.chunkLines, 0)
	if !ok {
		return
	}
	rel := position - chunkOffset
	removed := end - position

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, span := range c.spans[index] {
		if span.Start >= rel+removed {
			c.spans[index][i].Start -= removed
		}
	}
}

// SpansForLines returns the cached spans covering [startLine, endLine),
// with Start rebased to the first byte of startLine. The read is a
// non-blocking lock attempt: if the worker holds the cache, the result
// is empty and the caller draws unhighlighted text for one frame. The
// window is assumed to straddle at most two chunks.
func (c *Cache) SpansForLines(t *piecetable.Table, startLine, endLine int) []Span {
	startIndex := startLine / c.chunkLines
	startChunkOffset, ok := t.OffsetFromLineCol(startIndex*c.chunkLines, 0)
	if !ok {
		return nil
	}
	startOffset, ok := t.OffsetFromLineCol(startLine, 0)
	if !ok {
		return nil
	}
	rel := startOffset - startChunkOffset

	spans := c.readChunk(startIndex)
	out := spans[:0]
	for _, span := range spans {
		if span.Start < rel {
			continue
		}
		span.Start -= rel
		out = append(out, span)
	}

	endIndex := endLine / c.chunkLines
	if endIndex != startIndex {
		endChunkOffset, ok := t.OffsetFromLineCol(endIndex*c.chunkLines, 0)
		if !ok {
			endChunkOffset = t.Len()
		}
		endOffset, ok := t.OffsetFromLineCol(endLine, 0)
		if !ok {
			endOffset = t.Len()
		}
		endRel := endOffset - endChunkOffset

		for _, span := range c.readChunk(endIndex) {
			if span.Start >= endRel {
				continue
			}
			span.Start += (endOffset - startOffset) - endRel
			out = append(out, span)
		}
	}

	return out
}

// readChunk copies a chunk's spans under a non-blocking read lock.
func (c *Cache) readChunk(index int) []Span {
	if !c.mu.TryRLock() {
		return nil
	}
	defer c.mu.RUnlock()
	spans := c.spans[index]
	if len(spans) == 0 {
		return nil
	}
	out := make([]Span, len(spans))
	copy(out, spans)
	return out
}
