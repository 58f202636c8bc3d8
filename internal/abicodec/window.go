package abicodec

import "math/big"

// window is a view into the encoded byte string rooted at an absolute
// base offset, with its own read cursor relative to that base. Every
// offset word in the head/tail encoding is relative to the start of its
// enclosing head region, which is exactly what a window's base tracks;
// child rebases onto a new absolute position without copying data.
type window struct {
	full   []byte
	base   int
	cursor int
}

func newWindow(full []byte) *window {
	return &window{full: full}
}

// position returns the current absolute read position.
func (w *window) position() int {
	return w.base + w.cursor
}

func (w *window) takeWord() ([]byte, error) {
	start := w.base + w.cursor
	if start < 0 || start+wordSize > len(w.full) {
		return nil, newDecodeError(DecodeUnexpectedEnd, "word at %d exceeds buffer of length %d", start, len(w.full))
	}
	word := w.full[start : start+wordSize]
	w.cursor += wordSize
	return word, nil
}

// takeOffset reads the next word as an unsigned integer small enough to
// be a plausible offset or length into this buffer.
func (w *window) takeOffset() (int, error) {
	word, err := w.takeWord()
	if err != nil {
		return 0, err
	}
	n := new(big.Int).SetBytes(word)
	if !n.IsUint64() || n.Uint64() > uint64(len(w.full)) {
		return 0, newDecodeError(DecodeInvalidLength, "offset/length word %s exceeds buffer of length %d", n.String(), len(w.full))
	}
	return int(n.Uint64()), nil
}

func (w *window) takeSlice(n int) ([]byte, error) {
	start := w.base + w.cursor
	if n < 0 || start < 0 || start+n > len(w.full) {
		return nil, newDecodeError(DecodeInvalidLength, "slice of length %d at %d exceeds buffer of length %d", n, start, len(w.full))
	}
	s := w.full[start : start+n]
	w.cursor += n
	return s, nil
}

// child returns a new window rooted at this window's base plus offset,
// with a fresh zero cursor. offset is always relative to this window's
// own base, matching how head-region offset words are interpreted.
func (w *window) child(offset int) (*window, error) {
	base := w.base + offset
	if base < 0 || base > len(w.full) {
		return nil, newDecodeError(DecodeUnexpectedEnd, "child window base %d exceeds buffer of length %d", base, len(w.full))
	}
	return &window{full: w.full, base: base}, nil
}
