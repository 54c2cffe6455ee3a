package progress

import (
	"iter"
	"slices"
)

// Iter is a bar driven by iteration: every item yielded advances it by one.
type Iter[T any] struct {
	*Bar
	seq iter.Seq[T]
	err error
}

// Wrap returns an Iter over items with the total set to len(items).
func Wrap[T any](items []T, opts ...Option) *Iter[T] {
	opts = append([]Option{OptionTotal(uint64(len(items)))}, opts...)
	return WrapSeq(slices.Values(items), opts...)
}

// WrapSeq returns an Iter over seq. The bar is indefinite unless
// OptionTotal is given.
func WrapSeq[T any](seq iter.Seq[T], opts ...Option) *Iter[T] {
	return &Iter[T]{Bar: New(opts...), seq: seq}
}

// All yields the wrapped items, updating the bar after each one. Iteration
// stops early on the first redraw error, which Err then reports.
//
// When the sequence is exhausted the bar is closed, drawing its final line.
// A loop that breaks early leaves the bar open; call Close to finish it.
func (it *Iter[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range it.seq {
			if !yield(v) {
				return
			}
			if _, err := it.Update(1); err != nil {
				it.err = err
				return
			}
		}
		if err := it.Close(); err != nil {
			it.err = err
		}
	}
}

// Err returns the error that stopped All, if any.
func (it *Iter[T]) Err() error {
	return it.err
}
