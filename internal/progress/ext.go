package progress

import "io"

// Ext is the capability set shared by every kind of indicator: plain bars,
// bars owned by a Multi and iterator-driven bars.
type Ext interface {
	Update(n uint64) (bool, error)
	UpdateTo(n uint64) (bool, error)
	Reset(total *uint64)
	Render() string
	Refresh() error
	Clear() error
	WriteMessage(text string) error
	Input(prompt string) (string, error)
	WriteLineTo(w io.Writer, n *uint64) (bool, error)
}

var (
	_ Ext = (*Bar)(nil)
	_ Ext = (*Iter[struct{}])(nil)
)
