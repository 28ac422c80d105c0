package workspace

import (
	"fmt"
	"io"
	"sync"
)

// WriterNotifier prints session notifications as single prefixed lines.
type WriterNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewWriterNotifier(out io.Writer) *WriterNotifier {
	return &WriterNotifier{out: out}
}

func (n *WriterNotifier) Success(msg string) { n.print("✓", msg) }
func (n *WriterNotifier) Warning(msg string) { n.print("!", msg) }
func (n *WriterNotifier) Error(msg string)   { n.print("✗", msg) }

func (n *WriterNotifier) print(prefix, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.out, "%s %s\n", prefix, msg)
}
