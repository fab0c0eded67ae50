package header

import (
	"fmt"
	"io"
)

// WriterNotifier prints alerts to W. It is used when there is no
// interactive view to block on.
type WriterNotifier struct {
	W io.Writer
}

// Alert implements Notifier.
func (n WriterNotifier) Alert(message string) {
	fmt.Fprintf(n.W, "! %s\n", message)
}
