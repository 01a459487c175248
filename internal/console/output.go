package console

import (
	"fmt"
	"io"
	"sync"
)

// Navigator "leaves" the storefront by printing the payment URL.
type Navigator struct {
	mu  sync.Mutex
	out io.Writer
	url string
}

func NewNavigator(out io.Writer) *Navigator {
	return &Navigator{out: out}
}

func (n *Navigator) Navigate(url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.url = url
	_, err := fmt.Fprintf(n.out, "Complete your payment at: %s\n", url)
	return err
}

// Last returns the most recent redirect target.
func (n *Navigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.url
}

type Notifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

func (n *Notifier) Alert(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "! %s\n", message)
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// SyncWriter serialises writes from the prompt loop and the countdown goroutine.
func SyncWriter(w io.Writer) io.Writer {
	return &syncWriter{w: w}
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
