package notify

import (
	"context"
	"fmt"
	"io"
)

// BellNotifier rings the terminal bell.
type BellNotifier struct {
	w io.Writer
}

// NewBellNotifier writes BEL characters to w.
func NewBellNotifier(w io.Writer) *BellNotifier {
	return &BellNotifier{w: w}
}

// Notify implements Notifier.
func (b *BellNotifier) Notify(context.Context, Event) error {
	if _, err := io.WriteString(b.w, "\a"); err != nil {
		return fmt.Errorf("failed to ring bell: %w", err)
	}
	return nil
}
