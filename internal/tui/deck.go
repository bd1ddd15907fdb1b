package tui

import (
	"errors"
	"image/color"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/poideck/internal/model"
	"github.com/verte-zerg/poideck/internal/panel"
)

// KeyCount matches the hardware panel.
const KeyCount = 15

// minPressWindow is the shortest age after which a queued press is stale.
const minPressWindow = 100 * time.Millisecond

// ErrClosed is returned once the terminal panel has been closed by the user.
var ErrClosed = errors.New("terminal panel closed")

// Deck is a panel drawn in the terminal.
type Deck struct {
	send    func(tea.Msg)
	presses chan KeyPress
	now     func() time.Time
	done    chan struct{}
	count   int

	mu     sync.Mutex
	runErr error
	prog   *tea.Program
}

// Open starts the terminal panel on the alternate screen.
func Open() *Deck {
	presses := make(chan KeyPress, 16)
	m := NewModel(KeyCount, presses)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	d := newDeck(prog.Send, presses, KeyCount)
	d.prog = prog
	go func() {
		_, err := prog.Run()
		d.mu.Lock()
		d.runErr = err
		d.mu.Unlock()
		close(d.done)
	}()
	return d
}

func newDeck(send func(tea.Msg), presses chan KeyPress, count int) *Deck {
	return &Deck{
		send:    send,
		presses: presses,
		now:     time.Now,
		done:    make(chan struct{}),
		count:   count,
	}
}

func (d *Deck) KeyCount() int { return d.count }

func (d *Deck) Reset() error {
	if err := d.closedErr(); err != nil {
		return err
	}
	d.send(resetMsg{})
	return nil
}

func (d *Deck) SetImage(key int, g panel.Glyph) error {
	return d.setCell(key, cell{kind: cellGlyph, text: g.Name})
}

func (d *Deck) SetRGB(key int, c color.RGBA) error {
	return d.setCell(key, cell{kind: cellBlank, color: c})
}

func (d *Deck) SetText(key int, text string, opts panel.TextOptions) error {
	return d.setCell(key, cell{kind: cellText, text: text, color: opts.Foreground})
}

func (d *Deck) setCell(key int, c cell) error {
	if err := d.closedErr(); err != nil {
		return err
	}
	d.send(cellMsg{key: key, cell: c})
	return nil
}

// ReadButtons reports a single key press as pressed for one read. Holding a
// terminal key produces repeated presses at the keyboard repeat rate. Presses
// older than twice the timeout (at least minPressWindow) are dropped.
func (d *Deck) ReadButtons(timeout time.Duration) ([]bool, error) {
	staleAfter := max(2*timeout, minPressWindow)
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case p := <-d.presses:
			if d.now().Sub(p.At) > staleAfter {
				continue
			}
			pressed := make([]bool, d.count)
			pressed[p.Key] = true
			return pressed, nil
		case <-d.done:
			return nil, d.closedErr()
		case <-timer.C:
			return nil, model.ErrTimeout
		}
	}
}

// Drain drops every queued press.
func (d *Deck) Drain() error {
	for {
		select {
		case <-d.presses:
		default:
			return d.closedErr()
		}
	}
}

// Done is closed once the user quits the terminal panel.
func (d *Deck) Done() <-chan struct{} { return d.done }

func (d *Deck) closedErr() error {
	select {
	case <-d.done:
	default:
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.runErr != nil {
		return d.runErr
	}
	return ErrClosed
}

// Close stops the program and restores the terminal.
func (d *Deck) Close() error {
	if d.prog != nil {
		d.prog.Quit()
		d.prog.Wait()
	}
	return nil
}
