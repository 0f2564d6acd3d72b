package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ekoscanner/ekoscanner/internal/domain"
)

type (
	stateMsg     domain.LookupState
	codeMsg      string
	cameraErrMsg struct{ err error }
)

// Events carries pipeline transitions and scanner output from background
// goroutines into the update loop. Publishing never blocks after Close.
type Events struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

// NewEvents creates an open event bridge
func NewEvents() *Events {
	return &Events{
		ch:   make(chan tea.Msg, 16),
		done: make(chan struct{}),
	}
}

// PublishState forwards a lookup state; use it as the pipeline observer
func (e *Events) PublishState(s domain.LookupState) {
	e.publish(stateMsg(s))
}

// PublishCode forwards a barcode read by the scanner
func (e *Events) PublishCode(code string) {
	e.publish(codeMsg(code))
}

// PublishCameraError forwards a scanner failure
func (e *Events) PublishCameraError(err error) {
	e.publish(cameraErrMsg{err: err})
}

func (e *Events) publish(msg tea.Msg) {
	select {
	case <-e.done:
		return
	default:
	}
	select {
	case e.ch <- msg:
	case <-e.done:
	}
}

// Close releases any publisher still waiting. It is safe to call more than once.
func (e *Events) Close() {
	e.once.Do(func() { close(e.done) })
}

// wait returns a command that yields the next event, or nil once closed
func (e *Events) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-e.ch:
			return msg
		case <-e.done:
			return nil
		}
	}
}
