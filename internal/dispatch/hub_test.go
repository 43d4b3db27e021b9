package dispatch

import (
	"testing"

	"github.com/samanthvittal/bookmark-browser/internal/logger"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub(4, logger.NewNop())
	a, cancelA := h.Subscribe()
	b, cancelB := h.Subscribe()
	defer cancelB()

	h.Notify(Notification{Type: NotifyStatus, Status: &Status{Phase: PhaseIdle}})

	for name, ch := range map[string]<-chan Notification{"a": a, "b": b} {
		select {
		case n := <-ch:
			if n.Type != NotifyStatus {
				t.Errorf("%s got %v", name, n.Type)
			}
		default:
			t.Errorf("%s got nothing", name)
		}
	}

	cancelA()
	cancelA()
	if _, ok := <-a; ok {
		t.Error("channel should be closed after cancel")
	}
	if h.Subscribers() != 1 {
		t.Errorf("Subscribers() = %d, want 1", h.Subscribers())
	}
	h.Notify(Notification{Type: NotifyDocument})
}

func TestHubDropsWhenFull(t *testing.T) {
	h := NewHub(1, logger.NewNop())
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Notify(Notification{Type: NotifyDocument})
	h.Notify(Notification{Type: NotifyStatus})

	if n := <-ch; n.Type != NotifyDocument {
		t.Errorf("first notification = %v", n.Type)
	}
	select {
	case n := <-ch:
		t.Errorf("expected the overflow to be dropped, got %v", n.Type)
	default:
	}
}

func TestHubClose(t *testing.T) {
	h := NewHub(1, logger.NewNop())
	ch, cancel := h.Subscribe()

	h.Close()
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Close")
	}
	cancel()

	late, _ := h.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribe after Close should return a closed channel")
	}
	if h.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, want 0", h.Subscribers())
	}
	h.Notify(Notification{Type: NotifyDocument})
}
