package ui

import (
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/nexus/internal/search"
)

func TestMailbox_NeverDropsVisibilityChanges(t *testing.T) {
	// Given: a presenter whose program is not draining
	tui := &TUI{box: newMailbox()}

	// When: far more show/hide pushes arrive than any fixed buffer holds
	const n = 1000
	for i := range n {
		if i%2 == 0 {
			tui.Show()
		} else {
			tui.Hide()
		}
	}
	tui.Notice("index ready")

	// Then: every one is delivered, in order, and the last state is hide
	select {
	case <-tui.box.ready():
	default:
		t.Fatal("mailbox did not signal")
	}
	got := tui.box.take()
	require.Len(t, got, n+1)
	assert.IsType(t, showMsg{}, got[0])
	assert.IsType(t, hideMsg{}, got[n-1])
	assert.Equal(t, noticeMsg("index ready"), got[n])
	assert.Empty(t, tui.box.take())
}

func TestMailbox_CoalescesWaitingResults(t *testing.T) {
	// Given: results queued back to back around a show and a hide
	box := newMailbox()
	box.put(showMsg{})
	box.put(resultsMsg(search.ResultSet{Seq: 1}))
	box.put(resultsMsg(search.ResultSet{Seq: 2}))
	box.put(hideMsg{})
	box.put(resultsMsg(search.ResultSet{Seq: 3}))

	// When: drained
	got := box.take()

	// Then: only the newer of adjacent result sets survives
	assert.Equal(t, []tea.Msg{
		showMsg{},
		resultsMsg(search.ResultSet{Seq: 2}),
		hideMsg{},
		resultsMsg(search.ResultSet{Seq: 3}),
	}, got)
}

func TestMailbox_ConcurrentPutsAllArrive(t *testing.T) {
	box := newMailbox()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				box.put(noticeMsg("x"))
			}
		}()
	}
	wg.Wait()

	assert.Len(t, box.take(), 800)
}
