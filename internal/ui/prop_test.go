package ui

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"pgregory.net/rapid"

	"github.com/subhdotsol/vimgram/internal/chat"
)

// TestSelectionStaysInRange drives arbitrary navigation sequences and
// checks the cursor never leaves the list and scroll never underflows.
func TestSelectionStaysInRange(t *testing.T) {
	keys := []*tcell.EventKey{
		key('j'), key('k'), key('g'), key('G'), key('h'), key('l'),
		press(tcell.KeyDown), press(tcell.KeyUp),
	}
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "chats")
		s := chat.NewStore()
		for i := 0; i < n; i++ {
			s.Upsert(int64(i+1), fmt.Sprintf("chat %d", i+1))
		}
		st := NewState(nil, "")

		steps := rapid.IntRange(0, 200).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			Dispatch(st, s, rapid.SampledFrom(keys).Draw(t, "key"))
			if st.Selected < 0 || st.Selected > n-1 {
				t.Fatalf("Selected = %d, outside [0,%d]", st.Selected, n-1)
			}
			if st.Scroll < 0 {
				t.Fatalf("Scroll = %d, underflow", st.Scroll)
			}
		}
	})
}

// TestSelectionChangeClearsUnread checks that the selected chat's unread
// counter is zero the moment selection lands, whatever path moved it.
func TestSelectionChangeClearsUnread(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(t, "chats")
		s := chat.NewStore()
		for i := 0; i < n; i++ {
			s.Upsert(int64(i+1), fmt.Sprintf("chat %d", i+1))
			s.SetUnread(int64(i+1), rapid.IntRange(0, 9).Draw(t, "unread"))
		}
		st := NewState(nil, "")

		moves := rapid.SliceOfN(rapid.SampledFrom([]rune{'j', 'k', 'g', 'G'}), 1, 40).Draw(t, "moves")
		for _, r := range moves {
			before := st.Selected
			Dispatch(st, s, key(r))
			if st.Selected == before {
				continue
			}
			if c, ok := s.At(st.Selected); ok && c.Unread != 0 {
				t.Fatalf("chat %d selected with unread = %d", c.ID, c.Unread)
			}
		}
	})
}

// TestSearchFilterCharacterization pins the filter down for arbitrary
// chat names and queries: deterministic, order-preserving, and exactly
// the case-insensitive substring matches.
func TestSearchFilterCharacterization(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfN(rapid.StringMatching(`[a-zA-Z ]{0,12}`), 1, 10).Draw(t, "names")
		query := rapid.StringMatching(`[a-zA-Z]{0,4}`).Draw(t, "query")

		s := chat.NewStore()
		for i, name := range names {
			s.Upsert(int64(i+1), name)
		}
		st := NewState(nil, "")
		st.Mode = ModeSearch
		st.SearchInput = query
		st.updateFilter(s)

		first := append([]int(nil), st.Filtered...)
		st.updateFilter(s)
		if !slices.Equal(first, st.Filtered) {
			t.Fatalf("filter not deterministic: %v then %v", first, st.Filtered)
		}

		lower := strings.ToLower(query)
		last := -1
		for _, idx := range st.Filtered {
			if idx <= last {
				t.Fatalf("order not preserved: %v", st.Filtered)
			}
			last = idx
			if !strings.Contains(strings.ToLower(names[idx]), lower) {
				t.Fatalf("index %d (%q) does not match %q", idx, names[idx], query)
			}
		}

		want := 0
		for _, name := range names {
			if strings.Contains(strings.ToLower(name), lower) {
				want++
			}
		}
		if len(st.Filtered) != want {
			t.Fatalf("filtered %d of %d, want %d for query %q", len(st.Filtered), len(names), want, query)
		}

		if st.SearchSelected != 0 && (len(st.Filtered) == 0 || st.SearchSelected >= len(st.Filtered)) {
			t.Fatalf("SearchSelected = %d with %d matches", st.SearchSelected, len(st.Filtered))
		}
	})
}
