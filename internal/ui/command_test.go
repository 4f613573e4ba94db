package ui

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Command
	}{
		{"bare", "quit", Command{Name: "quit"}},
		{"uppercased name", "RELOAD", Command{Name: "reload"}},
		{"single arg", "find bob", Command{Name: "find", Args: "bob"}},
		{"multiword args", "find bob smith", Command{Name: "find", Args: "bob smith"}},
		{"padded", "  find   bob  ", Command{Name: "find", Args: "bob"}},
		{"empty", "", Command{Name: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCommand(tt.input); got != tt.want {
				t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExecuteCommandVocabulary(t *testing.T) {
	t.Run("quit", func(t *testing.T) {
		for _, raw := range []string{"q", "quit"} {
			st := NewState(nil, "")
			executeCommand(st, raw)
			if !st.Quit {
				t.Errorf(":%s must quit", raw)
			}
		}
	})

	t.Run("reload", func(t *testing.T) {
		st := NewState(nil, "")
		executeCommand(st, "reload")
		if !st.Reload {
			t.Error(":reload must raise the reload flag")
		}
	})

	t.Run("disconnect and alias", func(t *testing.T) {
		for _, raw := range []string{"disconnect", "logout"} {
			st := NewState(nil, "")
			executeCommand(st, raw)
			if !st.Disconnect {
				t.Errorf(":%s must request a disconnect", raw)
			}
		}
	})

	t.Run("accounts", func(t *testing.T) {
		st := NewState([]AccountEntry{{ID: "default", Label: "Default"}}, "default")
		executeCommand(st, "accounts")
		if st.Mode != ModeAccounts {
			t.Errorf("Mode = %v, want ACCOUNTS", st.Mode)
		}
	})

	t.Run("help toggles", func(t *testing.T) {
		st := NewState(nil, "")
		executeCommand(st, "help")
		if !st.ShowHelp {
			t.Fatal(":help must open the overlay")
		}
		executeCommand(st, "help")
		if st.ShowHelp {
			t.Error("a second :help must close it")
		}
	})

	t.Run("find with query starts the lookup", func(t *testing.T) {
		st := NewState(nil, "")
		act := executeCommand(st, "find bob")

		lookup, ok := act.(ActionLookup)
		if !ok || lookup.Query != "bob" {
			t.Fatalf("action = %#v, want ActionLookup{bob}", act)
		}
		if st.Mode != ModeFindUser || st.FindInput != "bob" {
			t.Errorf("Mode = %v, FindInput = %q", st.Mode, st.FindInput)
		}
		if st.Find.State != FindSearching {
			t.Errorf("Find.State = %v, want searching", st.Find.State)
		}
	})

	t.Run("find without query just opens the mode", func(t *testing.T) {
		st := NewState(nil, "")
		if act := executeCommand(st, "find"); act != nil {
			t.Fatalf("action = %#v, want nil", act)
		}
		if st.Mode != ModeFindUser || st.FindInput != "" {
			t.Errorf("Mode = %v, FindInput = %q", st.Mode, st.FindInput)
		}
	})

	t.Run("unknown command flashes", func(t *testing.T) {
		st := NewState(nil, "")
		executeCommand(st, "frobnicate now")
		if st.Notice != "unknown command :frobnicate" {
			t.Errorf("Notice = %q", st.Notice)
		}
		if st.Quit || st.Reload || st.Disconnect {
			t.Error("unknown commands must have no other effect")
		}
	})

	t.Run("empty buffer is a no-op", func(t *testing.T) {
		st := NewState(nil, "")
		executeCommand(st, "   ")
		if st.Notice != "" {
			t.Errorf("Notice = %q, want none for an empty command", st.Notice)
		}
	})
}
