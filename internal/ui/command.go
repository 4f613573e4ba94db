package ui

import "strings"

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':').
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}

// executeCommand runs a confirmed command buffer. The caller has
// already left command mode; commands that open another mode set it
// here.
func executeCommand(st *State, raw string) Action {
	cmd := ParseCommand(raw)
	switch cmd.Name {
	case "":
		return nil
	case "q", "quit":
		st.Quit = true
	case "reload":
		st.Reload = true
	case "find":
		st.enterFind()
		if cmd.Args == "" {
			return nil
		}
		st.FindInput = cmd.Args
		st.Find = FindResult{State: FindSearching}
		return ActionLookup{Query: cmd.Args}
	case "accounts":
		st.enterAccounts()
	case "disconnect", "logout":
		st.Disconnect = true
	case "help":
		st.ShowHelp = !st.ShowHelp
	default:
		st.Notice = "unknown command :" + cmd.Name
	}
	return nil
}
