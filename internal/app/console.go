package app

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/subhdotsol/vimgram/internal/accounts"
)

// PromptCredentials asks for the Telegram API credentials on the plain
// terminal, looping until the id parses and the hash is non-empty.
func PromptCredentials(r io.Reader, w io.Writer) (int, string, error) {
	in := bufio.NewReader(r)

	fmt.Fprintln(w, "Telegram API credentials")
	fmt.Fprintln(w, "Get these from https://my.telegram.org")

	var apiID int
	for {
		line, err := readLine(in, w, "API_ID: ")
		if err != nil {
			return 0, "", err
		}
		id, convErr := strconv.Atoi(line)
		if convErr != nil {
			fmt.Fprintln(w, "Invalid API_ID, enter a number.")
			continue
		}
		apiID = id
		break
	}

	for {
		hash, err := readLine(in, w, "API_HASH: ")
		if err != nil {
			return 0, "", err
		}
		if hash != "" {
			return apiID, hash, nil
		}
		fmt.Fprintln(w, "API_HASH cannot be empty.")
	}
}

// PromptNewAccount collects phone and label for a new account and
// registers it. The phone doubles as the login prefill, so it must be
// in international format.
func PromptNewAccount(r io.Reader, w io.Writer, reg *accounts.Registry) (accounts.Account, error) {
	in := bufio.NewReader(r)

	fmt.Fprintln(w, "New account")
	var phone string
	for {
		p, err := readLine(in, w, "Phone number (international format): ")
		if err != nil {
			return accounts.Account{}, err
		}
		if p != "" {
			phone = p
			break
		}
		fmt.Fprintln(w, "Phone number cannot be empty.")
	}

	name, err := readLine(in, w, "Account name (optional): ")
	if err != nil {
		return accounts.Account{}, err
	}

	return reg.Add(phone, name), nil
}

// readLine prompts and reads one trimmed line. A final line without a
// trailing newline still counts.
func readLine(in *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
