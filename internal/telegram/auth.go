package telegram

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"golang.org/x/term"

	"github.com/subhdotsol/vimgram/internal/bus"
	"github.com/subhdotsol/vimgram/internal/status"
)

// Logout invalidates the server-side authorization. Must be called while
// the connection is still up; the local session blob is wiped separately
// by the caller.
func (a *Adapter) Logout(ctx context.Context) error {
	if _, err := a.client.API().AuthLogOut(ctx); err != nil {
		return fmt.Errorf("log out: %w", err)
	}
	a.bus.Emit(bus.KindLoggedOut, nil)
	a.transition(status.LoggedOut)
	return nil
}

// terminalAuth collects login input on the plain terminal, before the
// screen is taken over. A prefilled phone skips the first prompt.
type terminalAuth struct {
	phone string
	in    *bufio.Reader
}

func newTerminalAuth(phone string) *terminalAuth {
	return &terminalAuth{phone: phone, in: bufio.NewReader(os.Stdin)}
}

func (t *terminalAuth) Phone(_ context.Context) (string, error) {
	if t.phone != "" {
		fmt.Printf("Logging in as %s\n", t.phone)
		return t.phone, nil
	}
	return t.prompt("Phone number (international format): ")
}

func (t *terminalAuth) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	return t.prompt("Login code: ")
}

func (t *terminalAuth) Password(_ context.Context) (string, error) {
	fmt.Print("Two-step verification password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func (t *terminalAuth) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return nil
}

func (t *terminalAuth) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("this phone has no account, sign up with an official client first")
}

func (t *terminalAuth) prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := t.in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
