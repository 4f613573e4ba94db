package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/gotd/td/telegram/auth/qrlogin"
	"github.com/gotd/td/tgerr"
	qrcode "github.com/skip2/go-qrcode"
)

// qrAuth logs in by printing a login QR for the phone app to scan.
// Accounts with two-step verification still get a password prompt
// afterwards.
func (a *Adapter) qrAuth(ctx context.Context) error {
	_, err := a.client.QR().Auth(ctx, qrlogin.OnLoginToken(a.dispatcher), func(ctx context.Context, token qrlogin.Token) error {
		art, rerr := renderQR(token.URL())
		if rerr != nil {
			return rerr
		}
		fmt.Println("\nScan with Telegram on your phone (Settings > Devices > Link Desktop Device):")
		fmt.Println(art)
		return nil
	})
	if tgerr.Is(err, "SESSION_PASSWORD_NEEDED") {
		pw, perr := newTerminalAuth("").Password(ctx)
		if perr != nil {
			return perr
		}
		_, perr = a.client.Auth().Password(ctx, pw)
		return perr
	}
	return err
}

// renderQR draws the code with half-block characters, two bitmap rows
// per terminal line, so it fits a normal window.
func renderQR(content string) (string, error) {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	bitmap := qr.Bitmap()

	var sb strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		sb.WriteString("  ")
		for x := 0; x < len(bitmap[y]); x++ {
			top := bitmap[y][x]
			bot := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
