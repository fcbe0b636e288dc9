//go:build windows
// +build windows

package presence

import (
	"context"
	"fmt"
	"net"

	"github.com/Microsoft/go-winio"
)

// dialDiscord connects to the first \\.\pipe\discord-ipc-N pipe that accepts
func dialDiscord(ctx context.Context) (net.Conn, error) {
	var lastErr error
	for i := 0; i < maxPipeIndex; i++ {
		conn, err := winio.DialPipeContext(ctx, fmt.Sprintf(`\\.\pipe\discord-ipc-%d`, i))
		if err == nil {
			return conn, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no discord ipc pipe found: %w", lastErr)
}
