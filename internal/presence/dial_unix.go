//go:build !windows
// +build !windows

package presence

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// Sandboxed installs put the socket one level below the runtime directory
var socketSubdirs = []string{"", "app/com.discordapp.Discord", "snap.discord"}

// dialDiscord connects to the first discord-ipc-N socket that accepts
func dialDiscord(ctx context.Context) (net.Conn, error) {
	var d net.Dialer
	var lastErr error

	for _, dir := range runtimeDirs() {
		for _, sub := range socketSubdirs {
			for i := 0; i < maxPipeIndex; i++ {
				path := filepath.Join(dir, sub, fmt.Sprintf("discord-ipc-%d", i))
				conn, err := d.DialContext(ctx, "unix", path)
				if err == nil {
					return conn, nil
				}
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				lastErr = err
			}
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no runtime directory to search")
	}
	return nil, fmt.Errorf("no discord ipc socket found: %w", lastErr)
}

func runtimeDirs() []string {
	seen := make(map[string]struct{})
	var dirs []string
	for _, key := range []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"} {
		if v := os.Getenv(key); v != "" {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				dirs = append(dirs, v)
			}
		}
	}
	if _, ok := seen["/tmp"]; !ok {
		dirs = append(dirs, "/tmp")
	}
	return dirs
}
