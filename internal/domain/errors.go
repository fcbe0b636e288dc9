package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTabUnavailable means a tab disappeared while it was being read
	ErrTabUnavailable = errors.New("tab unavailable")
	// ErrBrowserLink means the browser could not be queried at all
	ErrBrowserLink = errors.New("browser link failure")
	// ErrNotFound means the catalog has no entry for a media id
	ErrNotFound = errors.New("not found")
	// ErrTransient covers network, quota and auth failures that may go away
	ErrTransient = errors.New("transient failure")
	// ErrConnection means a session to the browser or presence service is down
	ErrConnection = errors.New("connection failure")
	// ErrPublish means a presence update was not accepted
	ErrPublish = errors.New("publish failure")
	// ErrConfiguration marks invalid or missing settings
	ErrConfiguration = errors.New("configuration error")
)

// Wrap tags err with one of the sentinel markers above and adds component and
// operation context. A nil marker defaults to ErrTransient.
func Wrap(marker error, component, operation string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	detail := buildDetail(component, operation)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation string) string {
	parts := make([]string, 0, 2)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if len(parts) == 0 {
		return "unknown component"
	}
	return strings.Join(parts, ": ")
}
