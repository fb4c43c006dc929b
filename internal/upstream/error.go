// Package upstream carries error details from Microsoft Graph, SharePoint
// and OneSignal responses so handlers can mirror them to the caller.
package upstream

import (
	"fmt"
	"io"
	"net/http"
)

const maxErrorBody = 64 << 10

// Error is a non-2xx response from an upstream service. StatusCode and Body
// are mirrored to the client when present.
type Error struct {
	Service     string
	StatusCode  int
	ContentType string
	Body        []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: upstream status %d: %s", e.Service, e.StatusCode, e.Body)
}

// FromResponse drains and closes resp.Body (capped at 64 KiB) and returns an
// *Error describing the failure.
func FromResponse(service string, resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
	return &Error{
		Service:     service,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
}
