// Package extract implements the SDN_ADVANCED.XML parsing pipeline:
// structural parse first, falling back to a line-oriented regex pass when
// the structured walk yields nothing.
package extract

import (
	"bytes"
	"io"
)

// Extract returns every digital-currency address found in the feed, along
// with which pass produced them (useful for logging/diagnostics upstream).
func Extract(r io.Reader) (found []Found, usedFallback bool, err error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, false, err
	}

	found, err = Structural(bytes.NewReader(raw))
	if err != nil {
		return nil, false, err
	}
	if len(found) > 0 {
		return found, false, nil
	}

	found, err = Regex(bytes.NewReader(raw))
	if err != nil {
		return nil, false, err
	}
	return found, true, nil
}
