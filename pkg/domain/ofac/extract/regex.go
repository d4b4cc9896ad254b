package extract

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

var (
	evmAddressRe    = regexp.MustCompile(`0x[0-9a-fA-F]{40}`)
	tronAddressRe   = regexp.MustCompile(`T[1-9A-HJ-NP-Za-km-z]{33}`)
	legacyBTCRe     = regexp.MustCompile(`[13][1-9A-HJ-NP-Za-km-z]{25,34}`)
	bech32Re        = regexp.MustCompile(`bc1[0-9a-zA-Z]{25,90}`)
	digitalMarkerRe = regexp.MustCompile(`Digital Currency Address\s*[-–]\s*([A-Za-z0-9]+)`)

	addressPatterns = []*regexp.Regexp{evmAddressRe, tronAddressRe, legacyBTCRe, bech32Re}
)

// Regex runs the fallback line-oriented pass used when structural parsing
// yields zero addresses: each recognized address is paired with the most
// recent "Digital Currency Address - <TICKER>" marker seen on a prior line.
func Regex(r io.Reader) ([]Found, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var found []Found
	currentTicker := ""
	currentName := ""

	for scanner.Scan() {
		line := scanner.Text()

		if m := digitalMarkerRe.FindStringSubmatch(line); m != nil {
			currentTicker = NormalizeTicker(m[1])
		}
		if name := extractNameHint(line); name != "" {
			currentName = name
		}

		if currentTicker == "" {
			continue
		}

		for _, pattern := range addressPatterns {
			for _, addr := range pattern.FindAllString(line, -1) {
				found = append(found, Found{
					Address: addr,
					Ticker:  currentTicker,
					SDNName: currentName,
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return found, nil
}

var nameHintRe = regexp.MustCompile(`<(?:lastName|wholeName)>([^<]+)</(?:lastName|wholeName)>`)

func extractNameHint(line string) string {
	if m := nameHintRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
