package extract

import (
	"encoding/xml"
	"io"
	"strings"
)

// Found is one digital-currency address pulled from the feed, paired with
// the SDN entry it was found on.
type Found struct {
	Address string
	Ticker  string
	SDNName string
	SDNID   string
}

// node is a generic XML tree: the SDN_ADVANCED feed's exact schema varies
// across published revisions, so structural parsing walks a generic tree
// rather than binding to one fixed set of Go structs.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []node     `xml:",any"`
}

func (n *node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) childText(localName string) (string, bool) {
	for _, c := range n.Children {
		if strings.EqualFold(c.XMLName.Local, localName) {
			return strings.TrimSpace(c.Content), true
		}
	}
	return "", false
}

func (n *node) childrenNamed(localName string) []node {
	var out []node
	for _, c := range n.Children {
		if strings.EqualFold(c.XMLName.Local, localName) {
			out = append(out, c)
		}
	}
	return out
}

// findEntries walks the tree up to maxDepth looking for nodes literally
// named sdnEntry, falling back to any node whose tag name contains "entry"
// or "sdn" when the feed's top-level location differs from the expected shape.
func findEntries(root *node, maxDepth int) []node {
	var entries []node
	var walk func(n *node, depth int)
	walk = func(n *node, depth int) {
		if depth > maxDepth {
			return
		}
		lower := strings.ToLower(n.XMLName.Local)
		if lower == "sdnentry" {
			entries = append(entries, *n)
			return // entries are not nested within entries
		}
		if depth > 0 && (strings.Contains(lower, "entry") || strings.Contains(lower, "sdn")) && len(n.Children) > 0 {
			// candidate container or loosely-named entry node; recurse but
			// also consider it an entry if it carries a uid attribute.
			if _, ok := n.attr("uid"); ok {
				entries = append(entries, *n)
				return
			}
		}
		for i := range n.Children {
			walk(&n.Children[i], depth+1)
		}
	}
	walk(root, 0)
	return entries
}

// sdnName resolves the entry's display name per the fallback chain:
// lastName, else wholeName, else first+last concatenation, else name.
func sdnName(n *node) string {
	if v, ok := n.childText("lastName"); ok && v != "" {
		return v
	}
	if v, ok := n.childText("wholeName"); ok && v != "" {
		return v
	}
	first, _ := n.childText("firstName")
	last, _ := n.childText("lastName")
	if first != "" || last != "" {
		return strings.TrimSpace(first + " " + last)
	}
	if v, ok := n.childText("name"); ok {
		return v
	}
	return ""
}

func sdnID(n *node) string {
	if v, ok := n.attr("uid"); ok && v != "" {
		return v
	}
	if v, ok := n.childText("uid"); ok {
		return v
	}
	return ""
}

// digitalCurrencyMarker matches "Digital Currency Address - TICKER" using
// either a hyphen or an en-dash separator.
func digitalCurrencyMarker(typeValue string) (ticker string, ok bool) {
	typeValue = strings.TrimSpace(typeValue)
	for _, sep := range []string{" - ", " – "} {
		if idx := strings.Index(typeValue, "Digital Currency Address"+sep); idx == 0 {
			return strings.TrimSpace(typeValue[len("Digital Currency Address"+sep):]), true
		}
	}
	const prefix = "Digital Currency Address"
	if strings.HasPrefix(typeValue, prefix) {
		rest := strings.TrimPrefix(typeValue, prefix)
		rest = strings.TrimLeft(rest, " -–")
		if rest != "" {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// extractAddressesFromEntry pulls digital-currency addresses from an
// entry's idList/id rows and its features rows.
func extractAddressesFromEntry(n *node) []Found {
	name := sdnName(n)
	id := sdnID(n)
	var found []Found

	for _, idList := range n.childrenNamed("idList") {
		for _, idNode := range idList.childrenNamed("id") {
			typeValue, _ := idNode.childText("idType")
			addrValue, hasAddr := idNode.childText("idNumber")
			ticker, ok := digitalCurrencyMarker(typeValue)
			if ok && hasAddr && addrValue != "" {
				found = append(found, Found{Address: addrValue, Ticker: NormalizeTicker(ticker), SDNName: name, SDNID: id})
			}
		}
	}

	for _, features := range n.childrenNamed("features") {
		for _, feature := range features.childrenNamed("feature") {
			typeValue, _ := feature.attr("type")
			if typeValue == "" {
				typeValue, _ = feature.childText("type")
			}
			addrValue, hasAddr := feature.childText("value")
			ticker, ok := digitalCurrencyMarker(typeValue)
			if ok && hasAddr && addrValue != "" {
				found = append(found, Found{Address: addrValue, Ticker: NormalizeTicker(ticker), SDNName: name, SDNID: id})
			}
		}
	}

	return found
}

// Structural attempts the structured parse of the SDN_ADVANCED feed.
// Returns an empty slice (not an error) when no entries are recognized, so
// the caller can fall back to the regex pass.
func Structural(r io.Reader) ([]Found, error) {
	var root node
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, err
	}

	entries := findEntries(&root, 5)
	var all []Found
	for i := range entries {
		all = append(all, extractAddressesFromEntry(&entries[i])...)
	}
	return all, nil
}
