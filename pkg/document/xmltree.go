package document

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// node is a generic XML element used to walk ALTO and PAGE trees without
// binding to a particular schema version.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []node     `xml:",any"`
	Text     string     `xml:",chardata"`
}

func parseTree(data []byte) (*node, error) {
	var root node
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

func (n *node) name() string { return n.XMLName.Local }

func (n *node) attr(local string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) attrOr(local, def string) string {
	if v, ok := n.attr(local); ok {
		return v
	}
	return def
}

// child returns the first direct child element with the given local name.
func (n *node) child(local string) *node {
	for i := range n.Children {
		if n.Children[i].name() == local {
			return &n.Children[i]
		}
	}
	return nil
}

// children returns the direct child elements with the given local name.
func (n *node) children(local string) []*node {
	var out []*node
	for i := range n.Children {
		if n.Children[i].name() == local {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// number parses an integer or decimal attribute, truncated towards zero.
func (n *node) number(local string) (int, bool) {
	v, ok := n.attr(local)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}
