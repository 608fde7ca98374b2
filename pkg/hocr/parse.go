package hocr

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

// ErrNoPages is returned when the markup contains no 'ocr_page' element.
var ErrNoPages = errors.New("no ocr_page elements found in hOCR data")

// ParseHOCR converts raw hOCR data into a structured HOCR object.
func ParseHOCR(data []byte) (HOCR, error) {
	result := HOCR{Metadata: make(map[string]string)}

	// Convert to UTF-8 if needed
	if enc := declaredCharset(data); enc != "" && enc != "utf-8" && enc != "utf8" {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return result, fmt.Errorf("failed to decode %s: %w", enc, err)
		}
		data = decoded
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return result, err
	}

	extractDocumentMeta(&result, doc)

	var findPages func(*html.Node)
	findPages = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocr_page") {
			result.Pages = append(result.Pages, processPage(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(doc)

	if len(result.Pages) == 0 {
		return result, ErrNoPages
	}
	return result, nil
}

// LooksLikeHOCR reports whether data carries hOCR page markup.
func LooksLikeHOCR(data []byte) bool {
	return bytes.Contains(data, []byte("ocr_page"))
}

// declaredCharset returns the lower-cased charset of a meta declaration, if any.
func declaredCharset(data []byte) string {
	i := bytes.Index(bytes.ToLower(data), []byte("charset="))
	if i < 0 {
		return ""
	}
	rest := data[i+len("charset="):]
	rest = bytes.TrimLeft(rest, `"'`)
	end := bytes.IndexAny(rest, "\"';> \t\r\n/")
	if end < 0 {
		end = len(rest)
	}
	return strings.ToLower(string(rest[:end]))
}

// ParseTitle breaks down an hOCR title attribute into its components
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) > 0 {
			key := items[0]
			// image names may be quoted
			values := make([]string, 0, len(items)-1)
			for _, v := range items[1:] {
				values = append(values, strings.Trim(v, `"`))
			}
			result[key] = values
		}
	}
	return result
}

// ParseBoundingBoxFromTitle extracts a bounding box from a title string
// Returns nil if there is no complete, numeric bbox property
func ParseBoundingBoxFromTitle(title string) *BoundingBox {
	bbox, ok := ParseTitle(title)["bbox"]
	if !ok || len(bbox) < 4 {
		return nil
	}
	var v [4]float64
	for i := range v {
		f, err := strconv.ParseFloat(bbox[i], 64)
		if err != nil {
			return nil
		}
		v[i] = f
	}
	return &BoundingBox{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}
}

// extractDocumentMeta extracts document-level metadata from the head section
func extractDocumentMeta(result *HOCR, doc *html.Node) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html":
				if lang := getAttrVal(n, "lang"); lang != "" {
					result.Language = lang
				} else if lang := getAttrVal(n, "xml:lang"); lang != "" {
					result.Language = lang
				}
			case "title":
				if n.FirstChild != nil {
					result.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				name, content := getAttrVal(n, "name"), getAttrVal(n, "content")
				if strings.HasPrefix(name, "ocr-") && content != "" {
					result.Metadata[name] = content
				}
			case "body":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}

// processPage extracts page information and every line below it
func processPage(n *html.Node) Page {
	page := Page{ID: getAttrVal(n, "id")}

	title := getAttrVal(n, "title")
	if bbox := ParseBoundingBoxFromTitle(title); bbox != nil {
		page.BBox = *bbox
	}
	props := ParseTitle(title)
	if image, ok := props["image"]; ok && len(image) > 0 {
		page.ImageName = strings.Join(image, " ")
	}

	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode {
			if class, ok := lineClass(node); ok {
				page.Lines = append(page.Lines, processLine(node, class))
				return
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c)
	}
	return page
}

// processLine extracts line information and its words
func processLine(n *html.Node, class string) Line {
	line := Line{ID: getAttrVal(n, "id"), Class: class}

	title := getAttrVal(n, "title")
	if bbox := ParseBoundingBoxFromTitle(title); bbox != nil {
		line.BBox = *bbox
		line.HasBBox = true
	}

	var extractWords func(*html.Node)
	extractWords = func(node *html.Node) {
		if node.Type == html.ElementNode && hasClass(node, "ocrx_word") {
			line.Words = append(line.Words, processWord(node))
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			extractWords(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractWords(c)
	}
	return line
}

// processWord extracts a word's text and properties
func processWord(n *html.Node) Word {
	word := Word{ID: getAttrVal(n, "id")}
	title := getAttrVal(n, "title")
	if bbox := ParseBoundingBoxFromTitle(title); bbox != nil {
		word.BBox = *bbox
	}
	word.Text = extractTextContent(n)
	return word
}

// extractTextContent gets all text from a node and its children
func extractTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(extractTextContent(c))
	}
	return strings.TrimSpace(b.String())
}

func lineClass(n *html.Node) (string, bool) {
	for _, c := range strings.Fields(getAttrVal(n, "class")) {
		if slices.Contains(LineClasses, c) {
			return c, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(getAttrVal(n, "class")), class)
}

// Get the value of a specific attribute from a node
func getAttrVal(n *html.Node, attrName string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrName {
			return attr.Val
		}
	}
	return ""
}
