package hocr

// HOCR represents the entire hOCR document structure
type HOCR struct {
	Title    string            // Document title
	Language string            // Document language
	Metadata map[string]string // ocr-system, ocr-capabilities and friends
	Pages    []Page            // Pages in the document
}

// Page is one page of recognized text
// Corresponds to hOCR element with class: 'ocr_page'
type Page struct {
	ID        string      // Unique identifier
	ImageName string      // Source image filename
	BBox      BoundingBox // Page coordinates
	Lines     []Line      // All lines of the page in document order
}

// Line represents a line of text
// Corresponds to hOCR elements with class 'ocr_line', 'ocr_textfloat',
// 'ocr_header' or 'ocr_caption'
type Line struct {
	ID      string      // Unique identifier
	Class   string      // Which line class matched
	BBox    BoundingBox // Line coordinates
	HasBBox bool        // Whether the title carried a usable bbox
	Words   []Word      // Words in this line
}

// Text joins the non-empty word texts with single spaces.
func (l Line) Text() string {
	var b []byte
	for _, w := range l.Words {
		if w.Text == "" {
			continue
		}
		if len(b) > 0 {
			b = append(b, ' ')
		}
		b = append(b, w.Text...)
	}
	return string(b)
}

// Word is a recognized word with bounding box
// Corresponds to hOCR element with class: 'ocrx_word'
type Word struct {
	ID   string      // Unique identifier
	Text string      // The actual text content
	BBox BoundingBox // Word coordinates
}

// BoundingBox represents a rectangle in the document
// Used to store hOCR 'bbox' property values
type BoundingBox struct {
	X1 float64 // Left coordinate
	Y1 float64 // Top coordinate
	X2 float64 // Right coordinate
	Y2 float64 // Bottom coordinate
}

// LineClasses are the hOCR classes treated as text lines.
var LineClasses = []string{"ocr_line", "ocr_textfloat", "ocr_header", "ocr_caption"}
