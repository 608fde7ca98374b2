// Package hocr reads hOCR, the HTML based OCR output format, into a flat
// page/line/word model suitable for cutting line images.
//
// The hierarchy Document → Pages → Lines → Words is kept; areas and
// paragraphs are flattened away because only line geometry and word text are
// needed downstream. Lines are elements with one of the classes listed in
// LineClasses; words are 'ocrx_word' elements inside a line.
//
// Main Functions:
//
// - ParseHOCR: parses hOCR data into the object model
// - ParseTitle: splits an hOCR title attribute into its properties
package hocr
