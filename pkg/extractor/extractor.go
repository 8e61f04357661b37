package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"genai-chatbot-be/internal/constant"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// DefaultMaxChars caps extracted text when no limit is configured.
const DefaultMaxChars = 100_000

var ErrUnsupportedContent = errors.New("unsupported file content")

// ExtractionError reports why a file could not be turned into text.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return e.Err.Error()
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

type Extractor struct {
	MaxChars int
}

func NewExtractor(maxChars int) *Extractor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Extractor{MaxChars: maxChars}
}

// Extract never fails upward: the returned text is always usable as document
// context. On failure it is the placeholder, and err (an *ExtractionError)
// carries the cause for logging.
func (e *Extractor) Extract(path string) (string, error) {
	text, err := e.extractText(path)
	if err != nil {
		return Placeholder(err), err
	}
	return text, nil
}

// Placeholder is the document text used in place of a failed extraction.
func Placeholder(err error) string {
	return constant.ExtractionFailedPrefix + err.Error()
}

// extractText returns the plain text of the file at path, truncated to MaxChars.
func (e *Extractor) extractText(path string) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		text, err = extractHTML(path)
	case ".pdf":
		text, err = extractPDF(path, e.MaxChars)
	case ".docx":
		text, err = extractDOCX(path, e.MaxChars)
	default:
		text, err = extractPlain(path)
	}
	if err != nil {
		return "", &ExtractionError{Path: path, Err: err}
	}

	return truncate(strings.TrimSpace(text), e.MaxChars), nil
}

func extractPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContent, filepath.Ext(path))
	}
	return string(data), nil
}

func extractHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var sb strings.Builder
	collectHTMLText(doc, &sb)
	return strings.Join(strings.Fields(sb.String()), " "), nil
}

// collectHTMLText walks the tree, skipping page chrome and non-visible elements.
func collectHTMLText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "nav", "footer", "header", "aside":
			return
		}
	}

	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteString(" ")
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectHTMLText(c, sb)
	}
}

// maxBytesPerRune bounds how many decoded bytes are read per wanted rune.
const maxBytesPerRune = utf8.UTFMax

// extractPDF reads at most maxChars runes worth of text. The pdf package
// panics on some malformed files, so panics are turned into errors.
func extractPDF(path string, maxChars int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(io.LimitReader(plain, int64(maxChars)*maxBytesPerRune)); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return buf.String(), nil
}

// maxDocumentXMLBytes bounds how much decompressed markup is parsed.
const maxDocumentXMLBytes = 256 << 20

func extractDOCX(path string, maxChars int) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if zf.Name != "word/document.xml" {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return documentXMLText(rc, maxChars)
	}
	return "", errors.New("DOCX has no word/document.xml")
}

// documentXMLText keeps the contents of w:t runs, one line per paragraph.
// Decoding stops once maxChars runes are collected or the markup byte
// budget is spent; in the latter case the text read so far is kept.
func documentXMLText(r io.Reader, maxChars int) (string, error) {
	limited := &io.LimitedReader{R: r, N: maxDocumentXMLBytes}
	dec := xml.NewDecoder(limited)

	var (
		sb     strings.Builder
		runes  int
		inText bool
	)
	write := func(s string) {
		sb.WriteString(s)
		runes += utf8.RuneCountInString(s)
	}

	for maxChars <= 0 || runes < maxChars {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if limited.N <= 0 {
				break
			}
			return "", fmt.Errorf("failed to parse DOCX body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				write("\t")
			case "br":
				write("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				write("\n")
			}
		case xml.CharData:
			if inText {
				write(string(t))
			}
		}
	}
	return sb.String(), nil
}

func truncate(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxChars])
}
