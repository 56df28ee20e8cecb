package input

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/nao1215/entityscan/internal/model"
)

// DefaultMaxSize bounds how much input is read.
const DefaultMaxSize = 1 << 20

// Input errors.
var (
	// ErrTooLarge is returned when the input exceeds the size limit.
	ErrTooLarge = errors.New("input: text too large")

	// ErrNotText is returned for binary input.
	ErrNotText = errors.New("input: not a text document")
)

// Input is text ready to be sent for extraction.
type Input struct {
	// Text is the text to analyze.
	Text string

	// Source records where Text came from.
	Source model.Source

	// Title is the document title when the input was HTML.
	Title string
}

// FromArgs joins command line arguments with single spaces.
func FromArgs(args []string) Input {
	return Input{
		Text:   strings.Join(args, " "),
		Source: model.Source{Kind: model.SourceText},
	}
}

// FromFile reads path. HTML files are reduced to their readable text.
func FromFile(path string, maxSize int64) (Input, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Input{}, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	in, err := fromReader(f, maxSize, isHTMLName(path))
	if err != nil {
		return Input{}, err
	}
	in.Source = model.Source{Kind: model.SourceFile, Name: path}
	return in, nil
}

// FromStdin reads r until EOF.
func FromStdin(r io.Reader, maxSize int64) (Input, error) {
	in, err := fromReader(r, maxSize, false)
	if err != nil {
		return Input{}, err
	}
	in.Source = model.Source{Kind: model.SourceStdin}
	return in, nil
}

func fromReader(r io.Reader, maxSize int64, html bool) (Input, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return Input{}, fmt.Errorf("failed to read input: %w", err)
	}
	if int64(len(data)) > maxSize {
		return Input{}, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, maxSize)
	}

	contentType := http.DetectContentType(data)
	if !html && strings.HasPrefix(contentType, "text/html") {
		html = true
	}
	if html {
		text, title, err := ExtractHTML(string(data), "")
		if err != nil {
			return Input{}, err
		}
		return Input{Text: text, Title: title}, nil
	}
	if !strings.HasPrefix(contentType, "text/") {
		return Input{}, fmt.Errorf("%w: detected %s", ErrNotText, contentType)
	}
	return Input{Text: string(data)}, nil
}

// ExtractHTML returns the readable text and title of an HTML document.
// When no article can be found the whole body text is used.
func ExtractHTML(html, pageURL string) (string, string, error) {
	base, err := url.Parse(pageURL)
	if err != nil || pageURL == "" {
		base = &url.URL{Scheme: "file", Path: "/"}
	}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), base)
	if err == nil {
		if text := collapseSpace(article.TextContent); text != "" {
			return text, strings.TrimSpace(article.Title), nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script,style,noscript").Remove()
	title := strings.TrimSpace(doc.Find("title").First().Text())
	return collapseSpace(doc.Find("body").Text()), title, nil
}

// collapseSpace trims each line and drops blank lines.
func collapseSpace(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func isHTMLName(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	default:
		return false
	}
}
