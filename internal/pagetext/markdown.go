package pagetext

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownProducer flattens markdown to prose blocks via goldmark and
// estimates page breaks by character offset. Pipe tables are not parsed as
// such by the core goldmark parser, so their raw lines pass through verbatim
// and survive as table rows downstream.
type MarkdownProducer struct {
	CharsPerPage int
}

func (p *MarkdownProducer) Produce(r io.Reader, filename string) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	src := []byte(sanitize(raw))

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if title := string(node.Text(src)); title != "" {
				blocks = append(blocks, title)
			}
		default:
			if t := blockText(n, src); t != "" {
				blocks = append(blocks, t)
			}
		}
	}

	return paginate(blocks, p.CharsPerPage), nil
}

// blockText renders a block node from its raw source lines, recursing into
// containers (lists, quotes) that carry no lines of their own.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if lines := n.Lines(); lines.Len() > 0 {
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimRight(buf.String(), "\n")
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := blockText(c, src); t != "" {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(t)
		}
	}
	return buf.String()
}
