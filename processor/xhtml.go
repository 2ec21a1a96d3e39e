package processor

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/epubtl"
	"golang.org/x/net/html"
)

// XHTMLProcessor extracts the text of block elements from XHTML content
// and writes translations back into them.
type XHTMLProcessor struct {
	tags map[string]bool
}

// NewXHTMLProcessor creates a new XHTML processor for the default tags.
func NewXHTMLProcessor() *XHTMLProcessor {
	return NewXHTMLProcessorWithTags(epubtl.DefaultTags)
}

// NewXHTMLProcessorWithTags creates a new XHTML processor that translates
// the given elements.
func NewXHTMLProcessorWithTags(tags []string) *XHTMLProcessor {
	allowed := make(map[string]bool)
	for _, tag := range tags {
		allowed[strings.ToLower(strings.TrimSpace(tag))] = true
	}
	return &XHTMLProcessor{tags: allowed}
}

// match is an element found by the traversal.
type match struct {
	node *html.Node
	path string
	text string
}

// parsedXHTML holds a parsed item and its translatable elements.
type parsedXHTML struct {
	decl    []byte
	doc     *goquery.Document
	matches []match
}

func (p *XHTMLProcessor) parse(container string, content []byte) (*parsedXHTML, error) {
	decl, body := splitDeclaration(content)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(expandSelfClosing(body)))
	if err != nil {
		return nil, &epubtl.ProcessorError{
			Message:   "failed to parse XHTML",
			Cause:     err,
			Container: container,
		}
	}

	parsed := &parsedXHTML{decl: decl, doc: doc}

	// Walk the DOM tree in document order
	var walk func(n *html.Node, path string)
	walk = func(n *html.Node, path string) {
		if n.Type == html.ElementNode {
			// Skip elements with data-no-translate attribute
			for _, attr := range n.Attr {
				if attr.Key == "data-no-translate" {
					return
				}
			}

			if p.tags[strings.ToLower(n.Data)] {
				text := normalize(doc.FindNodes(n).Text())
				if text != "" {
					parsed.matches = append(parsed.matches, match{node: n, path: path, text: text})
				}
			}
		}

		i := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, path+"/"+strconv.Itoa(i))
			i++
		}
	}

	for _, n := range doc.Nodes {
		walk(n, "")
	}

	return parsed, nil
}

// Extract parses content and returns its translatable elements in document order.
func (p *XHTMLProcessor) Extract(container string, content []byte) ([]ContentRecord, error) {
	parsed, err := p.parse(container, content)
	if err != nil {
		return nil, err
	}

	records := make([]ContentRecord, len(parsed.matches))
	for i, m := range parsed.matches {
		records[i] = ContentRecord{
			Text:      m.text,
			Container: container,
			Tag:       m.node.Data,
			Path:      m.path,
			Node:      m.node,
		}
	}
	return records, nil
}

// Rebuild parses content again, pairs the elements it finds with records
// by position and applies translations according to opts.Mode.
func (p *XHTMLProcessor) Rebuild(container string, content []byte, records []ContentRecord, translations map[string]string, opts RebuildOptions) ([]byte, error) {
	parsed, err := p.parse(container, content)
	if err != nil {
		return content, err
	}

	if err := verify(container, parsed.matches, records); err != nil {
		return content, err
	}

	dir := epubtl.GetDirection(opts.TargetLang)

	for i, m := range parsed.matches {
		translated, ok := translations[records[i].Text]
		if !ok {
			continue
		}

		switch opts.Mode {
		case epubtl.ModeReplace:
			// A replaced ancestor detaches its descendants, FindNodes skips them.
			parsed.doc.FindNodes(m.node).SetText(translated)
		default:
			clone := &html.Node{
				Type:      html.ElementNode,
				Data:      m.node.Data,
				DataAtom:  m.node.DataAtom,
				Namespace: m.node.Namespace,
				Attr:      append([]html.Attribute(nil), m.node.Attr...),
			}
			clone.AppendChild(&html.Node{Type: html.TextNode, Data: translated})
			if epubtl.IsRTL(opts.TargetLang) {
				setAttr(clone, "dir", "rtl")
			}
			if m.node.Parent != nil {
				m.node.Parent.InsertBefore(clone, m.node.NextSibling)
			}
		}
	}

	if opts.Mode == epubtl.ModeReplace && opts.TargetLang != "" {
		root := parsed.doc.Find("html")
		root.SetAttr("lang", opts.TargetLang)
		root.SetAttr("xml:lang", opts.TargetLang)
		root.SetAttr("dir", dir)
	}

	out, err := parsed.doc.Html()
	if err != nil {
		return content, &epubtl.ProcessorError{
			Message:   "failed to serialize XHTML",
			Cause:     err,
			Container: container,
		}
	}

	return append(parsed.decl, out...), nil
}

// verify checks that the rebuild traversal found the same elements as the
// extraction that produced records.
func verify(container string, matches []match, records []ContentRecord) error {
	if len(matches) != len(records) {
		return &epubtl.StructuralMismatchError{
			Container: container,
			Expected:  len(records),
			Got:       len(matches),
			Index:     -1,
		}
	}

	for i, m := range matches {
		r := records[i]
		var reason string
		switch {
		case !strings.EqualFold(m.node.Data, r.Tag):
			reason = fmt.Sprintf("tag <%s> where <%s> was extracted", m.node.Data, r.Tag)
		case r.Path != "" && m.path != r.Path:
			reason = fmt.Sprintf("path %s where %s was extracted", m.path, r.Path)
		case m.text != r.Text:
			reason = "text differs from extraction"
		default:
			continue
		}
		return &epubtl.StructuralMismatchError{
			Container: container,
			Expected:  len(records),
			Got:       len(matches),
			Index:     i,
			Reason:    reason,
		}
	}
	return nil
}

// splitDeclaration separates a leading XML declaration, and the line break
// after it, from the markup.
func splitDeclaration(content []byte) ([]byte, []byte) {
	body := bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return nil, content
	}

	end := bytes.Index(trimmed, []byte("?>"))
	if end < 0 {
		return nil, content
	}
	end += len("?>")
	for end < len(trimmed) && (trimmed[end] == '\r' || trimmed[end] == '\n') {
		end++
	}

	decl := make([]byte, end)
	copy(decl, trimmed[:end])
	return decl, trimmed[end:]
}

// voidElements never have content, so "<br/>" and "<br>" mean the same.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// expandSelfClosing rewrites XML empty-element tags such as
// <span id="p2"/> to <span id="p2"></span>. An HTML parser ignores the
// trailing slash on non-void elements and would nest the following
// content inside them. Everything else is copied byte for byte.
func expandSelfClosing(body []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(body))

	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		tt := z.Next()
		raw := z.Raw()
		if tt == html.ErrorToken {
			out.Write(raw)
			return out.Bytes()
		}
		if tt != html.SelfClosingTagToken {
			out.Write(raw)
			continue
		}
		// <script/> and <title/> have no text to read as raw.
		z.NextIsNotRawText()

		// TagName lowercases the buffer in place, so keep the original first.
		tag := append([]byte(nil), raw...)
		name, _ := z.TagName()
		if voidElements[string(name)] {
			out.Write(tag)
			continue
		}

		tag = bytes.TrimSuffix(tag, []byte(">"))
		tag = bytes.TrimSuffix(tag, []byte("/"))
		out.Write(tag)
		out.WriteString("></")
		out.Write(tag[1 : 1+len(name)])
		out.WriteString(">")
	}
}

// normalize collapses whitespace runs to a single space and trims the result.
func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Verify XHTMLProcessor implements DocumentMapper
var _ DocumentMapper = (*XHTMLProcessor)(nil)
