package codec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"mindmap-backend/application/ports"
	"mindmap-backend/domain/core/entities"
	pkgerrors "mindmap-backend/pkg/errors"
)

// MarkdownCodec maps a document to a Markdown outline: the root is the
// top-level heading, every other node is a nested list item. Links
// round-trip through the node URL attribute; collapse state, images and
// widths do not survive this format.
type MarkdownCodec struct {
	md goldmark.Markdown
}

// NewMarkdownCodec creates the Markdown codec
func NewMarkdownCodec() *MarkdownCodec {
	return &MarkdownCodec{md: goldmark.New()}
}

// Format returns "markdown"
func (c *MarkdownCodec) Format() string { return "markdown" }

// Encode renders the tree as a heading followed by a nested bullet list
func (c *MarkdownCodec) Encode(root *entities.Node) ([]byte, error) {
	if root == nil {
		return nil, pkgerrors.NewInternalError("cannot encode a nil tree")
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", label(root))
	if len(root.Children) > 0 {
		buf.WriteByte('\n')
	}
	for _, child := range root.Children {
		writeItem(&buf, child, 0)
	}
	return buf.Bytes(), nil
}

func writeItem(buf *bytes.Buffer, n *entities.Node, depth int) {
	fmt.Fprintf(buf, "%s- %s\n", strings.Repeat("  ", depth), label(n))
	for _, child := range n.Children {
		writeItem(buf, child, depth+1)
	}
}

func label(n *entities.Node) string {
	t := strings.ReplaceAll(n.Text, "\n", " ")
	if n.URL != "" {
		return fmt.Sprintf("[%s](%s)", t, n.URL)
	}
	return t
}

// Decode parses a Markdown outline back into a tree. The first level-1
// heading becomes the root; bullet nesting becomes parent-child
// structure. Input with no heading and no list is rejected.
func (c *MarkdownCodec) Decode(data []byte) (*entities.Node, error) {
	doc := c.md.Parser().Parse(text.NewReader(data))

	root := entities.NewNode("")
	sawContent := false

	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		switch typed := child.(type) {
		case *ast.Heading:
			if typed.Level == 1 && !sawContent {
				root.Text, root.URL = inlineText(typed, data)
				sawContent = true
			} else {
				// Later or deeper headings become children of the root.
				node := entities.NewNode("")
				node.Text, node.URL = inlineText(typed, data)
				root.Children = append(root.Children, node)
				sawContent = true
			}
		case *ast.List:
			children, err := parseList(typed, data)
			if err != nil {
				return nil, err
			}
			root.Children = append(root.Children, children...)
			if len(children) > 0 {
				sawContent = true
			}
		}
	}

	if !sawContent {
		return nil, pkgerrors.NewImportFormatError("markdown contains no heading or list to import", nil)
	}
	return root, nil
}

func parseList(list *ast.List, source []byte) ([]*entities.Node, error) {
	var nodes []*entities.Node
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		listItem, ok := item.(*ast.ListItem)
		if !ok {
			continue
		}

		node := entities.NewNode("")
		for part := listItem.FirstChild(); part != nil; part = part.NextSibling() {
			switch typed := part.(type) {
			case *ast.List:
				children, err := parseList(typed, source)
				if err != nil {
					return nil, err
				}
				node.Children = append(node.Children, children...)
			default:
				if node.Text == "" {
					node.Text, node.URL = inlineText(typed, source)
				}
			}
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// inlineText flattens a block's inline content to plain text, lifting a
// single wrapping link into the URL attribute.
func inlineText(block ast.Node, source []byte) (string, string) {
	var sb strings.Builder
	url := ""

	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			switch typed := child.(type) {
			case *ast.Text:
				sb.Write(typed.Segment.Value(source))
			case *ast.Link:
				if url == "" {
					url = string(typed.Destination)
				}
				walk(typed)
			case *ast.AutoLink:
				if url == "" {
					url = string(typed.URL(source))
				}
				sb.Write(typed.Label(source))
			default:
				walk(typed)
			}
		}
	}
	walk(block)

	return strings.TrimSpace(sb.String()), url
}

var _ ports.DocumentCodec = (*MarkdownCodec)(nil)
