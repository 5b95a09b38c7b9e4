// Package codec implements the external document formats. Each codec
// converts between a node tree and bytes; import validation happens
// afterwards in the domain tree validator.
package codec

import (
	"bytes"
	"encoding/json"

	"mindmap-backend/application/ports"
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
)

// JSONCodec reads and writes the native document format: the node tree
// as nested JSON. Ids are optional on import; missing ones are minted so
// hand-written files work.
type JSONCodec struct{}

// NewJSONCodec creates the JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns "json"
func (c *JSONCodec) Format() string { return "json" }

// jsonNode is the wire shape of a node. It mirrors entities.Node but
// tolerates absent ids and children.
type jsonNode struct {
	ID          string      `json:"id,omitempty"`
	Text        string      `json:"text"`
	Image       string      `json:"image,omitempty"`
	URL         string      `json:"url,omitempty"`
	Width       float64     `json:"width,omitempty"`
	IsCollapsed bool        `json:"isCollapsed,omitempty"`
	Children    []*jsonNode `json:"children,omitempty"`
}

// Encode serializes the tree as indented JSON
func (c *JSONCodec) Encode(root *entities.Node) ([]byte, error) {
	if root == nil {
		return nil, pkgerrors.NewInternalError("cannot encode a nil tree")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(toWire(root)); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to encode tree")
	}
	return buf.Bytes(), nil
}

// Decode parses a JSON tree. Malformed JSON or an invalid id yields an
// import-format error; nothing partial is ever returned.
func (c *JSONCodec) Decode(data []byte) (*entities.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var wire jsonNode
	if err := dec.Decode(&wire); err != nil {
		return nil, pkgerrors.NewImportFormatError("malformed JSON document", err)
	}

	return fromWire(&wire)
}

func toWire(n *entities.Node) *jsonNode {
	wire := &jsonNode{
		ID:          n.ID.String(),
		Text:        n.Text,
		Image:       n.Image,
		URL:         n.URL,
		Width:       n.Width,
		IsCollapsed: n.IsCollapsed,
	}
	for _, child := range n.Children {
		wire.Children = append(wire.Children, toWire(child))
	}
	return wire
}

func fromWire(wire *jsonNode) (*entities.Node, error) {
	if wire == nil {
		return nil, pkgerrors.NewImportFormatError("document has no root node", nil)
	}

	node := &entities.Node{
		Text:        wire.Text,
		Image:       wire.Image,
		URL:         wire.URL,
		Width:       wire.Width,
		IsCollapsed: wire.IsCollapsed,
		Children:    []*entities.Node{},
	}

	if wire.ID == "" {
		node.ID = valueobjects.NewNodeID()
	} else {
		id, err := valueobjects.NewNodeIDFromString(wire.ID)
		if err != nil {
			return nil, pkgerrors.NewImportFormatError("invalid node id", err)
		}
		node.ID = id
	}

	for _, child := range wire.Children {
		parsed, err := fromWire(child)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, parsed)
	}
	return node, nil
}

var _ ports.DocumentCodec = (*JSONCodec)(nil)
