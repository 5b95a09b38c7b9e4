package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/core/entities"
	pkgerrors "mindmap-backend/pkg/errors"
)

func fixtureTree() *entities.Node {
	grandchild := entities.NewNode("grandchild")
	linked := entities.NewNode("docs")
	linked.URL = "https://example.com/docs"
	child := entities.NewNode("child")
	child.Children = []*entities.Node{grandchild, linked}
	root := entities.NewNode("Central Topic")
	root.Children = []*entities.Node{child, entities.NewNode("sibling")}
	return root
}

func TestJSONRoundTripPreservesTree(t *testing.T) {
	c := NewJSONCodec()
	root := fixtureTree()

	data, err := c.Encode(root)
	require.NoError(t, err)

	decoded, err := c.Decode(data)
	require.NoError(t, err)
	assert.True(t, root.Equal(decoded), "identities and structure survive the round trip")
}

func TestJSONDecodeMintsMissingIDs(t *testing.T) {
	c := NewJSONCodec()

	decoded, err := c.Decode([]byte(`{
		"text": "hand written",
		"children": [{"text": "leaf"}]
	}`))
	require.NoError(t, err)

	assert.False(t, decoded.ID.IsZero())
	require.Len(t, decoded.Children, 1)
	assert.False(t, decoded.Children[0].ID.IsZero())
}

func TestJSONDecodeRejectsMalformedInput(t *testing.T) {
	c := NewJSONCodec()

	for _, input := range []string{"", "not json", `{"text": "x", "children": [{]}`} {
		_, err := c.Decode([]byte(input))
		assert.True(t, pkgerrors.IsImportFormat(err), "input %q", input)
	}
}

func TestMarkdownEncode(t *testing.T) {
	c := NewMarkdownCodec()

	data, err := c.Encode(fixtureTree())
	require.NoError(t, err)

	expected := "# Central Topic\n\n- child\n  - grandchild\n  - [docs](https://example.com/docs)\n- sibling\n"
	assert.Equal(t, expected, string(data))
}

func TestMarkdownRoundTripPreservesOutline(t *testing.T) {
	c := NewMarkdownCodec()
	root := fixtureTree()

	data, err := c.Encode(root)
	require.NoError(t, err)
	decoded, err := c.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, "Central Topic", decoded.Text)
	require.Len(t, decoded.Children, 2)
	assert.Equal(t, "child", decoded.Children[0].Text)
	require.Len(t, decoded.Children[0].Children, 2)
	assert.Equal(t, "grandchild", decoded.Children[0].Children[0].Text)
	assert.Equal(t, "docs", decoded.Children[0].Children[1].Text)
	assert.Equal(t, "https://example.com/docs", decoded.Children[0].Children[1].URL)

	// Fresh identities are minted for every imported node.
	assert.False(t, decoded.ID.IsZero())
}

func TestMarkdownDecodeWithoutHeadingUsesListOnly(t *testing.T) {
	c := NewMarkdownCodec()

	decoded, err := c.Decode([]byte("- alpha\n- beta\n"))
	require.NoError(t, err)

	require.Len(t, decoded.Children, 2)
	assert.Equal(t, "alpha", decoded.Children[0].Text)
}

func TestMarkdownDecodeRejectsEmptyOutline(t *testing.T) {
	c := NewMarkdownCodec()

	_, err := c.Decode([]byte("just a paragraph of prose\n"))
	assert.True(t, pkgerrors.IsImportFormat(err))
}

func TestRegistryLookup(t *testing.T) {
	r := NewDefaultRegistry()

	jsonCodec, err := r.Lookup("json")
	require.NoError(t, err)
	assert.Equal(t, "json", jsonCodec.Format())

	_, err = r.Lookup("opml")
	assert.True(t, pkgerrors.IsImportFormat(err))

	assert.Equal(t, []string{"json", "markdown"}, r.Formats())
}
