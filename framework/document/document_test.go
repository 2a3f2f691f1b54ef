package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTemplate = `<?xml version="1.0"?>
<scxml xmlns="http://www.w3.org/2005/07/scxml" xmlns:conf="http://www.w3.org/2005/scxml-conformance" initial="s0" version="1.0">
  <state id="s0">
    <transition conf:targetpass=""/>
  </state>
  <conf:pass/>
</scxml>`

func TestParseResolvesNamespaces(t *testing.T) {
	doc, err := Parse([]byte(sampleTemplate))
	require.NoError(t, err)

	root := doc.Root()
	assert.True(t, InNamespace(root, SCXMLNamespace))

	elements := Elements(root)
	require.Len(t, elements, 4)
	assert.Equal(t, "scxml", elements[0].Tag)
	assert.Equal(t, "state", elements[1].Tag)
	assert.Equal(t, "transition", elements[2].Tag)
	assert.Equal(t, "pass", elements[3].Tag)
	assert.True(t, InNamespace(elements[3], ConformanceNamespace))

	attr := elements[2].SelectAttr("conf:targetpass")
	require.NotNil(t, attr)
	assert.True(t, AttrInNamespace(attr, ConformanceNamespace))
}

func TestParseConvertsDeclaredCharset(t *testing.T) {
	data := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><a v="`), 0xE9)
	data = append(data, []byte(`"/>`)...)
	doc, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "é", doc.Root().SelectAttrValue("v", ""))
}

func TestParseRejectsMalformedInput(t *testing.T) {
	_, err := Parse([]byte(`<scxml><state></scxml>`))
	assert.Error(t, err)

	_, err = Parse([]byte(`   `))
	assert.Error(t, err)
}

func TestXMLNSDeclarationIsNotANamespacedAttribute(t *testing.T) {
	doc, err := Parse([]byte(sampleTemplate))
	require.NoError(t, err)
	decl := doc.Root().SelectAttr("xmlns:conf")
	require.NotNil(t, decl)
	assert.False(t, AttrInNamespace(decl, ConformanceNamespace))
}

func TestReplaceKeepsPosition(t *testing.T) {
	doc, err := Parse([]byte(`<a><b/><c/><d/></a>`))
	require.NoError(t, err)
	c := doc.Root().SelectElement("c")
	require.NoError(t, Replace(c, etree.NewElement("x")))

	var tags []string
	for _, e := range doc.Root().ChildElements() {
		tags = append(tags, e.Tag)
	}
	assert.Equal(t, []string{"b", "x", "d"}, tags)
	assert.Nil(t, c.Parent())
}

func TestReplaceDetachedElementFails(t *testing.T) {
	assert.Error(t, Replace(etree.NewElement("orphan"), etree.NewText("x")))
}

func TestStripNamespaces(t *testing.T) {
	doc, err := Parse([]byte(`<s:scxml xmlns:s="urn:a" xmlns:q="urn:b" q:x="1" xml:lang="en"><s:state q:id="s0"/></s:scxml>`))
	require.NoError(t, err)
	StripNamespaces(doc.Root(), SCXMLNamespace)

	root := doc.Root()
	assert.Equal(t, "scxml", root.FullTag())
	assert.Equal(t, "xmlns", root.Attr[0].Key)
	assert.Equal(t, SCXMLNamespace, root.Attr[0].Value)
	assert.Equal(t, "1", root.SelectAttrValue("x", ""))
	assert.Nil(t, root.SelectAttr("xmlns:s"))
	assert.Equal(t, "xml:lang", root.Attr[2].FullKey())
	assert.Equal(t, "state", root.ChildElements()[0].FullTag())
	assert.Equal(t, "s0", root.ChildElements()[0].SelectAttrValue("id", ""))
	assert.True(t, InNamespace(root.ChildElements()[0], SCXMLNamespace))
}

func TestBytesNormalizesDeclarationAndIndent(t *testing.T) {
	doc, err := Parse([]byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<a>\n<b x=\"it's\"/></a>"))
	require.NoError(t, err)
	data, err := Bytes(doc)
	require.NoError(t, err)
	assert.Equal(t, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<a>\n  <b x=\"it's\"/>\n</a>\n", string(data))
}

func TestWriteFileAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xml")
	doc := New("system-report")
	doc.Root().CreateElement("assert").CreateAttr("id", "144")
	require.NoError(t, WriteFile(doc, path))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should have been renamed")

	back, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "144", back.Root().SelectElement("assert").SelectAttrValue("id", ""))
}

func TestString(t *testing.T) {
	doc, err := Parse([]byte(`<a><b c="1"/></a>`))
	require.NoError(t, err)
	assert.Equal(t, `<b c="1"/>`, String(doc.Root().SelectElement("b")))
}
