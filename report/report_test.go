package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lxsc/irp-harness/framework/document"
)

func TestLoadMissingReportIsEmpty(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "results.xml"), "")
	require.NoError(t, err)
	assert.Empty(t, r.Records())
	assert.Equal(t, DefaultRootTag, r.doc.Root().Tag)
}

func TestLoadMalformedReportFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xml")
	require.NoError(t, os.WriteFile(path, []byte("<system-report><assert"), 0o600))
	_, err := Load(path, "")
	assert.Error(t, err)
}

func TestAppendAndRemove(t *testing.T) {
	r := New("system-report")
	r.AppendVerdict("144", VerdictPass)
	r.AppendVerdict("147", VerdictFail)
	r.AppendVerdict("150", VerdictPass)

	assert.Equal(t, 2, r.RemoveRecords([]string{"144", "150", "999"}))
	assert.Equal(t, []Record{{ID: "147", Verdict: VerdictFail}}, r.Records())
}

func TestAppendCopiesRecordVerbatim(t *testing.T) {
	ov, err := document.Parse([]byte(`<r><assert id="230" res="pass" by="hand"><note>ok</note></assert></r>`))
	require.NoError(t, err)
	src := ov.Root().SelectElement("assert")

	r := New("")
	r.Append(src)
	assert.Same(t, ov.Root(), src.Parent())

	e := r.Element("230")
	require.NotNil(t, e)
	assert.Equal(t, "hand", e.SelectAttrValue("by", ""))
	assert.Equal(t, "ok", e.SelectElement("note").Text())

	rec, ok := r.Lookup("230")
	require.True(t, ok)
	assert.Equal(t, VerdictPass, rec.Verdict)
}

func TestSaveAndReloadKeepsOtherRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xml")
	r := New("system-report")
	r.AppendVerdict("144", VerdictPass)
	r.AppendVerdict("147", VerdictFail)
	require.NoError(t, r.Save(path))

	again, err := Load(path, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "system-report", again.doc.Root().Tag)
	again.RemoveRecords([]string{"147"})
	again.AppendVerdict("147", VerdictPass)
	require.NoError(t, again.Save(path))

	final, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, []Record{{ID: "144", Verdict: VerdictPass}, {ID: "147", Verdict: VerdictPass}}, final.Records())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSavedReportIsIndented(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xml")
	r := New("system-report")
	r.AppendVerdict("144", VerdictPass)
	require.NoError(t, r.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?>
<system-report>
  <assert id="144" res="pass"/>
</system-report>
`, string(data))
}
