package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `<?xml version="1.0"?>
<manifest>
  <assert id="355" specnum="3.2" specid="#scxml">
    <test id="355" conformance="mandatory" manual="false">
      <start uri="txml/test355.txml"/>
    </test>
  </assert>
  <assert id="144" specnum="3.12.1" specid="#events">
    <test id="144" conformance="mandatory" manual="false">
      <start uri="txml/test144.txml"/>
    </test>
  </assert>
  <assert id="230" specnum="6.4" specid="#invoke">
    <test id="230" conformance="mandatory" manual="true">
      <start uri="txml/test230.txml"/>
    </test>
  </assert>
  <assert id="216" specnum="6.4" specid="#invoke">
    <test id="216" conformance="mandatory" manual="false">
      <start uri="txml/test216.txml"/>
      <dep uri="txml/test216sub1.txml"/>
    </test>
  </assert>
  <assert id="201" specnum="6.2" specid="#send">
    <test id="201" conformance="optional" manual="false">
      <start uri="txml/test201.txml"/>
    </test>
  </assert>
  <assert id="178" specnum="6.2" specid="#send">
    <test id="178" conformance="mandatory" manual="true">
      <start uri="txml/test178.txml"/>
    </test>
  </assert>
</manifest>`

func TestParseManifest(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)
	require.Len(t, m.Tests, 6)

	assert.Equal(t, Descriptor{
		ID:          "216",
		Conformance: ConformanceMandatory,
		Start:       "txml/test216.txml",
		Deps:        []string{"txml/test216sub1.txml"},
	}, m.Tests[3])
	assert.True(t, m.Tests[2].Manual)
	assert.Equal(t, "manual", m.Tests[2].Mode())
	assert.Equal(t, "auto", m.Tests[0].Mode())
	assert.True(t, m.Has("201"))
	assert.False(t, m.Has("999"))
}

func TestMissingManualFlagMeansManual(t *testing.T) {
	m, err := Parse([]byte(`<manifest><test id="1"><start uri="a.txml"/></test></manifest>`))
	require.NoError(t, err)
	assert.True(t, m.Tests[0].Manual)
	assert.False(t, m.Tests[0].Automatic())
}

func TestParseRejectsIncompleteTests(t *testing.T) {
	_, err := Parse([]byte(`<manifest><test manual="false"><start uri="a.txml"/></test></manifest>`))
	assert.Error(t, err)

	_, err = Parse([]byte(`<manifest><test id="1" manual="false"/></manifest>`))
	assert.Error(t, err)

	_, err = Parse([]byte(`<manifest>`))
	assert.Error(t, err)
}

func TestSelectOrdersAutomaticBeforeManual(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	var ids []string
	for _, d := range m.Select(nil) {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"144", "216", "355", "178", "230"}, ids)
}

func TestSelectNeverPutsAutomaticAfterManual(t *testing.T) {
	m := &Manifest{}
	for _, p := range []struct {
		id     string
		manual bool
	}{{"9", true}, {"10", false}, {"2", false}, {"1", true}, {"10", true}, {"100", false}} {
		m.Tests = append(m.Tests, Descriptor{ID: p.id, Conformance: ConformanceMandatory, Manual: p.manual, Start: p.id})
	}
	selected := m.Select(nil)
	seenManual := false
	for i, d := range selected {
		if d.Manual {
			seenManual = true
		} else {
			assert.False(t, seenManual, "automatic test %s after a manual one", d.ID)
		}
		if i > 0 && selected[i-1].Manual == d.Manual {
			assert.LessOrEqual(t, selected[i-1].ID, d.ID)
		}
	}
}

func TestSelectAppliesFilter(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)
	selected := m.Select(func(id string) bool { return id != "144" })
	require.Len(t, selected, 4)
	assert.Equal(t, "216", selected[0].ID)
}
