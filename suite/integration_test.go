package suite

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lxsc/irp-harness/framework/harness"
	"github.com/lxsc/irp-harness/report"
	"github.com/lxsc/irp-harness/resource"
	"github.com/lxsc/irp-harness/transform"
)

const integrationManifest = `<manifest>
  <assert id="144"><test id="144" conformance="mandatory" manual="false"><start uri="txml/test144.txml"/></test></assert>
  <assert id="147"><test id="147" conformance="mandatory" manual="false"><start uri="txml/test147.txml"/></test></assert>
</manifest>`

func suiteServer() http.Handler {
	files := map[string]string{
		"manifest.xml":      integrationManifest,
		"txml/test144.txml": passingTemplate,
		"txml/test147.txml": template(`<state id="s0"><transition conf:false="" conf:targetfail=""/></state>`),
	}
	router := mux.NewRouter()
	router.HandleFunc("/irp/{path:.*}", func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[mux.Vars(r)["path"]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	})
	return router
}

// The interpreter stand-in fails any document that can reach the fail state.
const grepInterpreter = `! grep -q 'target="fail"' "$1"`

func TestSuiteAgainstServedResources(t *testing.T) {
	httphelpers.WithServer(suiteServer(), func(server *httptest.Server) {
		dir := t.TempDir()
		resolver, err := resource.NewCachingResolver(server.URL+"/irp/", filepath.Join(dir, "cache"))
		require.NoError(t, err)
		engine, err := transform.New()
		require.NoError(t, err)

		m, err := LoadManifest(context.Background(), resolver, "manifest.xml")
		require.NoError(t, err)

		work := filepath.Join(dir, "work")
		require.NoError(t, os.Mkdir(work, 0o755))
		runner := &Runner{
			Resolver:    resolver,
			Engine:      engine,
			Interpreter: &harness.ProcessInterpreter{Command: []string{"sh", "-c", grepInterpreter, "sh"}},
			Editor:      harness.ProcessEditor{},
			Report:      report.New(""),
			ReportPath:  filepath.Join(dir, "results.xml"),
			WorkDir:     work,
		}
		results, err := runner.Run(context.Background(), m)
		require.NoError(t, err)

		assert.False(t, results.OK())
		saved, err := report.Load(runner.ReportPath, "")
		require.NoError(t, err)
		assert.Equal(t, []report.Record{
			{ID: "144", Verdict: report.VerdictPass},
			{ID: "147", Verdict: report.VerdictFail},
		}, saved.Records())

		_, err = os.Stat(filepath.Join(dir, "cache", "txml", "test147.txml"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(work, "test147.scxml"))
		assert.NoError(t, err)
	})
}
