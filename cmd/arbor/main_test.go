package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const patrolXML = `<root>
    <BehaviorTree>
        <Sequence>
            <Action ID="ActionA" speed="3"/>
            <Action ID="ActionB"/>
        </Sequence>
    </BehaviorTree>
    <TreeNodesModel>
        <Action ID="ActionA"><Parameter label="speed" type="Int"/></Action>
        <Action ID="ActionB"/>
    </TreeNodesModel>
</root>`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "settings.yaml")))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patrol.xml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "arbor version")
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", writeDoc(t, patrolXML))
	require.NoError(t, err)
	assert.Contains(t, out, "4 nodes")

	_, err = run(t, "validate", writeDoc(t, "<root><BehaviorTree><Nope/></BehaviorTree></root>"))
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	src := writeDoc(t, patrolXML)

	out, err := run(t, "export", src, "--format", "mermaid")
	require.NoError(t, err)
	assert.Contains(t, out, "graph LR")

	out, err = run(t, "export", src, "--format", "xml")
	require.NoError(t, err)
	assert.Contains(t, out, `<Action ID="ActionA" speed="3">`)

	_, err = run(t, "export", src, "--format", "png")
	assert.Error(t, err)
}

func TestDocs_ImportAndList(t *testing.T) {
	dir := t.TempDir()
	src := writeDoc(t, patrolXML)

	out, err := run(t, "docs", "import", src, "--store", "file", "--store-dsn", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Stored 'patrol'")

	out, err = run(t, "docs", "ls", "--store", "file", "--store-dsn", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "- patrol")

	out, err = run(t, "docs", "rm", "patrol", "--store", "file", "--store-dsn", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 'patrol'")
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starter")

	out, err := run(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "starter.xml")

	out, err = run(t, "validate", path+".xml")
	require.NoError(t, err)
	assert.Contains(t, out, "5 nodes")

	_, err = run(t, "init", path)
	assert.Error(t, err, "existing files are kept")
}
