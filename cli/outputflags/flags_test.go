package outputflags

import (
	"bytes"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type value struct {
	Name string `json:"name" yaml:"name"`
	Size int    `json:"size" yaml:"size"`
}

func parse(t *testing.T, args ...string) (*Flags, error) {
	t.Helper()
	var f Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return &f, f.Init()
}

func write(t *testing.T, f *Flags, values ...any) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := f.Open(&buf)
	require.NoError(t, err)
	for _, v := range values {
		require.NoError(t, w.Write(v))
	}
	require.NoError(t, w.Close())
	return buf.String()
}

func TestYAML(t *testing.T) {
	f, err := parse(t)
	require.NoError(t, err)
	out := write(t, f, value{"a", 1}, value{"b", 2})
	assert.Equal(t, "name: a\nsize: 1\n---\nname: b\nsize: 2\n", out)
}

func TestJSON(t *testing.T) {
	f, err := parse(t, "-f", "json")
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"a\",\"size\":1}\n", write(t, f, value{"a", 1}))

	f, err = parse(t, "-J")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"a\",\n  \"size\": 1\n}\n", write(t, f, value{"a", 1}))
}

func TestOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	f, err := parse(t, "-w", path)
	require.NoError(t, err)
	assert.Empty(t, write(t, f, value{"a", 1}))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name: a\nsize: 1\n", string(b))
}

func TestInitErrors(t *testing.T) {
	_, err := parse(t, "-f", "csv")
	assert.Error(t, err)
	_, err = parse(t, "-J", "-f", "csv")
	assert.Error(t, err)
	_, err = parse(t, "-pretty", "-1")
	assert.Error(t, err)
}
