package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDevRun(t *testing.T) {
	assert.True(t, IsDevRun(), "test binaries count as dev runs")
}

func TestResolveDataPath(t *testing.T) {
	sandbox := filepath.Join(os.TempDir(), "swiftnote-dev")
	inTemp := filepath.Join(t.TempDir(), "notes")

	tests := []struct {
		name      string
		path      string
		forceTemp bool
		want      string
	}{
		{name: "Real Path Untouched", path: "/srv/notes", want: "/srv/notes"},
		{name: "Empty Means Current Dir", path: "", want: "."},
		{name: "Sandboxed By Base Name", path: "/srv/notes", forceTemp: true, want: filepath.Join(sandbox, "notes")},
		{name: "Sandboxed Default", path: ".", forceTemp: true, want: filepath.Join(sandbox, "default")},
		{name: "Temp Dir Trusted", path: inTemp, forceTemp: true, want: inTemp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDataPath(tt.path, tt.forceTemp))
		})
	}
}
