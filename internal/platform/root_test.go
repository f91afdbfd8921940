package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	// baseDir/
	//   notes/ (.swiftnote)
	//     subdir/nested/
	//   db/ (swiftnote.db)
	//   conf/ (swiftnote.yaml)
	//   empty/
	baseDir := t.TempDir()
	notesDir := filepath.Join(baseDir, "notes")
	nestedDir := filepath.Join(notesDir, "subdir", "nested")
	dbDir := filepath.Join(baseDir, "db")
	confDir := filepath.Join(baseDir, "conf")
	emptyDir := filepath.Join(baseDir, "empty")

	for _, dir := range []string{nestedDir, dbDir, confDir, emptyDir} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}
	require.NoError(t, os.Mkdir(filepath.Join(notesDir, ".swiftnote"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dbDir, "swiftnote.db"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(confDir, ConfigFileName), nil, 0644))

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: notesDir, wantRoot: notesDir},
		{name: "Start Nested Deeply", startPath: nestedDir, wantRoot: notesDir},
		{name: "Database Marker", startPath: dbDir, wantRoot: dbDir},
		{name: "Config Marker", startPath: confDir, wantRoot: confDir},
		{name: "No Root Found", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.wantRoot), filepath.Clean(got))
		})
	}
}
