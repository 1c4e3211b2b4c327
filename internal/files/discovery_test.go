package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiscovery(t *testing.T) {
	basePath := "/test/base"
	discovery := NewDiscovery(basePath)

	assert.NotNil(t, discovery)
	assert.Equal(t, basePath, discovery.basePath)
}

func TestFindExcelFiles(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected []string
	}{
		{
			name:     "only workbooks",
			files:    []string{"b.xlsx", "a.xlsx", "c.XLSX"},
			expected: []string{"a.xlsx", "b.xlsx", "c.XLSX"},
		},
		{
			name:     "mixed file types",
			files:    []string{"report.xlsx", "data.csv", "doc.pdf", "legacy.xls"},
			expected: []string{"report.xlsx"},
		},
		{
			name:     "lock files skipped",
			files:    []string{"~$incidentes.xlsx", "incidentes.xlsx"},
			expected: []string{"incidentes.xlsx"},
		},
		{
			name:     "no workbooks",
			files:    []string{"data.csv", "readme.txt"},
			expected: nil,
		},
		{
			name:     "empty directory",
			files:    []string{},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			discovery := NewDiscovery(tmpDir)

			testDir := "dados_xlsx"
			fullTestDir := filepath.Join(tmpDir, testDir)
			require.NoError(t, os.MkdirAll(fullTestDir, 0755))

			// Newest first, so name order differs from modification order.
			for i, filename := range tt.files {
				filePath := filepath.Join(fullTestDir, filename)
				require.NoError(t, os.WriteFile(filePath, []byte("test content"), 0644))
				modTime := time.Now().Add(-time.Duration(i) * time.Minute)
				require.NoError(t, os.Chtimes(filePath, modTime, modTime))
			}

			files, err := discovery.FindExcelFiles(testDir)
			require.NoError(t, err)

			var names []string
			for _, file := range files {
				names = append(names, file.Name)
				assert.Equal(t, filepath.Join(fullTestDir, file.Name), file.Path)
				assert.Greater(t, file.Size, int64(0))
				assert.False(t, file.ModTime.IsZero())
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestFindExcelFilesSkipsDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "nested.xlsx"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "top.xlsx"), []byte("x"), 0644))

	files, err := NewDiscovery("/unused").FindExcelFiles(tmpDir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "top.xlsx", files[0].Name)
}

func TestFindExcelFilesMissingDirectory(t *testing.T) {
	discovery := NewDiscovery(t.TempDir())

	files, err := discovery.FindExcelFiles("does-not-exist")
	assert.Error(t, err)
	assert.Nil(t, files)
	assert.Contains(t, err.Error(), "failed to read directory")
}

func TestPaths(t *testing.T) {
	files := []FileInfo{
		{Path: "/in/a.xlsx", Name: "a.xlsx"},
		{Path: "/in/b.xlsx", Name: "b.xlsx"},
	}
	assert.Equal(t, []string{"/in/a.xlsx", "/in/b.xlsx"}, Paths(files))
	assert.Empty(t, Paths(nil))
}
