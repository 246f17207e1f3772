package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-seg/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestLoadDirectoryImageFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.png"), []byte("png"))
	writeFile(t, filepath.Join(dir, "a.JPG"), []byte("jpeg"))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("skip"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	files, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "a", files[0].Name)
	assert.Equal(t, images.FormatJPEG, files[0].Format)
	assert.Equal(t, []byte("jpeg"), files[0].Data)
	assert.Equal(t, "b", files[1].Name)
	assert.Equal(t, images.Image{Format: images.FormatPNG, Data: []byte("png")}, files[1].Image())
}

func TestLoadDirectoryImageFilesMissingDir(t *testing.T) {
	_, err := LoadDirectoryImageFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestAnnotationPath(t *testing.T) {
	tests := []struct {
		name     string
		image    string
		category string
		want     string
	}{
		{
			name:     "dataset layout",
			image:    filepath.Join("data", "VOC2012", "JPEGImages", "cat", "2007_000528.jpg"),
			category: "cat",
			want:     filepath.Join("data", "VOC2012", "Annotations", "cat", "2007_000528.xml"),
		},
		{
			name:     "nested below the image directory",
			image:    filepath.Join("voc", "JPEGImages", "cat", "extra", "x.png"),
			category: "cat",
			want:     filepath.Join("voc", "Annotations", "cat", "x.xml"),
		},
		{
			name:     "no images directory",
			image:    filepath.Join("root", "photos", "cat", "x.jpeg"),
			category: "dog",
			want:     filepath.Join("root", "Annotations", "dog", "x.xml"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnnotationPath(tt.image, tt.category))
		})
	}
}

func TestLoadDataset(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ImagesDir, "cat", "1.jpg"), []byte("x"))
	writeFile(t, filepath.Join(root, ImagesDir, "cat", "2.jpg"), []byte("x"))
	writeFile(t, filepath.Join(root, AnnotationsDir, "cat", "1.xml"), []byte("<annotation/>"))

	samples, err := LoadDataset(root, "cat")
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, Sample{
		Category:   "cat",
		Image:      filepath.Join(root, ImagesDir, "cat", "1.jpg"),
		Annotation: filepath.Join(root, AnnotationsDir, "cat", "1.xml"),
	}, samples[0])
	assert.Equal(t, samples[0].Annotation, AnnotationPath(samples[0].Image, "cat"))

	_, err = LoadDataset(root, "dog")
	assert.Error(t, err)
}
