// Package util locates images and their ground-truth annotations on disk.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nvr-ai/go-seg/images"
	"github.com/pkg/errors"
)

const (
	// ImagesDir is the directory holding images, one sub-directory per category.
	ImagesDir = "JPEGImages"
	// AnnotationsDir is the directory holding VOC XML files, laid out like ImagesDir.
	AnnotationsDir = "Annotations"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Name is the file name without its extension.
	Name string
	// Format is derived from the file extension.
	Format images.ImageFormat
	// Data is the raw bytes of the image file.
	Data []byte
}

// Image returns the file as an undecoded images.Image.
func (f ImageFile) Image() images.Image {
	return images.Image{Format: f.Format, Data: f.Data}
}

// LoadDirectoryImageFiles reads all image files from a directory.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: Slice of ImageFile sorted by file name, each containing the raw bytes of an image file.
// - error: Error if loading fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	paths, err := listImages(dir)
	if err != nil {
		return nil, err
	}

	files := make([]ImageFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read image")
		}
		format, _ := images.FormatFromPath(path)
		files = append(files, ImageFile{
			Path:   path,
			Name:   stem(path),
			Format: format,
			Data:   data,
		})
	}

	return files, nil
}

// AnnotationPath returns the ground-truth XML path for an image stored as
// <root>/JPEGImages/<category>/<name>.<ext>, which is
// <root>/Annotations/<category>/<name>.xml.
//
// When no JPEGImages ancestor exists, root is taken to be three levels above
// the image.
//
// @example
// AnnotationPath("data/VOC/JPEGImages/cat/0001.jpg", "cat") // data/VOC/Annotations/cat/0001.xml
func AnnotationPath(imagePath, category string) string {
	return filepath.Join(datasetRoot(imagePath), AnnotationsDir, category, stem(imagePath)+".xml")
}

// Sample is one image of a category together with its annotation file.
type Sample struct {
	Category   string `json:"category"`
	Image      string `json:"image"`
	Annotation string `json:"annotation"`
}

// LoadDataset lists the images of category under root whose annotation file
// exists. Images without ground truth are skipped.
//
// Arguments:
// - root: Dataset root containing JPEGImages/ and Annotations/.
// - category: Category sub-directory to list.
//
// Returns:
// - The samples sorted by image path.
// - An error if the image directory cannot be read.
func LoadDataset(root, category string) ([]Sample, error) {
	paths, err := listImages(filepath.Join(root, ImagesDir, category))
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, path := range paths {
		ann := filepath.Join(root, AnnotationsDir, category, stem(path)+".xml")
		if _, err := os.Stat(ann); err != nil {
			continue
		}
		samples = append(samples, Sample{Category: category, Image: path, Annotation: ann})
	}
	return samples, nil
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read image directory")
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := images.FormatFromPath(entry.Name()); ok {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func datasetRoot(imagePath string) string {
	dir := filepath.Dir(imagePath)
	for d := dir; ; {
		if filepath.Base(d) == ImagesDir {
			return filepath.Dir(d)
		}
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	return filepath.Dir(filepath.Dir(dir))
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
