package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog/log"
)

// FileSystemWalker defines the interface for walking directories
type FileSystemWalker interface {
	Walk(root string, options *godirwalk.Options) error
}

// FileReader defines the interface for reading files
type FileReader interface {
	ReadFile(filename string) ([]byte, error)
}

// DefaultFileSystemWalker implements FileSystemWalker using godirwalk
type DefaultFileSystemWalker struct{}

func (d *DefaultFileSystemWalker) Walk(root string, options *godirwalk.Options) error {
	return godirwalk.Walk(root, options)
}

// DefaultFileReader implements FileReader using os
type DefaultFileReader struct{}

func (d *DefaultFileReader) ReadFile(filename string) ([]byte, error) {
	return os.ReadFile(filename)
}

// MaterialStore is the persistence the importer needs.
type MaterialStore interface {
	UpsertMaterial(ctx context.Context, lectureID, name, content string) error
}

// Importer bulk-loads a directory of text files as materials of a lecture.
type Importer struct {
	Store      MaterialStore
	Root       string
	LectureID  string
	Walker     FileSystemWalker
	FileReader FileReader
}

// New creates a new Importer instance.
func New(s MaterialStore, root, lectureID string) *Importer {
	return &Importer{
		Store:      s,
		Root:       root,
		LectureID:  lectureID,
		Walker:     &DefaultFileSystemWalker{},
		FileReader: &DefaultFileReader{},
	}
}

// NewWithDependencies creates a new Importer instance with custom dependencies for testing
func NewWithDependencies(s MaterialStore, root, lectureID string, walker FileSystemWalker, reader FileReader) *Importer {
	return &Importer{
		Store:      s,
		Root:       root,
		LectureID:  lectureID,
		Walker:     walker,
		FileReader: reader,
	}
}

// workItem represents a file to be imported
type workItem struct {
	path    string
	content string
}

func (im *Importer) processWorkItem(ctx context.Context, item workItem) error {
	name := rel(im.Root, item.path)
	content := strings.TrimSpace(item.content)
	if content == "" {
		log.Debug().Str("path", item.path).Msg("skipping empty file")
		return nil
	}

	log.Info().Str("material", name).Int("bytes", len(content)).Msg("importing material")
	if err := im.Store.UpsertMaterial(ctx, im.LectureID, name, content); err != nil {
		return fmt.Errorf("upsert %s: %w", name, err)
	}
	return nil
}

// Run walks the root directory and imports every eligible file, fanning
// work out over a small pool so database writes overlap file reads.
func (im *Importer) Run(ctx context.Context) error {
	numWorkers := runtime.NumCPU()
	if numWorkers > 8 {
		numWorkers = 8
	}

	log.Info().Int("workers", numWorkers).Str("root", im.Root).Msg("starting material import")

	workChan := make(chan workItem, numWorkers*2)
	errorChan := make(chan error, 1)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for item := range workChan {
				if err := im.processWorkItem(ctx, item); err != nil {
					select {
					case errorChan <- err:
					default:
						log.Error().Err(err).Str("path", item.path).Msg("worker processing error")
					}
				}
			}
		}(i)
	}

	walkErr := im.Walker.Walk(im.Root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			// de may be nil when driven by a test walker.
			if de != nil && de.IsDir() {
				return nil
			}
			if !eligible(path) {
				return nil
			}

			b, err := im.FileReader.ReadFile(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("failed to read file")
				return nil
			}

			select {
			case workChan <- workItem{path: path, content: string(b)}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		},
	})

	close(workChan)
	wg.Wait()

	select {
	case err := <-errorChan:
		if err != nil {
			return err
		}
	default:
	}

	return walkErr
}

// eligible reports whether path looks like importable lecture text.
func eligible(path string) bool {
	p := strings.ToLower(path)
	if strings.Contains(p, "/.git/") || strings.Contains(p, "/node_modules/") {
		return false
	}
	switch filepath.Ext(p) {
	case ".txt", ".md", ".markdown", ".rst":
		return true
	}
	return false
}

func rel(root, p string) string {
	r, err := filepath.Rel(root, p)
	if err != nil {
		return p
	}
	return r
}
