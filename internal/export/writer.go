package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tripdirections/service-directions/internal/domain/trip"
	"go.uber.org/zap"
)

const (
	fileExt       = ".txt"
	maxCreateTry  = 5
	suffixLength  = 12
	filePerm      = 0o644
	directoryPerm = 0o755
)

// File is an export written to local disk.
type File struct {
	Path string
	Name string
	Size int64
}

// Writer writes trips to uniquely named files under a single directory.
type Writer struct {
	dir       string
	keepFiles bool
	newSuffix func() string
	logger    *zap.Logger
}

// NewWriter creates the export directory if needed and returns a Writer.
// When keepFiles is false Release deletes files once they were served.
func NewWriter(dir string, keepFiles bool, logger *zap.Logger) (*Writer, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, directoryPerm); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}
	return &Writer{
		dir:       dir,
		keepFiles: keepFiles,
		newSuffix: randomSuffix,
		logger:    logger,
	}, nil
}

// Dir returns the export directory.
func (w *Writer) Dir() string { return w.dir }

// Write stores t as one ExportLine per coordinate in a new file whose name
// starts with name. Two calls with the same name never share a file.
func (w *Writer) Write(ctx context.Context, name string, t trip.Trip) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := w.create(name)
	if err != nil {
		return nil, err
	}
	path := f.Name()

	size, err := writeLines(f, t)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close export file: %w", closeErr)
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			w.logger.Warn("failed to remove partial export file", zap.String("path", path), zap.Error(rmErr))
		}
		return nil, err
	}

	w.logger.Debug("export file written",
		zap.String("path", path),
		zap.Int("points", len(t)),
		zap.Int64("bytes", size),
	)
	return &File{Path: path, Name: filepath.Base(path), Size: size}, nil
}

// Open opens a written export for reading.
func (w *Writer) Open(f *File) (io.ReadCloser, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}
	return file, nil
}

// Remove deletes the export file. A file that is already gone is not an error.
func (w *Writer) Remove(f *File) error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove export file: %w", err)
	}
	return nil
}

// Release is called once an export has been served. It removes the file
// unless the writer keeps files.
func (w *Writer) Release(f *File) {
	if w.keepFiles || f == nil {
		return
	}
	if err := w.Remove(f); err != nil {
		w.logger.Warn("failed to release export file", zap.String("path", f.Path), zap.Error(err))
	}
}

func (w *Writer) create(name string) (*os.File, error) {
	base := strings.NewReplacer("/", "-", `\`, "-").Replace(name)

	var lastErr error
	for i := 0; i < maxCreateTry; i++ {
		path := filepath.Join(w.dir, base+"_"+w.newSuffix()+fileExt)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("failed to create export file: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to create a unique export file after %d attempts: %w", maxCreateTry, lastErr)
}

func writeLines(f *os.File, t trip.Trip) (int64, error) {
	buf := bufio.NewWriter(f)
	var size int64
	for _, c := range t {
		n, err := buf.WriteString(trip.ExportLine(c))
		size += int64(n)
		if err != nil {
			return size, fmt.Errorf("failed to write export file: %w", err)
		}
	}
	if err := buf.Flush(); err != nil {
		return size, fmt.Errorf("failed to flush export file: %w", err)
	}
	return size, nil
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLength]
}
