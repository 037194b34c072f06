package services

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"io"
	"time"
)

const (
	datasetFolder     = "dataset/"
	archiveFlateLevel = 6
)

type archiveEntry struct {
	Name string
	Body []byte
}

// buildArchive writes entries under the single top-level dataset/ folder.
func buildArchive(entries []archiveEntry, modified time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, archiveFlateLevel)
	})

	if _, err := zw.CreateHeader(&zip.FileHeader{
		Name:     datasetFolder,
		Method:   zip.Store,
		Modified: modified,
	}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     datasetFolder + e.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(e.Body); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
