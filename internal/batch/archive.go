package batch

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// ArchiveFilename is the download name for a batch's artifact archive.
const ArchiveFilename = "sell_sheets.zip"

// ArchiveContentType is the MIME type served with the archive.
const ArchiveContentType = "application/zip"

// BuildArchive packages every artifact in the result into a single deflate
// zip. Entries follow success insertion order and carry no timestamps, so
// building twice from the same result yields byte-identical output.
func BuildArchive(result *BatchResult) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, name := range result.ArtifactOrder {
		data, ok := result.Artifacts[name]
		if !ok {
			continue
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		})
		if err != nil {
			return nil, fmt.Errorf("create archive entry %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write archive entry %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}

	return buf.Bytes(), nil
}
