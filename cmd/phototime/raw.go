package main

import (
	"fmt"
	"os"
	"time"

	"github.com/evanoberholster/imagemeta"
)

// Camera raw files keep their Exif block behind vendor container
// structures the JPEG/TIFF tag extractor does not reach; imagemeta
// understands those.
var rawExtensions = map[string]bool{
	".cr3": true,
	".nef": true,
}

func rawCaptureTime(path string) (time.Time, error) {
	fileHandle, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer fileHandle.Close()

	exifData, err := imagemeta.Decode(fileHandle)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode raw image metadata: %w", err)
	}

	return exifData.DateTimeOriginal(), nil
}
