package photoutils

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// extractTags decodes the Exif tag mapping of a photo source. The
// source is either a filesystem path (string), raw image bytes
// ([]byte), or an io.ReadSeeker such as *bytes.Reader or an already
// open *os.File. Read-seekers are rewound before decoding since the
// caller may have left the cursor anywhere.
func extractTags(dec Decoder, source any) (Tags, error) {
	switch src := source.(type) {
	case string:
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("open photo: %w", err)
		}
		defer f.Close()
		return dec.DecodeTags(f)
	case []byte:
		return dec.DecodeTags(bytes.NewReader(src))
	case io.ReadSeeker:
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind photo source: %w", err)
		}
		return dec.DecodeTags(src)
	default:
		return nil, fmt.Errorf("%w: expected a path, []byte or io.ReadSeeker, got %T", ErrInvalidSource, source)
	}
}
