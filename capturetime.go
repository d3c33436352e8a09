package photoutils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Exif encodes date/time tags with colon-separated date fields and a
// 24-hour clock.
const exifTimeLayout = "2006:01:02 15:04:05"

var (
	// ErrInvalidSource reports a photo source that is neither a path,
	// raw bytes, nor a read-seeker.
	ErrInvalidSource = errors.New("invalid photo source type")

	// ErrCaptureTimeMissing reports that the photo does not contain
	// capture date and time information.
	ErrCaptureTimeMissing = errors.New("photo does not contain capture date and time information")

	// ErrMalformedMetadata reports an invalid date or UTC-offset format
	// in the Exif metadata.
	ErrMalformedMetadata = errors.New("invalid date format in Exif metadata")
)

// CaptureTime returns the capture time of a photo as recorded in its
// Exif metadata. The source is a filesystem path (string), raw image
// bytes ([]byte), or an io.ReadSeeker positioned anywhere.
//
// When the camera wrote an OffsetTimeOriginal tag the result carries
// that fixed UTC offset; otherwise the result is in time.Local with no
// offset information. A photo without a DateTimeOriginal tag yields
// ErrCaptureTimeMissing; use LookupCaptureTime to treat that case as a
// plain absence instead.
func CaptureTime(source any) (time.Time, error) {
	captureTime, ok, err := lookupCaptureTime(defaultDecoder, source)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, ErrCaptureTimeMissing
	}
	return captureTime, nil
}

// LookupCaptureTime behaves like CaptureTime but reports a missing
// capture-date tag as ok == false rather than an error. Malformed
// metadata still fails.
func LookupCaptureTime(source any) (time.Time, bool, error) {
	return lookupCaptureTime(defaultDecoder, source)
}

func lookupCaptureTime(dec Decoder, source any) (time.Time, bool, error) {
	tags, err := extractTags(dec, source)
	if err != nil {
		return time.Time{}, false, err
	}

	rawTime, ok := tags.lookup(TagDateTimeOriginal)
	if !ok {
		return time.Time{}, false, nil
	}

	captureTime, err := time.ParseInLocation(exifTimeLayout, rawTime, time.Local)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %q", ErrMalformedMetadata, rawTime)
	}

	// Some cameras also record the time zone of the capture, e.g.
	// "+07:00" or "-05:00".
	if rawOffset, ok := tags.lookup(TagOffsetTimeOriginal); ok {
		zone, err := parseUTCOffset(rawOffset)
		if err != nil {
			return time.Time{}, false, err
		}
		captureTime = time.Date(
			captureTime.Year(), captureTime.Month(), captureTime.Day(),
			captureTime.Hour(), captureTime.Minute(), captureTime.Second(),
			captureTime.Nanosecond(), zone)
	}

	return captureTime, true, nil
}

// parseUTCOffset converts an Exif offset string, a sign followed by
// "HH:MM", into a fixed-offset location. A leading character other
// than '+' is treated as negative.
func parseUTCOffset(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return nil, fmt.Errorf("%w: offset %q", ErrMalformedMetadata, s)
	}

	sign := -1
	if s[0] == '+' {
		sign = 1
	}

	rawHours, rawMinutes, ok := strings.Cut(s[1:], ":")
	if !ok {
		return nil, fmt.Errorf("%w: offset %q", ErrMalformedMetadata, s)
	}
	hours, err := strconv.Atoi(rawHours)
	if err != nil {
		return nil, fmt.Errorf("%w: offset %q", ErrMalformedMetadata, s)
	}
	minutes, err := strconv.Atoi(rawMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: offset %q", ErrMalformedMetadata, s)
	}

	return time.FixedZone("UTC"+s, sign*(hours*3600+minutes*60)), nil
}
