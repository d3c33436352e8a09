// Package photoutils extracts capture timestamps from the Exif metadata
// embedded in photo image files (JPEG/TIFF family).
package photoutils

import (
	"errors"
	"fmt"
	"io"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// Exif tag names consulted by the capture-time resolver.
const (
	TagDateTimeOriginal   = "DateTimeOriginal"
	TagOffsetTimeOriginal = "OffsetTimeOriginal"
)

// Tag IDs recognized by the broader photo tooling. Only the two
// date/time tags above are consulted today.
const (
	TagIDOrientation     uint16 = 0x0112
	TagIDExposureTime    uint16 = 0x829A
	TagIDFNumber         uint16 = 0x829D
	TagIDISOSpeedRatings uint16 = 0x8827
	TagIDFocalLength     uint16 = 0x920A
)

// Rational is a numerator/denominator pair as stored in rational Exif
// tags.
type Rational struct {
	Numerator   int64
	Denominator int64
}

// TagValue is the decoded value of a single Exif tag: its printable
// string form plus, for rational tags, the decomposed components.
type TagValue struct {
	Printable string
	Rationals []Rational
}

// Tags maps Exif tag names to their decoded values.
type Tags map[string]TagValue

// lookup reports a tag as present only when it carries a non-empty
// printable value; an empty string counts as absent.
func (t Tags) lookup(name string) (string, bool) {
	value, ok := t[name]
	return value.Printable, ok && value.Printable != ""
}

// Decoder turns an image byte stream into an Exif tag mapping. The
// production decoder is backed by go-exif; tests substitute canned
// mappings.
type Decoder interface {
	DecodeTags(r io.Reader) (Tags, error)
}

type exifDecoder struct{}

// NewExifDecoder returns the production Exif tag decoder.
func NewExifDecoder() Decoder {
	return exifDecoder{}
}

var defaultDecoder Decoder = exifDecoder{}

func (exifDecoder) DecodeTags(r io.Reader) (Tags, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read photo source: %w", err)
	}

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		// No Exif block means no tags, not a decode failure.
		if errors.Is(err, exif.ErrNoExif) {
			return Tags{}, nil
		}
		return nil, fmt.Errorf("locate exif block: %w", err)
	}

	mapping, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, fmt.Errorf("build ifd mapping: %w", err)
	}

	tagIndex := exif.NewTagIndex()
	_, index, err := exif.Collect(mapping, tagIndex, rawExif)
	if err != nil {
		return nil, fmt.Errorf("collect exif tags: %w", err)
	}

	tags := Tags{}
	visit := func(ifd *exif.Ifd, ite *exif.IfdTagEntry) error {
		if value, ok := entryValue(ite); ok {
			tags[ite.TagName()] = value
		}
		return nil
	}
	if err := index.RootIfd.EnumerateTagsRecursively(visit); err != nil {
		return nil, fmt.Errorf("walk exif tags: %w", err)
	}

	return tags, nil
}

func entryValue(ite *exif.IfdTagEntry) (TagValue, bool) {
	raw, err := ite.Value()
	if err != nil {
		// Unreadable tags simply do not appear in the mapping.
		return TagValue{}, false
	}

	tv := TagValue{}
	switch v := raw.(type) {
	case string:
		tv.Printable = v
	case []exifcommon.Rational:
		for _, r := range v {
			tv.Rationals = append(tv.Rationals, Rational{int64(r.Numerator), int64(r.Denominator)})
		}
	case []exifcommon.SignedRational:
		for _, r := range v {
			tv.Rationals = append(tv.Rationals, Rational{int64(r.Numerator), int64(r.Denominator)})
		}
	}

	if tv.Printable == "" {
		if phrase, err := ite.FormatFirst(); err == nil {
			tv.Printable = phrase
		} else {
			tv.Printable = fmt.Sprintf("%v", raw)
		}
	}

	return tv, true
}
