// Package inputs turns files, bytes and URLs into decoded images ready for
// upload.
package inputs

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for content that is not an image this
// package can decode.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Decode reads all of r and decodes it.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes an encoded image. Content that sniffs as something
// other than an image is rejected before any decoder runs.
func DecodeBytes(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no data", ErrUnsupportedFormat)
	}
	kind, _ := filetype.Match(data)
	if kind != filetype.Unknown && kind.MIME.Type != "image" {
		return nil, fmt.Errorf("%w: content is %s", ErrUnsupportedFormat, kind.MIME.Value)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		if kind != filetype.Unknown {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind.MIME.Value)
		}
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("image has no pixels (%dx%d)", b.Dx(), b.Dy())
	}
	return img, nil
}

// DecodeFile decodes the image stored at path.
func DecodeFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// FlipVertical returns img as a tightly packed NRGBA buffer with the last
// row first, the order OpenGL expects for texture uploads.
func FlipVertical(img image.Image) *image.NRGBA {
	return imaging.FlipV(img)
}

// DecodeBottomUp decodes data and flips it for upload. source names the data
// in errors.
func DecodeBottomUp(data []byte, source string) (*image.NRGBA, error) {
	img, err := DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", source, err)
	}
	return FlipVertical(img), nil
}

// DecodeFileBottomUp is DecodeFile followed by FlipVertical.
func DecodeFileBottomUp(path string) (*image.NRGBA, error) {
	img, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return FlipVertical(img), nil
}
