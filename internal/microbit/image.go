package microbit

import (
	"fmt"
	"regexp"
	"strings"
)

// ImageSize is the width and height of the LED matrix.
const ImageSize = 5

var imagePattern = regexp.MustCompile(`^(\d{5}:){4}\d{5}$`)

// Image is a 5x5 grid of brightness values, row-major from the top.
type Image struct {
	rows [ImageSize][ImageSize]int
}

// NewImage builds an image from exactly five rows of five brightness
// values in [0, 9].
func NewImage(rows ...[]int) (Image, error) {
	var img Image
	if len(rows) != ImageSize {
		return img, invalid("image", "you must provide 5 rows for an image, got %d", len(rows))
	}
	for i, row := range rows {
		if err := img.SetRow(i, row); err != nil {
			return Image{}, err
		}
	}
	return img, nil
}

// ParseImage parses the "AAAAA:BBBBB:CCCCC:DDDDD:EEEEE" form.
func ParseImage(s string) (Image, error) {
	if !imagePattern.MatchString(s) {
		return Image{}, invalid("image", "image string %q must be of the form XXXXX:XXXXX:XXXXX:XXXXX:XXXXX, where X is a digit from 0 to 9", s)
	}
	var img Image
	for y, row := range strings.Split(s, ":") {
		for x, c := range row {
			img.rows[y][x] = int(c - '0')
		}
	}
	return img, nil
}

// SetRow replaces row i.
func (img *Image) SetRow(i int, row []int) error {
	if i < 0 || i >= ImageSize {
		return invalid("image", "row index %d must be between 0 and 4", i)
	}
	if len(row) != ImageSize {
		return invalid("image", "image row must have exactly 5 values, got %d", len(row))
	}
	for _, px := range row {
		if !inRange(px, 0, BrightnessLimit) {
			return invalid("image", "pixel value %d must be between 0 and 9", px)
		}
	}
	copy(img.rows[i][:], row)
	return nil
}

// Row returns a copy of row i. Panics if i is out of range.
func (img Image) Row(i int) []int {
	row := make([]int, ImageSize)
	copy(row, img.rows[i][:])
	return row
}

// Pixel returns the brightness at column x of row y. Panics if either is
// out of range.
func (img Image) Pixel(x, y int) int {
	return img.rows[y][x]
}

// String returns the wire form, e.g. "90000:09000:00900:00090:00009".
func (img Image) String() string {
	var b strings.Builder
	for y, row := range img.rows {
		if y > 0 {
			b.WriteByte(':')
		}
		for _, px := range row {
			fmt.Fprintf(&b, "%d", px)
		}
	}
	return b.String()
}

var _ fmt.Stringer = Image{}
