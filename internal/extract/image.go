package extract

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"

	_ "image/gif"
	_ "image/jpeg"
)

// normalizeImage converts an image to grayscale and stretches its contrast
// to the full range, which noticeably improves tesseract accuracy on faded
// scans and photographed documents.
func normalizeImage(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	gray := image.NewGray(bounds)

	min, max := uint8(255), uint8(0)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(src.At(x, y)).(color.Gray)
			gray.SetGray(x, y, g)
			if g.Y < min {
				min = g.Y
			}
			if g.Y > max {
				max = g.Y
			}
		}
	}

	if max > min {
		scale := 255.0 / float64(max-min)
		for i, v := range gray.Pix {
			gray.Pix[i] = uint8(float64(v-min) * scale)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// normalizeImageFile rewrites an image file in place with its normalized form.
func normalizeImageFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	normalized, err := normalizeImage(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, normalized, 0o600)
}
