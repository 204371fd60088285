package pipeline

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// prepareImage bounds the photograph's transmission size: anything larger
// than maxEdge on its longest side is downscaled with Catmull-Rom
// resampling, and everything is (re-)encoded as JPEG at the given quality.
// A JPEG already within bounds passes through untouched.
func prepareImage(data []byte, maxEdge, quality int) ([]byte, string, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	longest := width
	if height > longest {
		longest = height
	}

	if maxEdge <= 0 || longest <= maxEdge {
		if format == "jpeg" {
			return data, "image/jpeg", nil
		}
		return encodeJPEG(src, quality)
	}

	scale := float64(maxEdge) / float64(longest)
	scaledWidth := int(float64(width) * scale)
	scaledHeight := int(float64(height) * scale)
	if scaledWidth < 1 {
		scaledWidth = 1
	}
	if scaledHeight < 1 {
		scaledHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, scaledWidth, scaledHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return encodeJPEG(dst, quality)
}

func encodeJPEG(img image.Image, quality int) ([]byte, string, error) {
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
