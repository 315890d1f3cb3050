package imaging

import (
	"image"
	"image/color"
	"image/draw"
)

// WriteMockMask writes a full-coverage (all white) mask matching the
// dimensions of the image at srcPath. Used when the segmentation backend
// is mocked or exhausted.
func WriteMockMask(srcPath, maskPath string) error {
	w, h, err := Dimensions(srcPath)
	if err != nil {
		return err
	}

	mask := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(mask, mask.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	return Save(maskPath, mask)
}
