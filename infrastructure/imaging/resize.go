package imaging

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// MatchSize rewrites the edited image in place so its dimensions exactly
// match the reference image. Cover fit: scale by the larger axis ratio,
// then center-crop. Already-matching images are left untouched.
func MatchSize(editedPath, referencePath string) error {
	refW, refH, err := Dimensions(referencePath)
	if err != nil {
		return err
	}
	outW, outH, err := Dimensions(editedPath)
	if err != nil {
		return err
	}
	if refW == outW && refH == outH {
		return nil
	}

	edited, err := Load(editedPath)
	if err != nil {
		return err
	}

	scale := math.Max(float64(refW)/float64(outW), float64(refH)/float64(outH))
	newW := maxInt(1, int(math.Round(float64(outW)*scale)))
	newH := maxInt(1, int(math.Round(float64(outH)*scale)))

	resized := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(resized, resized.Bounds(), edited, edited.Bounds(), draw.Over, nil)

	left := maxInt(0, (newW-refW)/2)
	top := maxInt(0, (newH-refH)/2)
	cropped := image.NewRGBA(image.Rect(0, 0, refW, refH))
	draw.Draw(cropped, cropped.Bounds(), resized, image.Pt(left, top), draw.Src)

	return Save(editedPath, cropped)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
