package software

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// PaletteSheet builds a cols x rows atlas image where tile i is filled with
// palette[i % len(palette)]. The top pixel row of every tile is darkened so
// orientation stays visible. Used for stages that ship no image.
func PaletteSheet(tileWidth, tileHeight, cols, rows int, palette []color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, tileWidth*cols, tileHeight*rows))
	if len(palette) == 0 || tileWidth <= 0 || tileHeight <= 0 {
		return img
	}

	for i := 0; i < cols*rows; i++ {
		c := palette[i%len(palette)]
		x := (i % cols) * tileWidth
		y := (i / cols) * tileHeight
		r := image.Rect(x, y, x+tileWidth, y+tileHeight)
		draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(x, y, x+tileWidth, y+1), image.NewUniform(darken(c)), image.Point{}, draw.Src)
	}
	return img
}

func darken(c color.Color) color.Color {
	n := color.RGBAModel.Convert(c).(color.RGBA)
	return color.RGBA{R: n.R / 2, G: n.G / 2, B: n.B / 2, A: n.A}
}
