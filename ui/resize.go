package ui

import (
	"image"

	"golang.org/x/image/draw"
)

// Resize scales the frame by an integer ratio. 像素画用最近邻, 不做插值
func Resize(source *image.RGBA, ratio int) *image.RGBA {
	if ratio <= 1 {
		return source
	}

	b := source.Bounds()
	target := image.NewRGBA(image.Rect(0, 0, b.Dx()*ratio, b.Dy()*ratio))
	draw.NearestNeighbor.Scale(target, target.Bounds(), source, b, draw.Src, nil)
	return target
}
