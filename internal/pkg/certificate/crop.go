package certificate

import (
	"image"

	"github.com/disintegration/imaging"
)

// topBias is how far down the crop window starts on taller-than-frame
// sources, as a fraction of source height. Pet faces usually sit in the
// upper part of the frame.
const topBias = 0.1

// cropWindow computes the crop region that matches the photo frame's aspect
// ratio. Sources wider than the frame ratio are cropped symmetrically at full
// height; taller sources are cropped at full width with the window biased
// towards the top, clamped to stay inside the source bounds.
func cropWindow(srcW, srcH, frameW, frameH int) image.Rectangle {
	targetRatio := float64(frameW) / float64(frameH)
	srcRatio := float64(srcW) / float64(srcH)

	if srcRatio > targetRatio {
		newW := int(float64(srcH) * targetRatio)
		left := (srcW - newW) / 2
		return image.Rect(left, 0, left+newW, srcH)
	}

	newH := int(float64(srcW) / targetRatio)
	top := int(float64(srcH) * topBias)
	if top+newH > srcH {
		top = srcH - newH
	}
	return image.Rect(0, top, srcW, top+newH)
}

// cropForFrame crops the source to the frame's aspect ratio and resizes the
// result to the exact frame dimensions.
func cropForFrame(src image.Image, frameW, frameH int) image.Image {
	bounds := src.Bounds()
	window := cropWindow(bounds.Dx(), bounds.Dy(), frameW, frameH)
	cropped := imaging.Crop(src, window.Add(bounds.Min))
	return imaging.Resize(cropped, frameW, frameH, imaging.Lanczos)
}
