// Package pipeline decodes images, runs the transforms of package imaging
// against them and encodes the results.
//
// A Pipeline carries the process-wide Settings (default content type, matte
// color, JPEG quality, decode limits). Each operation takes per-request
// Options and resolves the target content type in this order: the request,
// the source image's own type, then Settings.ContentType.
//
//	p := pipeline.New(pipeline.DefaultSettings())
//	img, err := p.DecodeFile("photo.png")
//	if err != nil {
//		return err
//	}
//	res, err := p.ResizeByScale(img, 0.5, pipeline.Options{ContentType: raster.JPEG})
//	if err != nil {
//		return err
//	}
//	return pipeline.Encode(w, res)
//
// Decoded images are immutable once built, so an ImageCache can hand the same
// *Image to concurrent callers.
package pipeline
