// Package imaging implements the raster transforms of the server: box-filter
// downscaling, quarter-turn rotation, mirroring, content type conversion,
// white keying, lightness measurement, color sampling and cropping.
//
// All operations take a *raster.Buffer and return a new one. Sources are
// never modified, so independent calls may run concurrently, including on a
// shared source.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. For regions, (x1,y1) is
// inclusive and (x2,y2) exclusive.
//
// # Content Types and Matting
//
// Most transforms take an Options value whose ContentType names the format
// the result will be encoded as. JPEG has no alpha channel, so the source is
// first composited onto Options.Background (white by default). PNG and GIF
// keep alpha.
//
// # Downscaling
//
// ResizeByScale is an area-weighted box filter: every output pixel is the
// average of the source pixels under it, weighted by exact overlap area.
// It only reduces; scale factors must lie in (0, 1]. Resize fits an image
// into a bounding box and routes enlargements to Upscale only when
// Options.Upscale is set.
//
// The box filter accumulates red, green and blue only. Output alpha is
// always 255, even for PNG sources with transparent regions.
//
// # Error Handling
//
// Precondition failures wrap the sentinels of package raster
// (ErrInvalidDimension, ErrUnsupportedContentType, ErrBufferSizeMismatch)
// and can be matched with errors.Is.
package imaging
