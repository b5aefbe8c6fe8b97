package store

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif"
	_ "image/png"
)

const (
	// ImageSizeThreshold is the encoded size past which the compress step of
	// the ladder touches an embedded image.
	ImageSizeThreshold = 500 * 1024

	// Images beyond four times the threshold are not worth recompressing,
	// they get dropped to an empty placeholder instead.
	imageDropMultiplier = 4

	recompressQuality  = 40
	recompressMaxWidth = 1280
)

// visitStateImages applies fn to every embedded image in the document: the
// current offer's floor plan, the branding logo, and both inside every
// template. Reports whether any value changed.
func visitStateImages(m map[string]any, fn func(string) string) bool {
	changed := false

	apply := func(obj map[string]any, key string) {
		cur, _ := obj[key].(string)
		if cur == "" {
			return
		}
		if next := fn(cur); next != cur {
			obj[key] = next
			changed = true
		}
	}

	if offer, ok := m["currentOffer"].(map[string]any); ok {
		apply(offer, "floorPlanImage")
	}
	if branding, ok := m["branding"].(map[string]any); ok {
		apply(branding, "logoImage")
	}
	if templates, ok := m["templates"].([]any); ok {
		for _, t := range templates {
			tm, ok := t.(map[string]any)
			if !ok {
				continue
			}
			if data, ok := tm["data"].(map[string]any); ok {
				apply(data, "floorPlanImage")
			}
			if tb, ok := tm["branding"].(map[string]any); ok {
				apply(tb, "logoImage")
			}
		}
	}

	return changed
}

// shrinkImage is the compress step policy for one image. Under the threshold
// it is left alone; egregiously oversized ones are dropped outright.
func shrinkImage(encoded string) string {
	if len(encoded) <= ImageSizeThreshold {
		return encoded
	}
	if len(encoded) > imageDropMultiplier*ImageSizeThreshold {
		return ""
	}
	return recompressDataURL(encoded)
}

// recompressDataURL re-encodes a data-URL image as a downscaled JPEG. On any
// decode trouble the original is returned untouched, the strip step will deal
// with it if the write still does not fit.
func recompressDataURL(encoded string) string {
	payload, ok := dataURLPayload(encoded)
	if !ok {
		return encoded
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return encoded
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return encoded
	}

	img = downscale(img, recompressMaxWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: recompressQuality}); err != nil {
		return encoded
	}

	out := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	if len(out) >= len(encoded) {
		return encoded
	}
	return out
}

func dataURLPayload(encoded string) (string, bool) {
	if !strings.HasPrefix(encoded, "data:") {
		return "", false
	}
	idx := strings.Index(encoded, ";base64,")
	if idx < 0 {
		return "", false
	}
	return encoded[idx+len(";base64,"):], true
}

// downscale resamples by stride, good enough for a quota rescue where
// fidelity already lost priority.
func downscale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWidth {
		return img
	}

	scale := float64(b.Dx()) / float64(maxWidth)
	h := int(float64(b.Dy()) / scale)
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	for y := 0; y < h; y++ {
		srcY := b.Min.Y + int(float64(y)*scale)
		for x := 0; x < maxWidth; x++ {
			srcX := b.Min.X + int(float64(x)*scale)
			dst.Set(x, y, img.At(srcX, srcY))
		}
	}
	return dst
}
