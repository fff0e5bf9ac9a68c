package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
	xdraw "golang.org/x/image/draw"
)

// maxEmbedPixels caps the longer side of an image embedded in a report.
// Phone photos routinely exceed 4000px and would bloat the PDF.
const maxEmbedPixels = 2200

// PDFPages renders each page of a PDF to PNG bytes at the given DPI.
func PDFPages(pdfData []byte, dpi float64) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := make([][]byte, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.ImageDPI(i, dpi)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page %d: %w", i+1, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding page %d: %w", i+1, err)
		}
		pages = append(pages, buf.Bytes())
	}
	return pages, nil
}

// ToPNG converts any supported image format to PNG.
func ToPNG(imageData []byte, mimeType string) ([]byte, error) {
	img, err := decode(imageData, mimeType)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Flatten prepares an image for embedding in a report: it decodes the image,
// composites any alpha channel onto a white background, downscales oversized
// images, and re-encodes as opaque JPEG. Returns the JPEG bytes and the final
// pixel dimensions.
func Flatten(imageData []byte) ([]byte, int, int, error) {
	img, err := decode(imageData, "")
	if err != nil {
		return nil, 0, 0, err
	}

	bounds := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, bounds.Min, draw.Over)

	w, h := flat.Bounds().Dx(), flat.Bounds().Dy()
	if w > maxEmbedPixels || h > maxEmbedPixels {
		scale := float64(maxEmbedPixels) / float64(max(w, h))
		tw, th := int(float64(w)*scale), int(float64(h)*scale)
		scaled := image.NewRGBA(image.Rect(0, 0, tw, th))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), flat, flat.Bounds(), xdraw.Src, nil)
		flat = scaled
		w, h = tw, th
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: 85}); err != nil {
		return nil, 0, 0, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), w, h, nil
}

// decode decodes standard formats plus HEIC/HEIF, which Go's image package
// doesn't support.
func decode(imageData []byte, mimeType string) (image.Image, error) {
	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err := heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	}
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		if strings.Contains(err.Error(), "unknown format") || strings.Contains(err.Error(), "unsupported") {
			return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF. Error: %w", err)
		}
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// isHEICFormat checks if the image data is in HEIC/HEIF format.
// HEIC files carry an ftyp box with a HEIC-related brand at offset 4.
func isHEICFormat(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	if string(data[4:8]) == "ftyp" {
		brand := string(data[8:12])
		if brand == "heic" || brand == "heif" || brand == "mif1" || brand == "msf1" {
			return true
		}
	}
	return false
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format.
func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return mimeType == "image/heic" || mimeType == "image/heif" ||
		strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}
