package constants

import "strings"

// AllowedExtensions holds the image extensions accepted for price-tag scans.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"bmp":  {},
	"heic": {},
	"heif": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without the dot) is a supported image type.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// IsHEICExt reports whether ext needs converting before tesseract can read it.
func IsHEICExt(ext string) bool {
	switch NormalizeExt(ext) {
	case "heic", "heif", "heics", "heifs":
		return true
	}
	return false
}

// MimeTypeForExt maps an image extension to the content type sent upstream.
// Unknown extensions fall back to image/jpeg, which is what the camera produces.
func MimeTypeForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "png":
		return "image/png"
	case "tif", "tiff":
		return "image/tiff"
	case "bmp":
		return "image/bmp"
	case "heic", "heif":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}
