package constants

import "strings"

// DocumentKind is the declared media kind of an uploaded certificate.
type DocumentKind string

const (
	PDF   DocumentKind = "PDF"
	IMAGE DocumentKind = "IMAGE"
)

// AllowedExtensions holds the certificate file extensions accepted on upload.
var AllowedExtensions = map[string]DocumentKind{
	"pdf":  PDF,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"png":  IMAGE,
	"tif":  IMAGE,
	"tiff": IMAGE,
	"bmp":  IMAGE,
	"webp": IMAGE,
	"heic": IMAGE,
	"heif": IMAGE,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToKind returns "" for extensions we do not accept.
func MapExtToKind(ext string) DocumentKind {
	return AllowedExtensions[NormalizeExt(ext)]
}

func IsHEICExt(ext string) bool {
	switch NormalizeExt(ext) {
	case "heic", "heif":
		return true
	}
	return false
}
