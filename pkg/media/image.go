// Package media rewrites storefront CDN image URLs between size variants.
package media

import (
	"regexp"
	"strings"
)

// MasterSize asks for the original upload without a size suffix.
const MasterSize = "master"

var (
	sizePattern      = regexp.MustCompile(`.+_((?:pico|icon|thumb|small|compact|medium|large|grande)|\d{1,4}x\d{0,4}|x\d{1,4})[_.@]`)
	extensionPattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|gif|png|bmp|bitmap|tiff|tif)(\?v=\d+)?$`)
	protocolPattern  = regexp.MustCompile(`http(s)?:`)
)

// ImageSize returns the size token embedded in src, e.g. "medium" for
// "shirt_medium.jpg" or "300x" for "shirt_300x.png". It returns "" when the
// URL carries no size.
func ImageSize(src string) string {
	match := sizePattern.FindStringSubmatch(src)
	if match == nil {
		return ""
	}
	return match[1]
}

// SizedImageURL inserts "_<size>" before the file extension and strips the
// protocol. An empty size returns src untouched and MasterSize only strips
// the protocol. The second result is false when src is not a recognised
// image URL.
func SizedImageURL(src, size string) (string, bool) {
	if size == "" {
		return src, true
	}
	if size == MasterSize {
		return RemoveProtocol(src), true
	}

	loc := extensionPattern.FindStringIndex(src)
	if loc == nil {
		return "", false
	}
	suffix := src[loc[0]:loc[1]]
	prefix := src[:strings.Index(src, suffix)]
	return RemoveProtocol(prefix + "_" + size + suffix), true
}

// RemoveProtocol turns "https://cdn/..." into "//cdn/...".
func RemoveProtocol(path string) string {
	loc := protocolPattern.FindStringIndex(path)
	if loc == nil {
		return path
	}
	return path[:loc[0]] + path[loc[1]:]
}

// Preload returns the sized URL of every image, skipping those that are not
// recognised image URLs. Hosts use the list to warm their image cache.
func Preload(srcs []string, size string) []string {
	out := make([]string, 0, len(srcs))
	for _, src := range srcs {
		if sized, ok := SizedImageURL(src, size); ok {
			out = append(out, sized)
		}
	}
	return out
}
