package shared

import "strings"

// AudioExt is the extension given to every downloaded audio file.
const AudioExt = ".aac"

var reservedReplacer = strings.NewReplacer(
	`\`, " ",
	"/", " ",
	"?", " ",
	"*", " ",
	">", " ",
	"<", " ",
	"|", " ",
	":", " ",
)

// SanitizeFilename replaces each filesystem-reserved character with a space.
//
// The result contains no reserved characters, so applying it twice is a no-op.
func SanitizeFilename(name string) string {
	return reservedReplacer.Replace(name)
}

// BuildFilename returns the sanitized "{title} - {part} - {author}" base name, without extension.
func BuildFilename(title, part, author string) string {
	return SanitizeFilename(title + " - " + part + " - " + author)
}
