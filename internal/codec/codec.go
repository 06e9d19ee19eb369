// Package codec contains the pure naming and encoding helpers shared by the
// push pipeline: repository path construction, language to file extension
// mapping, and the transport encoding used by the GitHub Contents API.
package codec

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// forbidden holds the characters that must never appear in a repository file name.
const forbidden = `\/:*?"<>|`

// extensionByLanguage maps lowercased language names to file extensions.
var extensionByLanguage = map[string]string{
	"python":     ".py",
	"python3":    ".py",
	"java":       ".java",
	"javascript": ".js",
	"typescript": ".ts",
	"c++":        ".cpp",
	"cpp":        ".cpp",
	"c":          ".c",
	"go":         ".go",
	"golang":     ".go",
	"rust":       ".rs",
	"kotlin":     ".kt",
	"swift":      ".swift",
	"ruby":       ".rb",
	"php":        ".php",
	"csharp":     ".cs",
	"c#":         ".cs",
	"scala":      ".scala",
	"mysql":      ".sql",
	"mssql":      ".sql",
	"oraclesql":  ".sql",
	"postgresql": ".sql",
	"bash":       ".sh",
	"shell":      ".sh",
}

// SanitizeTitle strips forbidden filename characters from a problem title,
// collapses whitespace runs to a single space, and falls back to "Untitled"
// when nothing printable remains.
func SanitizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastSpace := false
	for _, r := range strings.TrimSpace(title) {
		if strings.ContainsRune(forbidden, r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}

	sanitized := strings.TrimSpace(b.String())
	if sanitized == "" {
		return "Untitled"
	}

	return sanitized
}

// ExtensionForLanguage returns the file extension for a language name. The
// lookup is case-insensitive; unknown languages map to ".txt".
func ExtensionForLanguage(language string) string {
	if ext, ok := extensionByLanguage[strings.ToLower(strings.TrimSpace(language))]; ok {
		return ext
	}

	return ".txt"
}

// BuildFilePath computes the canonical repository path for a solution file.
// Equal inputs always produce equal paths.
func BuildFilePath(rootFolder, difficulty, title, language string) string {
	root := strings.Trim(rootFolder, "/")
	if difficulty == "" {
		difficulty = "Unknown"
	}

	return fmt.Sprintf("%s/%s/%s%s", root, difficulty, SanitizeTitle(title), ExtensionForLanguage(language))
}

// EncodeContent encodes a UTF-8 string for the Contents API transport.
func EncodeContent(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// DecodeContent reverses EncodeContent. The API returns payloads with embedded
// newlines, so incidental whitespace is removed before decoding.
func DecodeContent(encoded string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(stripWhitespace(encoded))
	if err != nil {
		return "", fmt.Errorf("failed to decode content: %w", err)
	}

	return string(decoded), nil
}

// ContentsEqual reports whether two transport-encoded blobs carry identical
// content, ignoring whitespace the transport may have introduced.
func ContentsEqual(a, b string) bool {
	return stripWhitespace(a) == stripWhitespace(b)
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// FormatTimestamp renders a timestamp for commit metadata and ledger entries.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// CommitInfo carries the metadata embedded into a commit message.
type CommitInfo struct {
	Title      string
	Language   string
	ProblemURL string
	Runtime    string
	Memory     string
	AcceptedAt string
}

// BuildCommitMessage renders the commit message for a pushed solution. Field
// order is stable; empty optional fields are omitted.
func BuildCommitMessage(info CommitInfo) string {
	message := fmt.Sprintf("feat: %s (%s) - Accepted", info.Title, info.Language)

	var details []string
	if info.ProblemURL != "" {
		details = append(details, "Problem: "+info.ProblemURL)
	}
	if info.Runtime != "" {
		details = append(details, "Runtime: "+info.Runtime)
	}
	if info.Memory != "" {
		details = append(details, "Memory: "+info.Memory)
	}
	if info.AcceptedAt != "" {
		details = append(details, "Accepted at: "+info.AcceptedAt)
	}

	if len(details) > 0 {
		message += "\n\n" + strings.Join(details, "\n")
	}

	return message
}
