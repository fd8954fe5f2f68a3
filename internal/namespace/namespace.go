// Package namespace extracts declared type names from Concerto model source
// and synthesizes import statements that resolve them against the model
// registry.
package namespace

import (
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultRegistryURL is the registry base used when none is configured.
const DefaultRegistryURL = "https://models.accordproject.org"

// declRe only recognizes asset, participant, enum and abstract asset
// declarations. concept, transaction, event and map are not extracted.
var declRe = regexp.MustCompile(`\b(?:abstract\s+asset|asset|participant|enum)\s+(\w+)`)

// importLineRe matches a whole import line.
var importLineRe = regexp.MustCompile(`(?m)^[ \t]*import .*(?:\r?\n)?`)

// File is a model file to map.
type File struct {
	FileName string
	Content  string
}

// FileNames pairs a file with the names declared in it.
type FileNames struct {
	FileName string
	Names    []string
}

// Extract returns every declared name in content in order of appearance.
// Duplicates are kept.
func Extract(content string) []string {
	matches := declRe.FindAllStringSubmatch(content, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// Map extracts names for each file, keeping input order.
func Map(files []File) []FileNames {
	out := make([]FileNames, 0, len(files))
	for _, f := range files {
		out = append(out, FileNames{FileName: f.FileName, Names: Extract(f.Content)})
	}
	return out
}

// Imports renders one import line per file that declares at least one name.
// An empty registryURL uses DefaultRegistryURL.
func Imports(files []File, registryURL string) string {
	if registryURL == "" {
		registryURL = DefaultRegistryURL
	}
	registryURL = strings.TrimRight(registryURL, "/")

	var b strings.Builder
	for _, fn := range Map(files) {
		if line := importLine(fn, registryURL); line != "" {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func importLine(fn FileNames, registryURL string) string {
	base := strings.TrimSuffix(fn.FileName, filepath.Ext(fn.FileName))
	from := registryURL + "/accordproject/" + fn.FileName
	switch len(fn.Names) {
	case 0:
		return ""
	case 1:
		return "import org.accordproject." + base + "." + fn.Names[0] + " from " + from
	default:
		return "import org.accordproject." + base + ".{ " + strings.Join(fn.Names, ", ") + " } from " + from
	}
}

// StripImports removes every import line from model source.
func StripImports(content string) string {
	return importLineRe.ReplaceAllString(content, "")
}
