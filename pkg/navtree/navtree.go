// Package navtree reads navigation trees from the formats documentation
// generators emit.
package navtree

import (
	"io"
	"path"
	"strings"

	"github.com/foomo/navserver/nav"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format of a navigation source
type Format string

const (
	FormatJS       Format = "js"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

var ErrUnknownFormat = errors.New("unknown format")

// Formats all supported source formats
func Formats() []Format {
	return []Format{FormatJS, FormatJSON, FormatYAML, FormatMarkdown, FormatHTML}
}

// DetectFormat guesses the format from a file name or URL
func DetectFormat(filename string) (Format, error) {
	if i := strings.IndexAny(filename, "?#"); i >= 0 {
		filename = filename[:i]
	}
	switch strings.ToLower(path.Ext(filename)) {
	case ".js":
		return FormatJS, nil
	case ".json":
		return FormatJSON, nil
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".html", ".htm":
		return FormatHTML, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "can not detect format of %q", filename)
}

// TreeName derives a tree name from a file name, "docs/tutorials.js" => "tutorials"
func TreeName(filename string) string {
	base := path.Base(filename)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Parse reads all trees of a source. JS sources name their trees, the other
// formats use name.
func Parse(format Format, name string, r io.Reader) ([]*nav.Tree, error) {
	switch format {
	case FormatJS:
		return ParseJS(r)
	case FormatJSON:
		return single(ParseJSON(name, r))
	case FormatYAML:
		return single(ParseYAML(name, r))
	case FormatMarkdown:
		return single(ParseMarkdown(name, r))
	case FormatHTML:
		return single(ParseHTML(name, r))
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
}

func single(tree *nav.Tree, err error) ([]*nav.Tree, error) {
	if err != nil {
		return nil, err
	}
	return []*nav.Tree{tree}, nil
}
