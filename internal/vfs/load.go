package vfs

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/vfsh/api"
)

// Format names a source description encoding.
type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// rootElement is the required name of the wrapping element.
const rootElement = "vfs"

var rootExpr = jp.MustParseString("$." + rootElement)

// FormatFromPath picks the encoding from a file extension; XML is the default.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatXML
	}
}

// LoadFile reads a source description from the host and builds the tree.
// This is the only host filesystem access of the package.
func LoadFile(path string) (*Tree, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vfs source %s: %w", path, err)
	}
	return Load(src, FormatFromPath(path))
}

// Load parses src and builds the tree. Malformed input and a wrong wrapping
// element yield a *ParseError.
func Load(src []byte, format Format) (*Tree, error) {
	var (
		root *api.Root
		err  error
	)
	switch format {
	case FormatXML:
		root, err = parseXML(src)
	case FormatJSON:
		root, err = parseJSON(src)
	case FormatYAML:
		root, err = parseYAML(src)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, &ParseError{Format: format, Err: err}
	}

	name := root.Name
	if name == "" {
		name = DefaultName
	}
	tree := &Tree{
		Name:   name,
		Digest: Digest(src),
		Format: format,
		Root:   NewDir(""),
	}
	addEntries(tree.Root, root.Entries)
	return tree, nil
}

// addEntries attaches entries to dir. Unknown kinds and nameless entries are
// skipped; a repeated name replaces the earlier entry.
func addEntries(dir *Node, entries []api.Entry) {
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		switch e.Type {
		case api.KindDir:
			child := NewDir(e.Name)
			addEntries(child, e.Entries)
			dir.Children[e.Name] = child
		case api.KindFile:
			dir.Children[e.Name] = NewFile(e.Name, []byte(strings.TrimSpace(e.Content)))
		}
	}
}

// xmlEntry captures any element with its name attribute, its leading text
// and its child elements.
type xmlEntry struct {
	XMLName  xml.Name
	Name     string
	Text     string // character data before the first child element
	Children []xmlEntry
}

func (e *xmlEntry) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	e.XMLName = start.Name
	for _, a := range start.Attr {
		if a.Name.Local == "name" {
			e.Name = a.Value
		}
	}

	var text strings.Builder
	leading := true
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			leading = false
			var child xmlEntry
			if err := child.UnmarshalXML(dec, t); err != nil {
				return err
			}
			e.Children = append(e.Children, child)
		case xml.CharData:
			if leading {
				text.Write(t)
			}
		case xml.EndElement:
			e.Text = text.String()
			return nil
		}
	}
}

func parseXML(src []byte) (*api.Root, error) {
	dec := xml.NewDecoder(bytes.NewReader(src))
	var doc xmlEntry
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc.XMLName.Local != rootElement {
		return nil, fmt.Errorf("root element must be <%s>, got <%s>", rootElement, doc.XMLName.Local)
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	return &api.Root{Name: doc.Name, Entries: xmlToEntries(doc.Children)}, nil
}

// expectEOF rejects anything but whitespace, comments and processing
// instructions after the root element.
func expectEOF(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return errors.New("text after root element")
			}
		case xml.Comment, xml.ProcInst:
		default:
			return errors.New("content after root element")
		}
	}
}

func xmlToEntries(elems []xmlEntry) []api.Entry {
	entries := make([]api.Entry, 0, len(elems))
	for _, el := range elems {
		entries = append(entries, api.Entry{
			Type:    el.XMLName.Local,
			Name:    el.Name,
			Content: el.Text,
			Entries: xmlToEntries(el.Children),
		})
	}
	return entries
}

func parseJSON(src []byte) (*api.Root, error) {
	doc, err := oj.Parse(src)
	if err != nil {
		return nil, err
	}
	obj, ok := rootExpr.First(doc).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("missing %q object", rootElement)
	}
	name, _ := obj["name"].(string)
	return &api.Root{Name: name, Entries: jsonToEntries(obj["entries"])}, nil
}

// jsonToEntries converts generic parsed values; values of the wrong shape are
// dropped the same way unknown XML elements are.
func jsonToEntries(v any) []api.Entry {
	list, _ := v.([]any)
	entries := make([]api.Entry, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		e := api.Entry{}
		e.Type, _ = m["type"].(string)
		e.Name, _ = m["name"].(string)
		e.Content, _ = m["content"].(string)
		e.Entries = jsonToEntries(m["entries"])
		entries = append(entries, e)
	}
	return entries
}

func parseYAML(src []byte) (*api.Root, error) {
	var doc api.Document
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, err
	}
	if doc.VFS == nil {
		return nil, fmt.Errorf("missing %q mapping", rootElement)
	}
	return doc.VFS, nil
}
