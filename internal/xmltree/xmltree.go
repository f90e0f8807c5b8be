// Package xmltree converts XML response bodies into mws.Node trees.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/mws/pkg/mws"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrMalformedXML is returned when a body cannot be parsed.
var ErrMalformedXML = errors.New("malformed XML response")

// IsXML reports whether a Content-Type denotes an XML body.
func IsXML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "xml")
}

// Parse normalizes an XML document. The root element is dropped and its
// children form the top-level mapping. Repeated siblings collapse into a
// sequence, leaves become scalars, attributes are kept on the node and
// namespace prefixes are discarded.
func Parse(body []byte) (*mws.Node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.CharsetReader = charsetReader

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no root element", ErrMalformedXML)
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedXML, err)
		}

		if start, ok := token.(xml.StartElement); ok {
			root, err := parseElement(decoder, start)
			if err != nil {
				return nil, err
			}

			if root.Kind != mws.KindMapping {
				mapping := mws.NewMapping()
				mapping.Attrs = root.Attrs
				mapping.Text = root.Text

				return mapping, nil
			}

			return root, nil
		}
	}
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}

	return enc.NewDecoder().Reader(input), nil
}

func parseElement(decoder *xml.Decoder, start xml.StartElement) (*mws.Node, error) {
	var (
		children *mws.Node
		text     strings.Builder
	)

	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedXML, err)
		}

		switch tok := token.(type) {
		case xml.StartElement:
			child, err := parseElement(decoder, tok)
			if err != nil {
				return nil, err
			}

			if children == nil {
				children = mws.NewMapping()
			}

			addChild(children, tok.Name.Local, child)
		case xml.CharData:
			text.Write(tok)
		case xml.EndElement:
			return build(start, children, text.String()), nil
		}
	}
}

func addChild(parent *mws.Node, key string, child *mws.Node) {
	existing := parent.Get(key)

	switch {
	case existing == nil:
		parent.Set(key, child)
	case existing.Kind == mws.KindSequence:
		existing.Append(child)
	default:
		parent.Set(key, mws.NewSequence(existing, child))
	}
}

func build(start xml.StartElement, children *mws.Node, text string) *mws.Node {
	attrs := attributes(start.Attr)
	trimmed := strings.TrimSpace(text)

	if children != nil {
		children.Attrs = attrs
		children.Text = trimmed

		return children
	}

	if trimmed == "" {
		empty := mws.NewMapping()
		empty.Attrs = attrs

		return empty
	}

	leaf := mws.NewScalar(text)
	leaf.Attrs = attrs

	return leaf
}

func attributes(attrs []xml.Attr) map[string]string {
	var out map[string]string

	for _, attr := range attrs {
		if attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns") {
			continue
		}

		if out == nil {
			out = make(map[string]string, len(attrs))
		}

		out[attr.Name.Local] = attr.Value
	}

	return out
}

// ErrorResponse is the service error envelope.
type ErrorResponse struct {
	Type      string
	Code      string
	Message   string
	RequestID string
}

// ParseError extracts the error envelope from a body. It returns nil when the
// body is not an error document.
func ParseError(body []byte) *ErrorResponse {
	tree, err := Parse(body)
	if err != nil {
		return nil
	}

	errNode := mws.AsList(tree.Get("Error"))
	if len(errNode) == 0 || errNode[0] == nil {
		return nil
	}

	first := errNode[0]

	requestID := tree.Value("RequestID")
	if requestID == "" {
		requestID = tree.Value("RequestId")
	}

	return &ErrorResponse{
		Type:      first.Value("Type"),
		Code:      first.Value("Code"),
		Message:   first.Value("Message"),
		RequestID: requestID,
	}
}

// RequestID finds the request id of a successful response.
func RequestID(tree *mws.Node) string {
	return tree.Value("ResponseMetadata", "RequestId")
}
