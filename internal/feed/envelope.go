// Package feed encodes the documents uploaded with SubmitFeed and decodes the
// tab-separated reports returned by GetReport.
package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/pkg/mws"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// EnvelopeRoot is the root element of XML feeds.
const EnvelopeRoot = "AmazonEnvelope"

// Message types of the XML feeds.
const (
	MessageTypeProduct   = "Product"
	MessageTypeInventory = "Inventory"
	MessageTypePrice     = "Price"
)

var (
	ErrNilDocument  = errors.New("feed document is nil")
	ErrInvalidRoot  = errors.New("feed document must be a mapping")
	ErrEmptyMessage = errors.New("feed has no messages")
)

// Envelope wraps messages in the envelope expected by the XML feeds. Messages
// are numbered from 1 in order.
func Envelope(merchantID, messageType string, messages []*mws.Node) *mws.Node {
	header := mws.NewMapping().
		Set("DocumentVersion", mws.NewScalar(constants.FeedDocumentVersion)).
		Set("MerchantIdentifier", mws.NewScalar(merchantID))

	numbered := make([]*mws.Node, len(messages))
	for i, message := range messages {
		numbered[i] = withMessageID(message, i+1)
	}

	return mws.NewMapping().
		Set("Header", header).
		Set("MessageType", mws.NewScalar(messageType)).
		Set("Message", mws.NewSequence(numbered...))
}

func withMessageID(message *mws.Node, id int) *mws.Node {
	out := mws.NewMapping().Set("MessageID", mws.NewScalar(strconv.Itoa(id)))

	for _, key := range message.Keys() {
		if key == "MessageID" {
			continue
		}

		out.Set(key, message.Get(key))
	}

	return out
}

// EncodeXML renders doc as an ISO-8859-1 XML document under root. Sequences
// become repeated elements and node attributes become XML attributes.
// Characters outside Latin-1 are written as numeric character references.
func EncodeXML(root string, doc *mws.Node) ([]byte, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	if doc.Kind != mws.KindMapping {
		return nil, ErrInvalidRoot
	}

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="iso-8859-1"?>` + "\n")

	writer := latin1XMLWriter(&buf)
	enc := xml.NewEncoder(writer)

	err := encodeElement(enc, root, doc)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", root, err)
	}

	err = enc.Flush()
	if err != nil {
		return nil, fmt.Errorf("flushing %s: %w", root, err)
	}

	err = closeWriter(writer)
	if err != nil {
		return nil, fmt.Errorf("flushing %s: %w", root, err)
	}

	return buf.Bytes(), nil
}

// EncodeEnvelope builds and renders an XML feed in one step.
func EncodeEnvelope(merchantID, messageType string, messages []*mws.Node) ([]byte, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyMessage
	}

	return EncodeXML(EnvelopeRoot, Envelope(merchantID, messageType, messages))
}

// latin1Writer transcodes to ISO-8859-1, substituting characters it cannot
// represent. Used for the tab-separated flat files.
func latin1Writer(w io.Writer) io.Writer {
	return encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()).Writer(w)
}

// latin1XMLWriter transcodes to ISO-8859-1 and escapes the rest as &#NNNN;
// references, which stay valid XML.
func latin1XMLWriter(w io.Writer) io.Writer {
	return encoding.HTMLEscapeUnsupported(charmap.ISO8859_1.NewEncoder()).Writer(w)
}

// closeWriter flushes whatever the transcoder still holds.
func closeWriter(w io.Writer) error {
	if closer, ok := w.(io.Closer); ok {
		return closer.Close() //nolint:wrapcheck // callers wrap
	}

	return nil
}

func encodeElement(enc *xml.Encoder, name string, node *mws.Node) error {
	if node.Kind == mws.KindSequence {
		for _, item := range node.Items() {
			err := encodeElement(enc, name, item)
			if err != nil {
				return err
			}
		}

		return nil
	}

	start := xml.StartElement{Name: xml.Name{Local: name}, Attr: attributes(node)}

	err := enc.EncodeToken(start)
	if err != nil {
		return err //nolint:wrapcheck // wrapped once by EncodeXML
	}

	if node.Text != "" {
		err = enc.EncodeToken(xml.CharData(node.Text))
		if err != nil {
			return err //nolint:wrapcheck // wrapped once by EncodeXML
		}
	}

	if node.Kind == mws.KindMapping {
		for _, key := range node.Keys() {
			err = encodeElement(enc, key, node.Get(key))
			if err != nil {
				return err
			}
		}
	}

	return enc.EncodeToken(start.End()) //nolint:wrapcheck // wrapped once by EncodeXML
}

func attributes(node *mws.Node) []xml.Attr {
	if len(node.Attrs) == 0 {
		return nil
	}

	names := make([]string, 0, len(node.Attrs))
	for name := range node.Attrs {
		names = append(names, name)
	}

	sort.Strings(names)

	attrs := make([]xml.Attr, len(names))
	for i, name := range names {
		attrs[i] = xml.Attr{Name: xml.Name{Local: name}, Value: node.Attrs[name]}
	}

	return attrs
}
