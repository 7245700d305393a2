package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/openviglet/sitesearch/internal/db"
)

// DecodeDocuments reads a JSON array of flat objects. Field order is kept and
// array values become repeated fields.
func DecodeDocuments(r io.Reader) ([]db.Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, fmt.Errorf("documents must be a JSON array: %w", err)
	}
	var docs []db.Document
	for dec.More() {
		d, err := decodeDocument(dec)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", len(docs), err)
		}
		docs = append(docs, d)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return docs, nil
}

func decodeDocument(dec *json.Decoder) (db.Document, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return db.Document{}, err
	}
	var d db.Document
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return db.Document{}, err
		}
		name, ok := tok.(string)
		if !ok {
			return db.Document{}, fmt.Errorf("unexpected token %v", tok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return db.Document{}, fmt.Errorf("field %s: %w", name, err)
		}
		if list, ok := raw.([]any); ok {
			for _, v := range list {
				d.Fields = append(d.Fields, db.DocField{Name: name, Value: scalar(v)})
			}
		} else {
			d.Fields = append(d.Fields, db.DocField{Name: name, Value: scalar(raw)})
		}
		if name == "id" && raw != nil {
			d.ID = fmt.Sprint(raw)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return db.Document{}, err
	}
	return d, nil
}

// scalar turns json.Number into int64 or float64.
func scalar(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("expected %q, got end of input", want)
	}
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
