package artifact

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zbiljic/blueprint/pkg/llm"
)

// ErrorDetail describes why an artifact was not generated.
type ErrorDetail struct {
	Kind    llm.ErrorKind `json:"kind" yaml:"kind"`
	Message string        `json:"message" yaml:"message"`
}

// NewErrorDetail classifies err.
func NewErrorDetail(err error) ErrorDetail {
	return ErrorDetail{Kind: llm.Classify(err), Message: err.Error()}
}

// DocumentField is one artifact of a Document. Text is nil when the artifact
// failed.
type DocumentField struct {
	Field string
	Text  *string
}

// Document is the serialized form of a Batch:
//
//	{"id": "...", "prompt": "...", "datasetStructure": null, "responseFormat": "...",
//	 "errors": {"datasetStructure": {"kind": "...", "message": "..."}}}
//
// Fields keep the order of the batch.
type Document struct {
	ID     string
	Fields []DocumentField
	Errors map[string]ErrorDetail
}

// NewDocument converts b.
func NewDocument(b *Batch) Document {
	d := Document{ID: b.ID}
	for _, o := range b.Outcomes {
		f := DocumentField{Field: o.Kind.Field()}
		if o.Err != nil {
			if d.Errors == nil {
				d.Errors = map[string]ErrorDetail{}
			}
			d.Errors[f.Field] = NewErrorDetail(o.Err)
		} else {
			text := o.Text
			f.Text = &text
		}
		d.Fields = append(d.Fields, f)
	}
	return d
}

func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	writePair := func(key string, value any) error {
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	buf.WriteByte('{')
	if err := writePair("id", d.ID); err != nil {
		return nil, err
	}
	for _, f := range d.Fields {
		if err := writePair(f.Field, f.Text); err != nil {
			return nil, err
		}
	}
	if len(d.Errors) > 0 {
		if err := writePair("errors", d.Errors); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (d Document) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	add := func(key string, value *yaml.Node) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			value)
	}

	add("id", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: d.ID})
	for _, f := range d.Fields {
		if f.Text == nil {
			add(f.Field, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"})
			continue
		}
		v := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: *f.Text}
		if strings.Contains(*f.Text, "\n") {
			v.Style = yaml.LiteralStyle
		}
		add(f.Field, v)
	}
	if len(d.Errors) > 0 {
		errs := &yaml.Node{}
		if err := errs.Encode(d.Errors); err != nil {
			return nil, err
		}
		add("errors", errs)
	}

	return node, nil
}
