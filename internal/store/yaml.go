package store

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/planner-go/internal/plan"
)

// EncodeYAML renders the document as block-style YAML with the same keys
// and phase order as the JSON form.
func EncodeYAML(p *plan.Project) ([]byte, error) {
	data, err := Encode(p)
	if err != nil {
		return nil, err
	}

	// JSON is valid YAML; decoding into a node keeps mapping order.
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("convert project to yaml: %w", err)
	}
	resetStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}
