package tree

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/matzehuels/bubblechart/pkg/errors"
)

type jsonNode struct {
	Name       string      `json:"name"`
	Color      string      `json:"color,omitempty"`
	LabelColor string      `json:"labelColor,omitempty"`
	Loc        *float64    `json:"loc,omitempty"`
	Value      *float64    `json:"value,omitempty"`
	Children   []*jsonNode `json:"children,omitempty"`
}

// ReadJSON decodes a tree from r.
//
// ReadJSON fails on malformed JSON and on an empty document; it does not
// check the structural invariants, which is the job of [Validate]. The
// returned tree is independent of r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Node, error) {
	var data jsonNode
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode tree")
	}
	if data.Name == "" && len(data.Children) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTree, "tree has no root name and no children")
	}
	return fromJSON(&data), nil
}

func fromJSON(j *jsonNode) *Node {
	n := &Node{Name: j.Name, Color: j.Color, LabelColor: j.LabelColor}
	switch {
	case j.Loc != nil:
		n.Weight = *j.Loc
	case j.Value != nil:
		n.Weight = *j.Value
	}
	for _, c := range j.Children {
		if c == nil {
			continue
		}
		n.Children = append(n.Children, fromJSON(c))
	}
	return n
}

// ImportJSON reads a tree from the JSON file at path.
func ImportJSON(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON encodes root as indented JSON. The output can be read back
// with [ReadJSON].
func WriteJSON(w io.Writer, root *Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toJSON(root)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func toJSON(n *Node) *jsonNode {
	j := &jsonNode{Name: n.Name, Color: n.Color, LabelColor: n.LabelColor}
	if n.IsLeaf() || n.Weight != 0 {
		w := n.Weight
		j.Loc = &w
	}
	for _, c := range n.Children {
		j.Children = append(j.Children, toJSON(c))
	}
	return j
}

// ExportJSON writes root to a JSON file at path.
func ExportJSON(path string, root *Node) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(f, root)
}
