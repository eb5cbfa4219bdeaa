package render

import (
	"io"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/bubblechart/pkg/pack"
	"github.com/matzehuels/bubblechart/pkg/widget"
)

// Document is the JSON form of a rendered snapshot.
type Document struct {
	ElementID string         `json:"elementId"`
	Version   uint64         `json:"version"`
	Selected  string         `json:"selected,omitempty"`
	Active    bool           `json:"active"`
	Hovered   string         `json:"hovered,omitempty"`
	Config    widget.Config  `json:"config"`
	Circles   []CircleRecord `json:"circles"`
}

// CircleRecord is one positioned leaf with its resolved colors.
type CircleRecord struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	R      float64 `json:"r"`
	Weight float64 `json:"value"`
	Fill   string  `json:"fill"`
	Label  string  `json:"labelColor"`
	Depth  int     `json:"depth"`
}

// NewDocument builds the JSON document for snap.
func NewDocument(snap widget.Snapshot) Document {
	return newDocument(snap, Circles(snap))
}

func newDocument(snap widget.Snapshot, circles []pack.Circle) Document {
	_, active := snap.Active()
	doc := Document{
		ElementID: snap.ElementID,
		Version:   snap.Version,
		Selected:  snap.Selected,
		Active:    active,
		Hovered:   snap.Hovered,
		Config:    snap.Config(),
		Circles:   make([]CircleRecord, 0, len(circles)),
	}
	for _, c := range circles {
		doc.Circles = append(doc.Circles, CircleRecord{
			Name:   c.Node.Name,
			X:      c.X,
			Y:      c.Y,
			R:      c.R,
			Weight: c.Node.Weight,
			Fill:   snap.Fill(c.Node),
			Label:  snap.Label(c.Node),
			Depth:  c.Depth,
		})
	}
	return doc
}

// JSON writes the document for snap to w.
func JSON(w io.Writer, snap widget.Snapshot) error {
	return writeJSON(w, snap, Circles(snap))
}

func writeJSON(w io.Writer, snap widget.Snapshot, circles []pack.Circle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newDocument(snap, circles))
}
