package pattern

import (
	"fmt"

	"github.com/pkg/errors"
)

// Count is the number of patterns in the catalogue.
const Count = 50

// ErrUnknownPattern is returned for ids outside 1..Count.
var ErrUnknownPattern = errors.New("unknown pattern")

// Pattern is the scoring-relevant metadata of one rangoli pattern. Geometry
// and rendering live with the drawing surface.
type Pattern struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Difficulty    int    `json:"difficulty"`
	SymmetryAxes  int    `json:"symmetryAxes"`
	Layers        int    `json:"layers"`
	CulturalNote  string `json:"culturalNote"`
	RequiredOrder []int  `json:"requiredStrokeOrder,omitempty"`
}

// HasRequiredOrder reports whether stroke order is scored for the pattern.
func (p Pattern) HasRequiredOrder() bool {
	return len(p.RequiredOrder) > 0
}

type family struct {
	maxID      int
	name       string
	difficulty int
	axes       int
	note       string
}

// Families by id range. The last family's axes alternate with id parity.
var families = []family{
	{5, "Simple Flower", 1, 4, "Foundational 4-petal motif common in daily threshold designs."},
	{15, "Hexa Star", 2, 6, "Six-pointed star representing balance in nature."},
	{25, "Lotus Mandala", 3, 8, "The Lotus (Padma) symbolizes purity and spiritual awakening."},
	{35, "Sun Ray", 4, 10, "Dedicated to Surya, the Sun God, for vitality."},
	{Count, "Royal Peacock", 5, 12, "Intricate peacock feather motifs (Mayura) for prosperity."},
}

// Hand-drawn patterns that do not follow their family.
var special = map[int]Pattern{
	1: {Name: "Simple Flower", Difficulty: 1, SymmetryAxes: 4, Layers: 2,
		CulturalNote: "A basic 4-petaled flower, often drawn by beginners in Southern India."},
	2: {Name: "Dotted Square", Difficulty: 1, SymmetryAxes: 4, Layers: 1,
		CulturalNote: "Grid-based designs (Kolam) start with a pattern of dots."},
	3: {Name: "Six-Point Star", Difficulty: 2, SymmetryAxes: 6, Layers: 2,
		CulturalNote: "Geometric harmony representing the balance of elements."},
	16: {Name: "Lotus Mandala", Difficulty: 3, SymmetryAxes: 8, Layers: 2,
		CulturalNote: "A complex lotus motif for festivals."},
	36: {Name: "Peacock Bloom", Difficulty: 5, SymmetryAxes: 12, Layers: 3,
		CulturalNote: "The national bird of India, representing grace."},
}

var catalogue = build()

func build() []Pattern {
	out := make([]Pattern, 0, Count)
	for id := 1; id <= Count; id++ {
		out = append(out, create(id))
	}
	return out
}

func create(id int) Pattern {
	var p Pattern
	if s, ok := special[id]; ok {
		p = s
	} else {
		f := families[len(families)-1]
		for _, candidate := range families {
			if id <= candidate.maxID {
				f = candidate
				break
			}
		}
		axes := f.axes
		if f.difficulty == 5 {
			axes += (id % 2) * 4
		}
		p = Pattern{
			Name:         fmt.Sprintf("%s Var. %d", f.name, id),
			Difficulty:   f.difficulty,
			SymmetryAxes: axes,
			Layers:       2 + id/10,
			CulturalNote: f.note,
		}
	}
	p.ID = id
	if p.Layers > 1 {
		p.RequiredOrder = make([]int, p.Layers)
		for i := range p.RequiredOrder {
			p.RequiredOrder[i] = i + 1
		}
	}
	return p
}

// All returns the catalogue in id order.
func All() []Pattern {
	out := make([]Pattern, len(catalogue))
	for i, p := range catalogue {
		out[i] = p.clone()
	}
	return out
}

func (p Pattern) clone() Pattern {
	p.RequiredOrder = append([]int(nil), p.RequiredOrder...)
	return p
}

// Get returns one pattern by id.
func Get(id int) (Pattern, error) {
	if id < 1 || id > Count {
		return Pattern{}, errors.Wrapf(ErrUnknownPattern, "id %d", id)
	}
	return catalogue[id-1].clone(), nil
}
