package character

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
	"git.home.luguber.info/inful/framedoc/internal/logfields"
)

// RootKey is the required top-level table of a character file.
const RootKey = "Character"

var overviewFields = map[string]bool{
	"Name": true, "Description": true, "IconPath": true, "PortraitPath": true, "Type": true,
	"Health": true, "MoveSpeed": true, "UniqueMovement": true, "Stage": true, "Reversals": true,
}

type overview struct {
	Name           string   `toml:"Name"`
	Description    string   `toml:"Description"`
	IconPath       string   `toml:"IconPath"`
	PortraitPath   string   `toml:"PortraitPath"`
	Type           string   `toml:"Type"`
	Health         Scalar   `toml:"Health"`
	MoveSpeed      Scalar   `toml:"MoveSpeed"`
	UniqueMovement Sequence `toml:"UniqueMovement"`
	Stage          string   `toml:"Stage"`
	Reversals      Sequence `toml:"Reversals"`
}

// rawItem is the union of every item shape as written in TOML.
type rawItem struct {
	Type        string           `toml:"Type"`
	Name        string           `toml:"Name"`
	ID          string           `toml:"ID"`
	Description string           `toml:"Description"`
	Inputs      Sequence         `toml:"Inputs"`
	Buttons     Sequence         `toml:"Buttons"`
	Separator   string           `toml:"Separator"`
	AirOK       bool             `toml:"AirOK"`
	HoldOK      bool             `toml:"HoldOK"`
	Condition   string           `toml:"Condition"`
	Images      []string         `toml:"Images"`
	ImageNotes  []string         `toml:"ImageNotes"`
	Hitboxes    []string         `toml:"Hitboxes"`
	HitboxNotes []string         `toml:"HitboxNotes"`
	Data        []FrameData      `toml:"Data"`
	Properties  []MoveProperties `toml:"Properties"`
}

func (r rawItem) item(kind Kind) Item {
	switch kind {
	case KindSummary:
		return Summary{Description: r.Description}
	case KindText:
		return Text{Name: r.Name, ID: r.ID, Description: r.Description}
	case KindMove:
		return &Move{
			Name:        r.Name,
			ID:          r.ID,
			Inputs:      r.Inputs,
			Buttons:     r.Buttons,
			Separator:   r.Separator,
			AirOK:       r.AirOK,
			HoldOK:      r.HoldOK,
			Condition:   r.Condition,
			Images:      r.Images,
			ImageNotes:  r.ImageNotes,
			Hitboxes:    r.Hitboxes,
			HitboxNotes: r.HitboxNotes,
			Description: r.Description,
			Data:        r.Data,
			Properties:  r.Properties,
		}
	default:
		return Unknown{Type: string(kind), Name: r.Name}
	}
}

// defaultKind is the item kind implied by a standard section when an item
// carries no Type tag.
func defaultKind(section string) Kind {
	switch section {
	case SectionMechanics:
		return KindText
	case SectionNormals, SectionSpecials, SectionSupers:
		return KindMove
	default:
		return ""
	}
}

// Load reads and parses one character file.
func Load(path string, logger *slog.Logger) (*Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "could not read character file").
			WithContext("path", path).Build()
	}
	return Parse(data, path, logger)
}

// Parse decodes a character document. Sections keep the order in which they
// are declared under the Character table. A section whose value is not an
// array of items is logged and skipped.
func Parse(data []byte, source string, logger *slog.Logger) (*Character, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var doc struct {
		Character toml.Primitive `toml:"Character"`
	}
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryData, "invalid TOML").
			WithContext("path", source).Build()
	}
	if !md.IsDefined(RootKey) {
		return nil, ferrors.DataError("missing required [Character] table").
			WithContext("path", source).Build()
	}

	var ov overview
	if err := md.PrimitiveDecode(doc.Character, &ov); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryData, "invalid character overview").
			WithContext("path", source).Build()
	}
	if strings.TrimSpace(ov.Name) == "" {
		return nil, ferrors.DataError("character has no Name").
			WithContext("path", source).Build()
	}

	var fields map[string]toml.Primitive
	if err := md.PrimitiveDecode(doc.Character, &fields); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryData, "invalid character table").
			WithContext("path", source).Build()
	}

	c := &Character{
		Name:           ov.Name,
		Description:    ov.Description,
		IconPath:       ov.IconPath,
		PortraitPath:   ov.PortraitPath,
		Type:           ov.Type,
		Health:         ov.Health,
		MoveSpeed:      ov.MoveSpeed,
		UniqueMovement: ov.UniqueMovement,
		Stage:          ov.Stage,
		Reversals:      ov.Reversals,
		Source:         source,
	}
	log := logger.With(logfields.Character(c.Name))

	for _, key := range sectionOrder(md) {
		prim, ok := fields[key]
		if !ok {
			continue
		}
		var raw []rawItem
		if err := md.PrimitiveDecode(prim, &raw); err != nil {
			log.Warn("Skipping malformed section", logfields.Section(key), logfields.Error(err))
			continue
		}
		section := Section{Key: key, Items: make([]Item, 0, len(raw))}
		for _, r := range raw {
			kind := Kind(r.Type)
			if kind == "" {
				kind = defaultKind(key)
			}
			section.Items = append(section.Items, r.item(kind))
		}
		c.Sections = append(c.Sections, section)
	}
	return c, nil
}

// sectionOrder lists the non-overview keys directly under Character in
// declaration order.
func sectionOrder(md toml.MetaData) []string {
	var order []string
	for _, k := range md.Keys() {
		if len(k) != 2 || k[0] != RootKey || overviewFields[k[1]] {
			continue
		}
		if !slices.Contains(order, k[1]) {
			order = append(order, k[1])
		}
	}
	return order
}

// LoadDir loads every *.toml file in dir into a new roster, in file name
// order. Files that fail to load are logged and skipped.
func LoadDir(dir string, logger *slog.Logger) (*Roster, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNotFound, "character data directory is missing or invalid").
			WithContext("path", dir).Build()
	}

	roster := NewRoster()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		c, err := Load(path, logger)
		if err != nil {
			logger.Error("Could not load character file", logfields.Path(path), logfields.Error(err))
			continue
		}
		if err := roster.Add(c); err != nil {
			logger.Error("Skipping character", logfields.Path(path), logfields.Error(err))
			continue
		}
		logger.Debug("Loaded character", logfields.Character(c.Name), logfields.Path(path))
	}
	return roster, nil
}
