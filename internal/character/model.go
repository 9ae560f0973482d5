// Package character holds the character data model, its TOML loader and the
// roster used for cross-character lookups.
package character

import (
	"strings"

	"git.home.luguber.info/inful/framedoc/internal/input"
	"git.home.luguber.info/inful/framedoc/internal/strutil"
)

// Standard section keys.
const (
	SectionMechanics = "Mechanics"
	SectionNormals   = "Normals"
	SectionSpecials  = "Specials"
	SectionSupers    = "Supers"
)

var standardTitles = map[string]string{
	SectionMechanics: "Mechanics",
	SectionNormals:   "Command Normals",
	SectionSpecials:  "Special Attacks",
	SectionSupers:    "Supers",
}

// IsStandard reports whether key names one of the four standard sections.
func IsStandard(key string) bool {
	_, ok := standardTitles[key]
	return ok
}

// Kind tags a section item.
type Kind string

const (
	KindSummary Kind = "Summary"
	KindText    Kind = "Text"
	KindMove    Kind = "Move"
)

// Item is a section entry: Summary, Text, *Move or Unknown.
type Item interface {
	Kind() Kind
	sectionItem()
}

// Summary is bare description text.
type Summary struct {
	Description string
}

// Text is a named entry with its own anchor.
type Text struct {
	Name        string
	ID          string
	Description string
}

// Unknown is an item whose Type tag is not recognised. It renders empty.
type Unknown struct {
	Type string
	Name string
}

func (Summary) Kind() Kind { return KindSummary }
func (Text) Kind() Kind    { return KindText }
func (*Move) Kind() Kind   { return KindMove }
func (u Unknown) Kind() Kind { return Kind(u.Type) }

func (Summary) sectionItem() {}
func (Text) sectionItem()    {}
func (*Move) sectionItem()   {}
func (Unknown) sectionItem() {}

// Anchor returns the raw anchor key of a text entry: ID, else Name.
func (t Text) Anchor() string {
	if t.ID != "" {
		return t.ID
	}
	return t.Name
}

// FrameData is one row of a move's frame data table.
type FrameData struct {
	Version  *Scalar  `toml:"Version"`
	Damage   Scalar   `toml:"Damage"`
	Guard    Scalar   `toml:"Guard"`
	Startup  Scalar   `toml:"Startup"`
	Active   Scalar   `toml:"Active"`
	Recovery Scalar   `toml:"Recovery"`
	OnBlock  Scalar   `toml:"OnBlock"`
	Invuln   Sequence `toml:"Invuln"`
}

// MoveProperties is one row of a move's properties table.
type MoveProperties struct {
	Version         *Scalar  `toml:"Version"`
	Attributes      Sequence `toml:"Attributes"`
	ProjectileLevel *Scalar  `toml:"ProjectileLevel"`
	Properties      Sequence `toml:"Properties"`
	Proration       Scalar   `toml:"Proration"`
	CounterType     Scalar   `toml:"CounterType"`
	ChipRatio       Scalar   `toml:"ChipRatio"`
	OnHit           Scalar   `toml:"OnHit"`
}

// Move is an attack or action entry.
type Move struct {
	Name        string
	ID          string
	Inputs      Sequence
	Buttons     Sequence
	Separator   string
	AirOK       bool
	HoldOK      bool
	Condition   string
	Images      []string
	ImageNotes  []string
	Hitboxes    []string
	HitboxNotes []string
	Description string
	Data        []FrameData
	Properties  []MoveProperties
}

// Sep returns the input separator, defaulting to "/".
func (m *Move) Sep() string {
	if m.Separator != "" {
		return m.Separator
	}
	return input.DefaultSeparator
}

// InputList returns the inputs, splitting a single delimited string.
func (m *Move) InputList() []string {
	if m.Inputs.Delimited {
		return input.Split(m.Inputs.First(), m.Sep())
	}
	return m.Inputs.Values
}

// ButtonList returns the buttons, splitting a single string per letter.
func (m *Move) ButtonList() []string {
	if m.Buttons.Delimited {
		return input.ParseButtons(m.Buttons.First())
	}
	return m.Buttons.Values
}

// FirstButton returns the primary button or "".
func (m *Move) FirstButton() string {
	if b := m.ButtonList(); len(b) > 0 {
		return b[0]
	}
	return ""
}

// Validate checks the positional pairing of explicit Inputs and Buttons arrays.
func (m *Move) Validate() error {
	if m.Inputs.Delimited || m.Buttons.Delimited {
		return nil
	}
	return input.Validate(m.Inputs.Values, m.Buttons.Values)
}

// InputString renders the move's inputs. The coloured form of a mismatched
// pairing renders empty and returns the error for the caller to log; the
// clean form never reads buttons and always renders.
func (m *Move) InputString(clean bool) (string, error) {
	if clean {
		return input.Render(m.InputList(), nil, m.Sep(), true), nil
	}
	if err := m.Validate(); err != nil {
		return "", err
	}
	return input.Render(m.InputList(), m.ButtonList(), m.Sep(), false), nil
}

// CleanInput is the plain-text input string.
func (m *Move) CleanInput() string {
	s, _ := m.InputString(true)
	return s
}

// PlainName is Name, else the clean input string.
func (m *Move) PlainName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.CleanInput()
}

// Anchor returns the raw anchor key: ID, else Name, else the clean input.
func (m *Move) Anchor() string {
	if m.ID != "" {
		return m.ID
	}
	if m.Name != "" {
		return m.Name
	}
	return m.CleanInput()
}

// AnchorID is the sanitized anchor used in the page.
func (m *Move) AnchorID() string { return strutil.SafeID(m.Anchor()) }

// Extras summarises the HoldOK and AirOK flags.
func (m *Move) Extras() string {
	var extras []string
	if m.HoldOK {
		extras = append(extras, "Hold")
	}
	if m.AirOK {
		extras = append(extras, "Air")
	}
	if len(extras) == 0 {
		return ""
	}
	return "(" + strings.Join(extras, ", ") + " OK)"
}

// Section is a named group of items in declaration order.
type Section struct {
	Key   string
	Items []Item
}

// Title returns the heading shown on the page.
func (s Section) Title() string {
	if t, ok := standardTitles[s.Key]; ok {
		return t
	}
	return s.Key
}

// Character is one fighter's documentation record.
type Character struct {
	Name           string
	Description    string
	IconPath       string
	PortraitPath   string
	Type           string
	Health         Scalar
	MoveSpeed      Scalar
	UniqueMovement Sequence
	Stage          string
	Reversals      Sequence
	Sections       []Section

	// Source is the file the character was loaded from.
	Source string
}

// Slug is the page and asset folder name.
func (c *Character) Slug() string { return strutil.Slug(c.Name) }

// Section returns the section stored under key.
func (c *Character) Section(key string) (Section, bool) {
	for _, s := range c.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// Moves returns every Move item in declaration order.
func (c *Character) Moves() []*Move {
	var moves []*Move
	for _, s := range c.Sections {
		for _, it := range s.Items {
			if m, ok := it.(*Move); ok {
				moves = append(moves, m)
			}
		}
	}
	return moves
}

// FindMove looks a move up by ID, then Name, then clean input.
func (c *Character) FindMove(id string) (*Move, bool) {
	if id == "" {
		return nil, false
	}
	moves := c.Moves()
	for _, match := range []func(*Move) string{
		func(m *Move) string { return m.ID },
		func(m *Move) string { return m.Name },
		(*Move).CleanInput,
	} {
		for _, m := range moves {
			if v := match(m); v != "" && strings.EqualFold(v, id) {
				return m, true
			}
		}
	}
	return nil, false
}

// FindByName searches Normals, Specials and Supers for a move whose display
// name matches text.
func (c *Character) FindByName(text string) (*Move, bool) {
	for _, key := range []string{SectionNormals, SectionSpecials, SectionSupers} {
		s, ok := c.Section(key)
		if !ok {
			continue
		}
		for _, it := range s.Items {
			m, ok := it.(*Move)
			if ok && strings.EqualFold(m.PlainName(), text) {
				return m, true
			}
		}
	}
	return nil, false
}
