// Package model contains the value records shared by the engine and storage.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Note validation errors.
var (
	ErrEmptyTitle   = errors.New("note title cannot be empty")
	ErrInvalidRange = errors.New("counter minimum must be less than maximum")
)

// CompletionType identifies the completion variant of a note. The string
// values match the on-disk note records.
type CompletionType string

const (
	CompletionPlainText CompletionType = "Plain Text"
	CompletionCheckbox  CompletionType = "Checkboxes"
	CompletionCounter   CompletionType = "Digits/Full Digits"
)

// Completion is the progress payload of a note. Exactly three variants exist:
// PlainText, Checkbox and BoundedCounter. The interface is sealed so a note
// cannot carry payload data belonging to another variant.
type Completion interface {
	Type() CompletionType
	isCompletion()
}

// PlainText carries no progress data.
type PlainText struct{}

func (PlainText) Type() CompletionType { return CompletionPlainText }
func (PlainText) isCompletion()        {}

// Checkbox is a single done/not-done mark.
type Checkbox struct {
	Checked bool
}

func (Checkbox) Type() CompletionType { return CompletionCheckbox }
func (Checkbox) isCompletion()        {}

// BoundedCounter counts progress within an inclusive [Min, Max] range.
type BoundedCounter struct {
	Current int
	Min     int
	Max     int
}

func (BoundedCounter) Type() CompletionType { return CompletionCounter }
func (BoundedCounter) isCompletion()        {}

// Validate reports whether the counter range is usable.
func (c BoundedCounter) Validate() error {
	if c.Min >= c.Max {
		return ErrInvalidRange
	}
	return nil
}

// Clamp returns the counter with Current forced into [Min, Max].
func (c BoundedCounter) Clamp() BoundedCounter {
	if c.Current < c.Min {
		c.Current = c.Min
	}
	if c.Current > c.Max {
		c.Current = c.Max
	}
	return c
}

// StyleTag is one opaque formatting annotation over a note description.
// The core never interprets Config; it only round-trips it. On disk a tag is
// a four element JSON array: [name, start, end, config].
type StyleTag struct {
	Name   string
	Start  string
	End    string
	Config map[string]any
}

// MarshalJSON encodes the tag as its four element array form.
func (t StyleTag) MarshalJSON() ([]byte, error) {
	config := t.Config
	if config == nil {
		config = map[string]any{}
	}
	return json.Marshal([]any{t.Name, t.Start, t.End, config})
}

// UnmarshalJSON decodes the four element array form.
func (t *StyleTag) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("parse style tag: %w", err)
	}
	if len(fields) != 4 {
		return fmt.Errorf("parse style tag: want 4 elements, got %d", len(fields))
	}
	if err := json.Unmarshal(fields[0], &t.Name); err != nil {
		return fmt.Errorf("parse style tag name: %w", err)
	}
	if err := json.Unmarshal(fields[1], &t.Start); err != nil {
		return fmt.Errorf("parse style tag start: %w", err)
	}
	if err := json.Unmarshal(fields[2], &t.End); err != nil {
		return fmt.Errorf("parse style tag end: %w", err)
	}
	if err := json.Unmarshal(fields[3], &t.Config); err != nil {
		return fmt.Errorf("parse style tag config: %w", err)
	}
	return nil
}

// Note is a small persisted entity attached to one timer slot.
type Note struct {
	ID          string
	Title       string
	Description string
	Tags        []StyleTag
	Completion  Completion
}

// NewNote creates a note with a creation-time-derived ID. The title must be
// non-empty and a counter completion must have a valid range; the counter's
// current value is clamped into range.
func NewNote(title, description string, completion Completion) (Note, error) {
	if title == "" {
		return Note{}, ErrEmptyTitle
	}
	if completion == nil {
		completion = PlainText{}
	}
	if counter, ok := completion.(BoundedCounter); ok {
		if err := counter.Validate(); err != nil {
			return Note{}, err
		}
		completion = counter.Clamp()
	}
	return Note{
		ID:          NewNoteID(time.Now()),
		Title:       title,
		Description: description,
		Completion:  completion,
	}, nil
}

// NewNoteID derives a note ID from a creation instant: seconds plus the
// microsecond digits. Collisions beyond time granularity are not defended
// against.
func NewNoteID(at time.Time) string {
	return at.Format("20060102150405") + fmt.Sprintf("%06d", at.Nanosecond()/1000)
}

// Validate checks the note's own invariants.
func (n Note) Validate() error {
	if n.Title == "" {
		return ErrEmptyTitle
	}
	if counter, ok := n.Completion.(BoundedCounter); ok {
		return counter.Validate()
	}
	return nil
}

// Mark advances the note's completion: a checkbox becomes checked, a counter
// increments up to its maximum. Plain text notes are unaffected.
func (n *Note) Mark() {
	switch completion := n.Completion.(type) {
	case Checkbox:
		completion.Checked = true
		n.Completion = completion
	case BoundedCounter:
		if completion.Current < completion.Max {
			completion.Current++
		}
		n.Completion = completion
	}
}

// Unmark reverses Mark: a checkbox becomes unchecked, a counter decrements
// down to its minimum.
func (n *Note) Unmark() {
	switch completion := n.Completion.(type) {
	case Checkbox:
		completion.Checked = false
		n.Completion = completion
	case BoundedCounter:
		if completion.Current > completion.Min {
			completion.Current--
		}
		n.Completion = completion
	}
}

// noteWire is the persisted note shape. Field names and completion payload
// encodings are fixed by existing state files.
type noteWire struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description_text"`
	Tags        []StyleTag      `json:"description_tags"`
	Type        CompletionType  `json:"completion_type"`
	Data        json.RawMessage `json:"completion_data"`
}

// MarshalJSON encodes the note in the persisted record shape.
func (n Note) MarshalJSON() ([]byte, error) {
	wire := noteWire{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Tags:        n.Tags,
	}
	if wire.Tags == nil {
		wire.Tags = []StyleTag{}
	}

	completion := n.Completion
	if completion == nil {
		completion = PlainText{}
	}
	wire.Type = completion.Type()

	switch payload := completion.(type) {
	case Checkbox:
		data, err := json.Marshal(payload.Checked)
		if err != nil {
			return nil, err
		}
		wire.Data = data
	case BoundedCounter:
		data, err := json.Marshal([3]int{payload.Current, payload.Min, payload.Max})
		if err != nil {
			return nil, err
		}
		wire.Data = data
	default:
		wire.Data = json.RawMessage("null")
	}

	return json.Marshal(wire)
}

// UnmarshalJSON decodes the persisted record shape. Unknown completion types
// fall back to plain text; a legacy two element counter payload [current, max]
// loads with a minimum of zero.
func (n *Note) UnmarshalJSON(data []byte) error {
	var wire noteWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("parse note: %w", err)
	}

	n.ID = wire.ID
	if n.ID == "" {
		n.ID = NewNoteID(time.Now())
	}
	n.Title = wire.Title
	if n.Title == "" {
		n.Title = "Untitled"
	}
	n.Description = wire.Description
	n.Tags = wire.Tags

	switch wire.Type {
	case CompletionCheckbox:
		var checked bool
		if len(wire.Data) > 0 {
			if err := json.Unmarshal(wire.Data, &checked); err != nil {
				checked = false
			}
		}
		n.Completion = Checkbox{Checked: checked}
	case CompletionCounter:
		n.Completion = decodeCounter(wire.Data)
	default:
		n.Completion = PlainText{}
	}
	return nil
}

func decodeCounter(data json.RawMessage) BoundedCounter {
	counter := BoundedCounter{Current: 0, Min: 0, Max: 10}
	if len(data) == 0 {
		return counter
	}

	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return counter
	}
	switch len(values) {
	case 3:
		counter = BoundedCounter{Current: values[0], Min: values[1], Max: values[2]}
	case 2:
		counter = BoundedCounter{Current: values[0], Min: 0, Max: values[1]}
	}
	return counter.Clamp()
}
