package docedit

import (
	"errors"
	"fmt"
)

type Mode string

const (
	ModeStructural Mode = "structural"
	ModeTextual    Mode = "textual"
)

// Section starter types for one-shot section adds.
const (
	SectionScalar = "value"
	SectionObject = "object"
	SectionList   = "array"
)

var (
	ErrDuplicateKey  = errors.New("key already exists")
	ErrEmptyKey      = errors.New("key must not be empty")
	ErrUnknownTarget = errors.New("no such section or property")
)

// Editor holds one editing session over a configuration document. The two
// views (structural tree, serialized text) always describe the same logical
// document: whichever view is not active is derived and recomputed from the
// other. Structural mutations re-serialize the text buffer immediately, so
// the buffer never lags within a single render pass.
type Editor struct {
	doc       *Value
	text      string
	mode      Mode
	submitSeq int
}

// NewEditor starts a structural-mode session over a copy of doc. A nil or
// non-map doc starts from an empty document.
func NewEditor(doc *Value) *Editor {
	if doc == nil || doc.Kind() != KindMap {
		doc = NewMap()
	}
	e := &Editor{
		doc:  doc.Clone(),
		mode: ModeStructural,
	}
	e.resync()
	return e
}

// NewEditorFromJSON starts a session from serialized configuration text.
func NewEditorFromJSON(data []byte) (*Editor, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if doc.Kind() != KindMap {
		return nil, fmt.Errorf("configuration document must be a JSON object")
	}
	return NewEditor(doc), nil
}

func (e *Editor) Mode() Mode { return e.mode }

func (e *Editor) Text() string { return e.text }

// SubmissionSeq identifies the current one-shot add form; it increments
// after every successful add so a stale submission can be detected and the
// inputs recreated empty.
func (e *Editor) SubmissionSeq() int { return e.submitSeq }

// Document returns the current authoritative structural document,
// independent of the active mode.
func (e *Editor) Document() *Value {
	return e.doc.Clone()
}

// resync recomputes the derived text view after a structural mutation.
func (e *Editor) resync() {
	text, err := e.doc.Serialize()
	if err != nil {
		// A tree built from scalars, lists and maps always serializes.
		panic(fmt.Sprintf("docedit: unserializable document: %v", err))
	}
	e.text = text
}

// SwitchToTextual re-serializes the parsed document into the text buffer
// and hands authority to the text view.
func (e *Editor) SwitchToTextual() {
	if e.mode == ModeTextual {
		return
	}
	e.resync()
	e.mode = ModeTextual
}

// SwitchToStructural parses the text buffer and commits it. On parse
// failure the switch is discarded: the previous document and the current
// mode are both retained.
func (e *Editor) SwitchToStructural() error {
	if e.mode == ModeStructural {
		return nil
	}
	if err := e.Validate(); err != nil {
		return err
	}
	e.mode = ModeStructural
	return nil
}

// SetText replaces the text buffer while in textual mode.
func (e *Editor) SetText(text string) {
	e.text = text
}

// Validate parses the text buffer and, on success, commits the result as
// the authoritative structural document. Parse failure reports the decode
// error and never mutates the document.
func (e *Editor) Validate() error {
	doc, err := Parse([]byte(e.text))
	if err != nil {
		return err
	}
	if doc.Kind() != KindMap {
		return fmt.Errorf("configuration document must be a JSON object")
	}
	e.doc = doc
	e.resync()
	return nil
}

// RenameSection renames a top-level section. Renaming onto an existing name
// is silently ignored and the old name retained.
func (e *Editor) RenameSection(oldName, newName string) {
	if newName == "" {
		return
	}
	e.doc.Rename(oldName, newName)
	e.resync()
}

// RenameProperty renames a property inside an object section, with the same
// no-clobber rule as sections.
func (e *Editor) RenameProperty(section, oldName, newName string) {
	if newName == "" {
		return
	}
	target, ok := e.doc.Get(section)
	if !ok || target.Kind() != KindMap {
		return
	}
	target.Rename(oldName, newName)
	e.resync()
}

// SetSectionValue replaces a scalar section's value through coercion.
func (e *Editor) SetSectionValue(section, text string) error {
	target, ok := e.doc.Get(section)
	if !ok {
		return ErrUnknownTarget
	}
	if target.Kind() != KindScalar {
		return fmt.Errorf("section %q is not a simple value", section)
	}
	e.doc.Set(section, NewScalar(CoerceScalar(text)))
	e.resync()
	return nil
}

// SetProperty replaces a property value inside an object section through
// coercion.
func (e *Editor) SetProperty(section, key, text string) error {
	target, ok := e.doc.Get(section)
	if !ok || target.Kind() != KindMap {
		return ErrUnknownTarget
	}
	if _, exists := target.Get(key); !exists {
		return ErrUnknownTarget
	}
	target.Set(key, NewScalar(CoerceScalar(text)))
	e.resync()
	return nil
}

// SetListItem replaces a list item through coercion.
func (e *Editor) SetListItem(section string, index int, text string) error {
	target, ok := e.doc.Get(section)
	if !ok || target.Kind() != KindList {
		return ErrUnknownTarget
	}
	if index < 0 || index >= target.Len() {
		return ErrUnknownTarget
	}
	target.SetIndex(index, NewScalar(CoerceScalar(text)))
	e.resync()
	return nil
}

// AddProperty adds a new property to an object section as a one-shot
// submission; duplicates are rejected before any mutation.
func (e *Editor) AddProperty(section, key, text string) error {
	if key == "" {
		return ErrEmptyKey
	}
	target, ok := e.doc.Get(section)
	if !ok || target.Kind() != KindMap {
		return ErrUnknownTarget
	}
	if _, exists := target.Get(key); exists {
		return ErrDuplicateKey
	}
	target.Set(key, NewScalar(CoerceScalar(text)))
	e.submitSeq++
	e.resync()
	return nil
}

// AddListItem appends a new item to a list section as a one-shot submission.
func (e *Editor) AddListItem(section, text string) error {
	target, ok := e.doc.Get(section)
	if !ok || target.Kind() != KindList {
		return ErrUnknownTarget
	}
	target.Append(NewScalar(CoerceScalar(text)))
	e.submitSeq++
	e.resync()
	return nil
}

// AddSection adds a new top-level section with starter content matching the
// requested shape.
func (e *Editor) AddSection(key, sectionType string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if _, exists := e.doc.Get(key); exists {
		return ErrDuplicateKey
	}

	switch sectionType {
	case SectionObject:
		starter := NewMap()
		starter.Set("new_property", NewScalar("New value"))
		e.doc.Set(key, starter)
	case SectionList:
		e.doc.Set(key, NewList(NewScalar("New item")))
	default:
		e.doc.Set(key, NewScalar("New value"))
	}
	e.submitSeq++
	e.resync()
	return nil
}

// DeleteSection removes a top-level section immediately.
func (e *Editor) DeleteSection(key string) {
	e.doc.Delete(key)
	e.resync()
}

// DeleteProperty removes a property from an object section immediately.
func (e *Editor) DeleteProperty(section, key string) {
	target, ok := e.doc.Get(section)
	if !ok || target.Kind() != KindMap {
		return
	}
	target.Delete(key)
	e.resync()
}

// DeleteListItem removes a list item immediately.
func (e *Editor) DeleteListItem(section string, index int) {
	target, ok := e.doc.Get(section)
	if !ok || target.Kind() != KindList {
		return
	}
	target.RemoveIndex(index)
	e.resync()
}
