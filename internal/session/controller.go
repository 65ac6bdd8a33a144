// Package session coordinates one in-progress care note: raw text
// accumulation, enhancement, and save/load against the note store.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/suykerbuyk/carenotes/internal/enhance"
	"github.com/suykerbuyk/carenotes/internal/note"
	"github.com/suykerbuyk/carenotes/internal/store"
	"github.com/suykerbuyk/carenotes/internal/transcribe"
)

// State is the controller's position in the session lifecycle.
type State int

const (
	Empty State = iota
	Drafting
	Enhancing
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Drafting:
		return "drafting"
	case Enhancing:
		return "enhancing"
	default:
		return "unknown"
	}
}

// ErrStaleResult is returned when a call finished after the session was
// reset or replaced; its result was not applied.
var ErrStaleResult = errors.New("session changed while the call was in flight; result discarded")

// Enhancer produces a structured note from raw text.
type Enhancer interface {
	Enhance(ctx context.Context, raw string, visit note.VisitType) (*note.EnhancedNote, error)
}

// Transcriber turns a recorded segment into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio transcribe.Audio) (string, error)
}

// NoteStore is the subset of the note store the controller needs.
type NoteStore interface {
	Save(n note.CareNote) error
	Get(id string) (note.CareNote, error)
}

// Snapshot is a copy of the session's current fields.
type Snapshot struct {
	State      State              `json:"-"`
	StateName  string             `json:"state"`
	ID         string             `json:"id,omitempty"`
	RawContent string             `json:"rawContent"`
	VisitType  note.VisitType     `json:"visitType"`
	Enhanced   *note.EnhancedNote `json:"enhancedContent,omitempty"`
}

// Controller is safe for concurrent use. At most one enhancement is in
// flight at a time; network calls run without the lock held, and a result
// is applied only if the session has not been reset or replaced since the
// call started.
type Controller struct {
	store       NoteStore
	enhancer    Enhancer
	transcriber Transcriber

	now        func() time.Time
	newID      func() string
	careWorker string

	mu        sync.Mutex
	raw       string
	visit     note.VisitType
	enhanced  *note.EnhancedNote
	id        string
	enhancing bool
	epoch     uint64
}

// New returns a controller in the Empty state. enhancer and transcriber may
// be nil when those features are not configured.
func New(s NoteStore, e Enhancer, t Transcriber) *Controller {
	return &Controller{
		store:       s,
		enhancer:    e,
		transcriber: t,
		now:         time.Now,
		newID:       uuid.NewString,
		careWorker:  note.DefaultCareWorker,
		visit:       note.VisitStandard,
	}
}

// WithClock overrides the time source for the date and time fields.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// WithIDGenerator overrides how new note ids are assigned.
func (c *Controller) WithIDGenerator(gen func() string) *Controller {
	c.newID = gen
	return c
}

// WithCareWorker sets the name recorded on saved notes.
func (c *Controller) WithCareWorker(name string) *Controller {
	if name != "" {
		c.careWorker = name
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	switch {
	case c.enhancing:
		return Enhancing
	case c.raw == "" && c.id == "" && c.enhanced == nil:
		return Empty
	default:
		return Drafting
	}
}

// Snapshot returns a copy of the session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:      c.stateLocked(),
		ID:         c.id,
		RawContent: c.raw,
		VisitType:  c.visit,
	}
	snap.StateName = snap.State.String()
	if c.enhanced != nil {
		e := *c.enhanced
		snap.Enhanced = &e
	}
	return snap
}

// AppendTranscript adds finalized speech text to the raw content, separated
// by a single space from anything already there. Blank text is ignored.
func (c *Controller) AppendTranscript(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.appendLocked(text)
}

func (c *Controller) appendLocked(text string) {
	if c.raw != "" {
		c.raw += " "
	}
	c.raw += text
}

// SetRawContent replaces the raw content with a user edit.
func (c *Controller) SetRawContent(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw = text
}

// SetVisitType changes the visit category used for the next enhancement
// and save.
func (c *Controller) SetVisitType(v note.VisitType) error {
	if !v.Valid() {
		return note.Validation("set visit type", fmt.Errorf("unknown visit type %q", v))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visit = v
	return nil
}

// Transcribe sends one recorded segment for transcription and appends the
// text. If the session is reset or replaced before the call returns, the
// text is dropped and ErrStaleResult is returned.
func (c *Controller) Transcribe(ctx context.Context, audio transcribe.Audio) (string, error) {
	if c.transcriber == nil {
		return "", note.Validation("transcribe audio", errors.New("transcription is not configured"))
	}

	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	text, err := c.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return "", ErrStaleResult
	}
	c.appendLocked(strings.TrimSpace(text))
	return text, nil
}

// Enhance sends the current raw content for enhancement. It fails with a
// validation error on blank content and with note.ErrEnhancementInProgress
// if an enhancement is already outstanding. On success the result is
// attached to the session; on failure any earlier enhancement is left as it
// was and the raw content is untouched.
func (c *Controller) Enhance(ctx context.Context) (*note.EnhancedNote, error) {
	if c.enhancer == nil {
		return nil, note.Validation("enhance notes", errors.New("enhancement is not configured"))
	}

	c.mu.Lock()
	if c.enhancing {
		c.mu.Unlock()
		return nil, note.Classify(note.ErrEnhancementInProgress, "enhance notes", nil)
	}
	if strings.TrimSpace(c.raw) == "" {
		c.mu.Unlock()
		return nil, note.Validation("enhance notes", errors.New("please add some content to enhance"))
	}
	raw, visit, epoch := c.raw, c.visit, c.epoch
	c.enhancing = true
	c.mu.Unlock()

	result, err := c.enhancer.Enhance(ctx, raw, visit)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return nil, ErrStaleResult
	}
	c.enhancing = false
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, note.Classify(note.ErrEnhancementParseFailed, "enhance notes", errors.New("no result"))
	}
	e := *result
	c.enhanced = &e
	return result, nil
}

// Save writes the session to the store, assigning an id on the first save.
// Blank raw content is rejected before the store is touched. A prior
// enhancement is not required.
func (c *Controller) Save() (note.CareNote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(c.raw) == "" {
		return note.CareNote{}, note.Validation("save note", errors.New("please add some content before saving"))
	}

	id := c.id
	if id == "" {
		id = c.newID()
	}

	existing, err := c.store.Get(id)
	hasExisting := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return note.CareNote{}, fmt.Errorf("look up note %s: %w", id, err)
	}

	now := c.now()
	n := note.CareNote{
		ID:           id,
		Date:         now.Format("02/01/2006"),
		Time:         now.Format("15:04"),
		CareWorker:   c.careWorker,
		Patient:      note.UnknownPatient,
		PatientID:    note.PatientIDFor(id),
		VisitType:    c.visit,
		RawContent:   c.raw,
		TemplateType: string(c.visit),
		CreatedAt:    note.Timestamp(now),
		UpdatedAt:    note.Timestamp(now),
	}
	if hasExisting {
		n.Date, n.Time = existing.Date, existing.Time
		n.CreatedAt = existing.CreatedAt
		if existing.Patient != "" {
			n.Patient = existing.Patient
		}
		if existing.CareWorker != "" {
			n.CareWorker = existing.CareWorker
		}
	}
	if c.enhanced != nil {
		e := *c.enhanced
		n.EnhancedContent = &e
		if name := patientName(e.PatientName); name != "" {
			n.Patient = name
		}
	}

	if err := c.store.Save(n); err != nil {
		return note.CareNote{}, fmt.Errorf("save note: %w", err)
	}
	c.id = id

	saved, err := c.store.Get(id)
	if err != nil {
		return n, nil
	}
	return saved, nil
}

// patientName returns the model's patient name unless it is blank or the
// not-available marker.
func patientName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, enhance.NotAvailable) {
		return ""
	}
	return s
}

// LoadExisting replaces the whole session with a stored record. Any call in
// flight is orphaned and its result discarded.
func (c *Controller) LoadExisting(n note.CareNote) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.enhancing = false
	c.raw = n.RawContent
	c.id = n.ID
	c.visit = n.VisitType
	if !c.visit.Valid() {
		c.visit = note.VisitStandard
	}
	c.enhanced = nil
	if n.EnhancedContent != nil {
		e := *n.EnhancedContent
		c.enhanced = &e
	}
	// An empty stored note still lands in Drafting because it holds an id.
}

// Load fetches id from the store and loads it into the session.
func (c *Controller) Load(id string) (note.CareNote, error) {
	n, err := c.store.Get(id)
	if err != nil {
		return note.CareNote{}, err
	}
	c.LoadExisting(n)
	return n, nil
}

// Reset returns to Empty and forgets the held id, so the next save creates
// a new record.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.enhancing = false
	c.raw = ""
	c.id = ""
	c.visit = note.VisitStandard
	c.enhanced = nil
}
