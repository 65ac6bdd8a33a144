// Package events drives a session controller from a stream of JSON-lines
// events and reports one JSON result line per event.
package events

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/suykerbuyk/carenotes/internal/note"
	"github.com/suykerbuyk/carenotes/internal/session"
	"github.com/suykerbuyk/carenotes/internal/store"
	"github.com/suykerbuyk/carenotes/internal/transcribe"
)

// Event names accepted on input.
const (
	Transcript = "transcript"
	Audio      = "audio"
	Edit       = "edit"
	VisitType  = "visit_type"
	Enhance    = "enhance"
	Save       = "save"
	Load       = "load"
	Reset      = "reset"
	Show       = "show"
	Wait       = "wait"
)

// Event is one input line.
type Event struct {
	Event     string `json:"event"`
	Text      string `json:"text,omitempty"`
	Path      string `json:"path,omitempty"`
	VisitType string `json:"visitType,omitempty"`
	ID        string `json:"id,omitempty"`
}

// Result is one output line.
type Result struct {
	OK         bool              `json:"ok"`
	Event      string            `json:"event"`
	Source     string            `json:"source,omitempty"`
	Kind       string            `json:"kind,omitempty"`
	Error      string            `json:"error,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Text       string            `json:"text,omitempty"`
	Session    *session.Snapshot `json:"session,omitempty"`
	Note       *note.CareNote    `json:"note,omitempty"`
}

// Runner dispatches events to a controller. Enhancement and audio events
// run in the background; transcriptions are serialized so one recording
// produces one call at a time.
type Runner struct {
	ctrl *session.Controller

	outMu sync.Mutex
	enc   *json.Encoder

	wg      sync.WaitGroup
	audioMu sync.Mutex
}

// NewRunner returns a Runner writing results to w.
func NewRunner(ctrl *session.Controller, w io.Writer) *Runner {
	return &Runner{ctrl: ctrl, enc: json.NewEncoder(w)}
}

// Run reads events from in until EOF or ctx is done, then waits for
// background work to report.
func (r *Runner) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 4<<20)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				scanErr <- nil
				return
			}
		}
		scanErr <- sc.Err()
	}()

	defer r.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("read events: %w", err)
				}
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var ev Event
			if err := json.Unmarshal([]byte(line), &ev); err != nil {
				r.Emit(Failure("", note.Validation("parse event", err)))
				continue
			}
			r.Dispatch(ctx, ev)
		}
	}
}

// Dispatch handles one event. Background events report when they finish.
func (r *Runner) Dispatch(ctx context.Context, ev Event) {
	switch ev.Event {
	case Transcript:
		r.ctrl.AppendTranscript(ev.Text)
		r.emitSession(ev.Event)

	case Edit:
		r.ctrl.SetRawContent(ev.Text)
		r.emitSession(ev.Event)

	case VisitType:
		v, err := note.ParseVisitType(ev.VisitType)
		if err == nil {
			err = r.ctrl.SetVisitType(v)
		}
		if err != nil {
			r.Emit(Failure(ev.Event, err))
			return
		}
		r.emitSession(ev.Event)

	case Audio:
		r.background(func() { r.transcribe(ctx, ev) })

	case Enhance:
		r.background(func() {
			if _, err := r.ctrl.Enhance(ctx); err != nil {
				r.Emit(Failure(ev.Event, err))
				return
			}
			r.emitSession(ev.Event)
		})

	case Save:
		n, err := r.ctrl.Save()
		if err != nil {
			r.Emit(Failure(ev.Event, err))
			return
		}
		r.Emit(Result{OK: true, Event: ev.Event, Note: &n})

	case Load:
		if _, err := r.ctrl.Load(ev.ID); err != nil {
			r.Emit(Failure(ev.Event, err))
			return
		}
		r.emitSession(ev.Event)

	case Reset:
		r.ctrl.Reset()
		r.emitSession(ev.Event)

	case Show:
		r.emitSession(ev.Event)

	case Wait:
		r.wg.Wait()
		r.emitSession(ev.Event)

	default:
		r.Emit(Failure(ev.Event, note.Validation("dispatch event", fmt.Errorf("unknown event %q", ev.Event))))
	}
}

func (r *Runner) background(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

func (r *Runner) transcribe(ctx context.Context, ev Event) {
	audio, err := transcribe.ReadAudio(ev.Path)
	if err != nil {
		r.Emit(Failure(ev.Event, err))
		return
	}
	text, err := r.TranscribeSegment(ctx, audio)
	if err != nil {
		r.Emit(Failure(ev.Event, err))
		return
	}
	snap := r.ctrl.Snapshot()
	r.Emit(Result{OK: true, Event: ev.Event, Text: text, Session: &snap})
}

// TranscribeSegment transcribes one segment through the controller, waiting
// for any other transcription to finish first.
func (r *Runner) TranscribeSegment(ctx context.Context, audio transcribe.Audio) (string, error) {
	r.audioMu.Lock()
	defer r.audioMu.Unlock()
	return r.ctrl.Transcribe(ctx, audio)
}

func (r *Runner) emitSession(event string) {
	snap := r.ctrl.Snapshot()
	r.Emit(Result{OK: true, Event: event, Session: &snap})
}

// Emit writes one result line.
func (r *Runner) Emit(res Result) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	if err := r.enc.Encode(res); err != nil {
		log.Printf("warning: write result: %v", err)
	}
}

// Failure builds the result line for err.
func Failure(event string, err error) Result {
	return Result{
		OK:         false,
		Event:      event,
		Kind:       kindName(err),
		Error:      err.Error(),
		Suggestion: note.Suggestion(err),
	}
}

func kindName(err error) string {
	switch {
	case errors.Is(err, session.ErrStaleResult):
		return "discarded"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	}
	return note.KindName(err)
}
