package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/suykerbuyk/carenotes/internal/config"
	"github.com/suykerbuyk/carenotes/internal/enhance"
	"github.com/suykerbuyk/carenotes/internal/events"
	"github.com/suykerbuyk/carenotes/internal/note"
	"github.com/suykerbuyk/carenotes/internal/render"
	"github.com/suykerbuyk/carenotes/internal/session"
	"github.com/suykerbuyk/carenotes/internal/transcribe"
	"github.com/suykerbuyk/carenotes/internal/watch"
)

func runSession(ctx context.Context, cfg config.Config, args []string) {
	st, closeStore := openStore(cfg)
	defer closeStore()

	// Without a credential the session still drafts, saves and loads.
	var enh session.Enhancer
	var tr session.Transcriber
	if key := cfg.OpenAI.APIKey(); key != "" {
		enh = enhance.New(cfg.OpenAI, key)
		tr = transcribe.New(cfg.OpenAI, cfg.Transcription, key)
	} else {
		log.Printf("warning: %s not set; transcription and enhancement are disabled", cfg.OpenAI.KeyEnv())
	}

	ctrl := session.New(st, enh, tr)
	if id := flagValue(args, "--id"); id != "" {
		if _, err := ctrl.Load(resolveID(st, id)); err != nil {
			fatal("load %s: %v", id, err)
		}
	}

	runner := events.NewRunner(ctrl, os.Stdout)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watchDone := make(chan error, 1)
	if hasFlag(args, "--watch") {
		w := watch.New(cfg.Inbox.Path, cfg.Inbox.Extensions, inboxHandler(runner, ctrl))
		go func() { watchDone <- w.Run(ctx) }()
		log.Printf("watching %s for audio segments", config.CompressHome(cfg.Inbox.Path))
	} else {
		watchDone <- nil
	}

	err := runner.Run(ctx, os.Stdin)
	cancel()
	if werr := <-watchDone; werr != nil {
		log.Printf("warning: inbox watcher: %v", werr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fatal("%v", err)
	}
}

// inboxHandler transcribes one inbox segment into the session and reports
// it on the result stream.
func inboxHandler(runner *events.Runner, ctrl *session.Controller) watch.Handler {
	return func(ctx context.Context, path string) error {
		audio, err := transcribe.ReadAudio(path)
		if err == nil {
			var text string
			text, err = runner.TranscribeSegment(ctx, audio)
			if err == nil {
				snap := ctrl.Snapshot()
				runner.Emit(events.Result{OK: true, Event: events.Audio, Source: "inbox", Text: text, Session: &snap})
				return nil
			}
		}
		res := events.Failure(events.Audio, err)
		res.Source = "inbox"
		runner.Emit(res)
		return err
	}
}

func runTranscribe(ctx context.Context, cfg config.Config, args []string) {
	pos := positional(args)
	if len(pos) < 1 {
		fatal("usage: cn transcribe <file>")
	}
	tr, _ := clients(cfg)

	text, err := tr.TranscribeFile(ctx, pos[0])
	if err != nil {
		failed(err)
	}
	fmt.Println(strings.TrimSpace(text))
}

func runEnhance(ctx context.Context, cfg config.Config, args []string) {
	visit, err := note.ParseVisitType(flagValue(args, "--visit-type"))
	if err != nil {
		failed(err)
	}

	var raw []byte
	pos := positional(args, "--visit-type")
	if len(pos) == 0 || pos[0] == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(pos[0])
	}
	if err != nil {
		fatal("read notes: %v", err)
	}

	_, enh := clients(cfg)
	result, err := enh.Enhance(ctx, string(raw), visit)
	if err != nil {
		failed(err)
	}

	if hasFlag(args, "--json") {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fatal("encode report: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	patient := strings.TrimSpace(result.PatientName)
	if patient == "" || strings.EqualFold(patient, enhance.NotAvailable) {
		patient = note.UnknownPatient
	}
	fmt.Print(render.Terminal(note.CareNote{
		Patient:         patient,
		VisitType:       visit,
		CareWorker:      note.DefaultCareWorker,
		EnhancedContent: result,
	}))
}
