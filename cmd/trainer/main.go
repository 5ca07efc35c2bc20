package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pitabwire/util"

	"github.com/powpow088/EnglishWordsT/config"
	"github.com/powpow088/EnglishWordsT/internal/sound"
	"github.com/powpow088/EnglishWordsT/internal/speech/engine"
	"github.com/powpow088/EnglishWordsT/internal/speech/input"
	"github.com/powpow088/EnglishWordsT/internal/speech/output"
	"github.com/powpow088/EnglishWordsT/internal/speech/registry"
	"github.com/powpow088/EnglishWordsT/internal/speech/voices"
	"github.com/powpow088/EnglishWordsT/internal/vocab"
	"github.com/powpow088/EnglishWordsT/pkg/events"
	"github.com/powpow088/EnglishWordsT/pkg/quiz"

	// Register speech backends via init().
	_ "github.com/powpow088/EnglishWordsT/internal/speech/backends/espeak"
	_ "github.com/powpow088/EnglishWordsT/internal/speech/backends/whisper"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	var synth engine.Synthesizer
	if s, err := registry.Synth.Create(cfg.TTSBackend, map[string]string{
		"binary_path": cfg.TTSBinary,
		"language":    cfg.TTSLanguage,
	}); err != nil {
		util.Log(ctx).WithError(err).Warn("speech output disabled")
	} else {
		synth = s
	}
	if synth != nil {
		defer synth.Close()
	}

	catalog := voices.NewCatalog(synth, time.Duration(cfg.VoiceCatalogWaitMs)*time.Millisecond)
	speaker := output.NewSpeaker(synth, catalog)

	var listen quiz.ListenFunc
	if cfg.STTBackend != "" {
		if rec, err := registry.Recog.Create(cfg.STTBackend, map[string]string{
			"binary_path": cfg.STTBinary,
			"model_path":  cfg.STTModel,
		}); err != nil {
			util.Log(ctx).WithError(err).Warn("speech input disabled")
		} else {
			defer rec.Close()
			listen = input.ListenFunc(rec)
		}
	}

	var player sound.Player = sound.NopPlayer{}
	if cfg.SoundCommand != "" {
		player = sound.NewExecPlayer(cfg.SoundCommand, cfg.SoundDir)
	}

	loader := vocab.NewLoader(cfg.VocabDir)
	if err := loader.LoadAll(); err != nil {
		log.Fatalf("loading vocabulary: %v", err)
	}
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		if err := loader.WatchAndReload(watchDone); err != nil {
			util.Log(ctx).WithError(err).Warn("vocab watcher stopped")
		}
	}()

	category := cfg.Category
	if category == "" {
		cats := loader.Categories()
		if len(cats) == 0 {
			log.Fatalf("no word lists found in %q", cfg.VocabDir)
		}
		category = cats[0]
	}
	items, ok := loader.Items(category)
	if !ok {
		log.Fatalf("unknown category %q", category)
	}

	pub := events.NewPublisher(nil, "trainer", "")

	finished := make(chan quiz.Summary, 1)
	eng := quiz.NewEngine(quiz.Config{
		Speak:         speaker.Speak,
		Listen:        listen,
		Play:          func(ctx context.Context, e quiz.SoundEffect) { player.Play(ctx, string(e)) },
		Publisher:     pub,
		PromptDelay:   time.Duration(cfg.PromptDelayMs) * time.Millisecond,
		FeedbackDwell: time.Duration(cfg.FeedbackDwellMs) * time.Millisecond,
		OnSnapshot:    render,
		OnFinished: func(results []quiz.AttemptRecord, durationSeconds int) {
			finished <- quiz.Summarize(results, durationSeconds)
		},
	})

	session, err := eng.StartSession(ctx, items, quiz.Gender(cfg.VoiceGender), cfg.VoiceURI)
	if err != nil {
		log.Fatalf("starting session: %v", err)
	}

	fmt.Printf("Spelling quiz: %s (%d words). Type the word you hear, or !say / !slow / !mic / !exit.\n",
		category, len(items))

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case summary := <-finished:
			fmt.Printf("\nDone in %ds: %d/%d (%d%%, %s)\n",
				summary.DurationSeconds, summary.CorrectCount, summary.Total,
				summary.Percentage, summary.Outcome)
			return

		case line, ok := <-lines:
			if !ok {
				eng.Exit(ctx, session)
				return
			}
			switch line {
			case "!exit":
				eng.Exit(ctx, session)
				fmt.Println("Session abandoned.")
				return
			case "!say":
				eng.SpeakCurrent(ctx, session, cfg.SpeechRate)
			case "!slow":
				eng.SpeakCurrent(ctx, session, quiz.RateSlow)
			case "!mic":
				if session.Snapshot().CaptureMode == quiz.ModeListening {
					eng.StopListening(ctx, session)
				} else {
					eng.StartListening(ctx, session)
				}
			default:
				eng.UpdateInput(ctx, session, line)
				eng.Submit(ctx, session)
			}
		}
	}
}

func render(snap quiz.Snapshot) {
	if snap.Finished {
		return
	}
	switch snap.Feedback {
	case quiz.FeedbackCorrect:
		fmt.Println("  ✓ correct")
	case quiz.FeedbackWrong:
		fmt.Printf("  ✗ wrong, it was %q\n", snap.Item.SourceText)
	default:
		if snap.InputBuffer == "" {
			fmt.Printf("\n[%d/%d] hint: %s\n> ", snap.Position+1, snap.Total, snap.Item.HintText)
		}
	}
}
