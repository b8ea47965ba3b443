// vaani-sim drives a scripted conversation through the dialogue controller
// with mock engines, printing every published event. Useful for eyeballing
// the turn-taking flow without a device attached.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/atharv-dange/vaani/internal/actions"
	"github.com/atharv-dange/vaani/internal/brain"
	"github.com/atharv-dange/vaani/internal/contacts"
	"github.com/atharv-dange/vaani/internal/dialog"
	"github.com/atharv-dange/vaani/internal/history"
	"github.com/atharv-dange/vaani/internal/intent"
	"github.com/atharv-dange/vaani/internal/observability"
	"github.com/atharv-dange/vaani/internal/speech"
)

var scenarios = map[string][]string{
	"call":  {"call Harsh", "the one who is Kushal's roommate"},
	"alarm": {"set an alarm", "7 am tomorrow", "stop"},
	"chat":  {"how has my day been", "goodbye"},
}

func main() {
	scenario := flag.String("scenario", "call", "scripted conversation: call, alarm or chat")
	flag.Parse()

	script, ok := scenarios[*scenario]
	if !ok {
		log.Fatalf("unknown scenario %q (expected call, alarm or chat)", *scenario)
	}

	recognizer := speech.NewMockRecognizer()
	speaker := speech.NewMockSpeaker(400 * time.Millisecond)
	wakeSource := speech.NewMockWakeSource()
	directory := contacts.NewInMemoryDirectory([]contacts.Candidate{
		{ID: "1", DisplayName: "Harsh Singh", Number: "+911111111111", Note: "Kushal's roommate"},
		{ID: "2", DisplayName: "Harsh Patel", Number: "+912222222222", Note: "gym"},
		{ID: "3", DisplayName: "Ananya Rao", Number: "+913333333333"},
	})

	controller := dialog.NewController(dialog.Options{
		SilenceTimeout: 10 * time.Second,
		WakeAckTimeout: 5 * time.Second,
		SettleDelay:    100 * time.Millisecond,
	}, dialog.Collaborators{
		Recognizer:  recognizer,
		Speaker:     speaker,
		WakeSource:  wakeSource,
		Interpreter: intent.NewMockInterpreter(),
		Responder:   brain.NewMockResponder(),
		Executor:    actions.NewDispatcher(actions.NewMockDevice()),
		Resolver:    contacts.NewDirectoryResolver(directory),
		History:     history.NewInMemoryStore(),
	}, observability.NewMetrics("vaani_sim"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	feed, unsub := controller.Subscribe()
	defer unsub()
	go func() {
		for msg := range feed {
			fmt.Printf("  -> %+v\n", msg)
		}
	}()

	go func() { _ = controller.Run(ctx) }()

	fmt.Println("* wake word")
	wakeSource.Trigger()
	waitListening(ctx, controller, recognizer)

	for _, line := range script {
		fmt.Printf("* user says: %q\n", line)
		recognizer.EmitFinal(line)
		if !waitTurnSettled(ctx, controller, recognizer) {
			break
		}
	}

	// Let any final playback drain before tearing down.
	time.Sleep(time.Second)
	fmt.Printf("final state: %+v\n", controller.Snapshot())
}

func waitListening(ctx context.Context, c *dialog.Controller, r *speech.MockRecognizer) {
	for ctx.Err() == nil {
		snap := c.Snapshot()
		if snap.State == dialog.StateActiveListening && r.Listening() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// waitTurnSettled blocks until the controller is ready for the next utterance
// or the session has ended.
func waitTurnSettled(ctx context.Context, c *dialog.Controller, r *speech.MockRecognizer) bool {
	// The utterance has to leave the listening state first, otherwise the
	// next line would land in the same capture.
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) && ctx.Err() == nil {
		if c.Snapshot().State != dialog.StateActiveListening {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	for time.Now().Before(deadline) && ctx.Err() == nil {
		snap := c.Snapshot()
		switch snap.State {
		case dialog.StateIdle:
			return false
		case dialog.StateActiveListening:
			if r.Listening() && !snap.SpeakerActive {
				return true
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
