package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/config"
	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/introspect"
	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/memory"
)

func newSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session <persona>",
		Short: "Start an interactive conversation session",
		Long: `Talk to a persona. Every user turn is recorded into its memory; when an
API key is configured the persona answers through the model, conditioned on
what it remembers.

End the session with Ctrl-D or /quit. Session end is the persona's
wake-to-sleep boundary: familiarity steps up, the evolution schedule
advances, and memory is persisted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			persona := args[0]

			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.close()

			interactive := term.IsTerminal(int(os.Stdin.Fd()))

			var replier *introspect.Replier
			if eng.client != nil {
				replier = introspect.NewReplier(eng.client)
			} else if interactive {
				fmt.Println("No API key configured — recording memory only. Run `eidoid setup`.")
			}

			stopAutoSave := startAutoSave(eng)
			defer stopAutoSave()

			stopWatch := watchConfig(eng)
			defer stopWatch()

			// Ctrl-C still closes the cycle before exiting.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Println()
				finishSession(eng, persona, interactive)
				eng.close()
				os.Exit(0)
			}()

			if interactive {
				fmt.Printf("Talking to %s. Ctrl-D or /quit to end.\n\n", persona)
			}

			reader := bufio.NewReader(os.Stdin)
			for {
				if interactive {
					fmt.Print("you> ")
				}

				line, readErr := reader.ReadString('\n')
				line = strings.TrimSpace(line)

				if line == "/quit" {
					break
				}
				if line != "" {
					eng.manager.RecordInteraction(persona, line, memory.SpeakerUser)
					if replier != nil {
						answer(cmd.Context(), eng, replier, persona, line)
					}
				}

				if readErr == io.EOF {
					break
				}
				if readErr != nil {
					return fmt.Errorf("read input: %w", readErr)
				}
			}

			finishSession(eng, persona, interactive)
			return nil
		},
	}
}

// answer gets a model reply for one user turn and records it back into the
// buffer. Reply failures never lose the user's turn — it is already stored.
func answer(ctx context.Context, eng *engine, replier *introspect.Replier, persona, line string) {
	payload := eng.renderer.Payload(persona, eng.contextOptions())
	pm := eng.manager.Persona(persona)

	reply, err := replier.Reply(ctx, persona, pm.Traits(), payload, line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  reply error: %v\n", err)
		return
	}
	fmt.Printf("%s> %s\n", persona, reply)
	eng.manager.RecordInteraction(persona, reply, memory.SpeakerAssistant)
}

// finishSession closes the wake-to-sleep cycle and reports the outcome.
func finishSession(eng *engine, persona string, interactive bool) {
	evolved := eng.manager.OnCycleExit(context.Background(), persona)

	if !interactive {
		return
	}
	if evolved {
		fmt.Printf("\n%s's personality evolved.\n", persona)
	}
	st := eng.manager.Status(persona)
	fmt.Printf("Session saved — %d interactions, familiarity %d/100.\n",
		st.InteractionCount, st.Familiarity)
}

// startAutoSave runs the configured cron schedule flushing all loaded
// personas; the returned stop function halts the scheduler.
func startAutoSave(eng *engine) func() {
	spec := eng.cfg.Session.AutoSaveSchedule
	if spec == "" {
		return func() {}
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := eng.manager.SaveAll(); err != nil {
			log.Printf("[session] auto-save: %v", err)
		}
	}); err != nil {
		log.Printf("[session] invalid auto-save schedule %q: %v", spec, err)
		return func() {}
	}

	c.Start()
	return func() { c.Stop() }
}

// watchConfig reloads the config file when it changes on disk, so context
// budgets can be tuned mid-session. Returns a stop function.
func watchConfig(eng *engine) func() {
	path, err := config.Path()
	if err != nil {
		return func() {}
	}
	if _, err := os.Stat(path); err != nil {
		return func() {}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return func() {}
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return func() {}
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					eng.reloadConfig()
					log.Printf("[session] config reloaded")
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() { _ = watcher.Close() }
}
