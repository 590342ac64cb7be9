package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vibe-audio/vibe/catalog"
	"github.com/vibe-audio/vibe/color"
	"github.com/vibe-audio/vibe/icon"
	"github.com/vibe-audio/vibe/playback"
	"github.com/vibe-audio/vibe/style"
	"github.com/vibe-audio/vibe/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().IntP("chapter", "C", -1, "Start from this chapter (1-based) instead of the saved position")
}

// headless prints what the engine reports. It stops the loop when the book
// ends or a chapter turns out to be unplayable.
type headless struct {
	engine *playback.Engine
	stop   context.CancelFunc
	failed bool
}

func (h *headless) Changed(c playback.Change) {
	if c.Has(playback.ChangedChapter) {
		if chapter, ok := h.engine.Chapter(); ok {
			fmt.Printf("%s %s\n", icon.Get(icon.Play), style.Fg(color.Purple)(chapter.Name))
		}
	}

	if c.Has(playback.ChangedState) && h.engine.State() == playback.Ended {
		h.stop()
	}
}

func (h *headless) Notice(n playback.Notice) {
	if n.Text == playback.NoticeLinkUnavailable {
		h.failed = true
		h.stop()
	}

	if n.Warning {
		fmt.Printf("%s %s\n", icon.Get(icon.Fail), style.Fg(color.Yellow)(n.Text))
		return
	}
	fmt.Println(style.Faint(n.Text))
}

// playCmd plays a book without the TUI.
var playCmd = &cobra.Command{
	Use:   "play <book-id>",
	Short: "Play a book from the catalog without the interface",
	Long:  "Play a book from the catalog until it ends or ctrl+c is pressed. The position is saved as it goes.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(playBook(args[0], lo.Must(cmd.Flags().GetInt("chapter"))))
	},
}

func playBook(id string, chapter int) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	erase := util.PrintErasable(fmt.Sprintf("%s Fetching the library...", icon.Get(icon.Progress)))
	library, err := fetchLibrary(ctx)
	erase()
	if err != nil {
		return err
	}

	book, ok := library.Find(catalog.BookID(id))
	if !ok {
		return fmt.Errorf("no book with id %q in the catalog", id)
	}
	if chapter > len(book.Chapters) {
		return fmt.Errorf("%s has %s", book.Title, util.Quantify(len(book.Chapters), "chapter", "chapters"))
	}

	s, err := newSession(false)
	if err != nil {
		return err
	}
	defer s.close()

	h := &headless{engine: s.engine, stop: cancel}
	s.engine.SetObserver(h)

	fmt.Printf("%s %s\n", style.Bold(book.Title), style.Faint(book.Author))

	resume := playback.Resume{AutoPlay: true}
	if chapter > 0 {
		resume.Chapter = chapter - 1
	} else if entry, found, err := s.persist.History.Find(book.ID); err == nil && found {
		resume.Chapter, resume.Time = entry.LastChapter, entry.LastTime
	}

	s.loop.Post(func() {
		s.engine.Open(book, mo.Some(resume))
	})

	if err := s.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	switch {
	case h.failed:
		current, _ := s.engine.Chapter()
		return fmt.Errorf("%s could not be played", current.Name)
	case s.engine.State() == playback.Ended:
		fmt.Printf("%s finished %s\n", icon.Get(icon.Success), book.Title)
	default:
		fmt.Printf("\n%s stopped at %s\n", icon.Get(icon.Pause), util.FormatTime(s.engine.Position()))
	}
	return nil
}
