package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/linestate/internal/engine/buffer"
	"github.com/dshills/linestate/internal/engine/tracking"
	"github.com/dshills/linestate/internal/highlight/statecache"
	"github.com/dshills/linestate/internal/logging"
	"github.com/dshills/linestate/internal/lsp"
)

// maxNotification is the longest didChange line replay accepts.
const maxNotification = 16 << 20

type replayFlags struct {
	at     string
	lang   string
	verify bool
	utf8   bool
}

// replayTotals accumulates reparse work across a replay.
type replayTotals struct {
	notifications int
	batches       int
	edits         int
	skipped       int
	work          statecache.ReparseStats
}

func newReplayCommand(g *globals) *cobra.Command {
	flags := &replayFlags{}

	cmd := &cobra.Command{
		Use:   "replay FILE CHANGES",
		Short: "Replay didChange notifications against a file",
		Long: `Load FILE, then apply the textDocument/didChange notifications in CHANGES,
one JSON object per line, keeping the line-state cache up to date. Each
notification reports how many lines were tokenized. With --at, a position is
tracked through the edits and its scopes are printed after every notification.
With --verify, the cache is compared against a full rebuild at the end.`,
		Example: `  linestate replay main.go edits.jsonl
  linestate replay main.go edits.jsonl --at 10:0 --verify`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				tracked buffer.Point
				track   = flags.at != ""
			)
			if track {
				p, err := buffer.ParsePoint(flags.at)
				if err != nil {
					return err
				}
				tracked = p
			}

			changes, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[1], err)
			}
			defer changes.Close()

			sess, err := g.open(cmd.Context(), args[0], flags.lang)
			if err != nil {
				return err
			}
			defer sess.Close()

			if track {
				tracked = sess.doc.ValidatePosition(tracked)
			}

			totals := &replayTotals{}
			sub := sess.doc.Subscribe(func(ev buffer.ChangeEvent) {
				batch := sess.ctrl.LastBatch()
				totals.batches++
				totals.edits += batch.Edits
				totals.skipped += batch.Skipped
				totals.work.Add(batch.ReparseStats)
				if track {
					tracked = trackPoint(tracked, ev.ContentChanges)
				}
			})
			defer sub.Unsubscribe()

			enc := lsp.EncodingUTF16
			if flags.utf8 {
				enc = lsp.EncodingUTF8
			}

			out := cmd.OutOrStdout()
			styles := g.styles(out)

			scanner := bufio.NewScanner(changes)
			scanner.Buffer(make([]byte, 0, 64*1024), maxNotification)
			lineNo := 0
			for scanner.Scan() {
				lineNo++
				line := bytes.TrimSpace(scanner.Bytes())
				if len(line) == 0 {
					continue
				}

				params, err := lsp.ParseDidChange(line)
				if err != nil {
					return fmt.Errorf("%s:%d: %w", args[1], lineNo, err)
				}
				before := totals.work
				if _, err := lsp.ApplyDidChange(sess.doc, params, enc); err != nil {
					return fmt.Errorf("%s:%d: %w", args[1], lineNo, err)
				}
				totals.notifications++

				logging.Default().Debug("notification applied",
					logging.FieldLine, lineNo,
					logging.FieldVersion, sess.doc.Version(),
					logging.FieldEdits, len(params.ContentChanges))

				printStep(out, styles, lineNo, sess.doc.Version(), before, totals.work)
				if track {
					if scope, ok := sess.svc.ScopeAt(sess.doc, tracked); ok {
						printScope(out, styles, tracked, scope)
					}
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}

			printSummary(out, styles, totals, sess.doc.LineCount())

			if flags.verify {
				if err := sess.ctrl.Verify(); err != nil {
					fmt.Fprintln(out, styles.Failure.Render("verify: "+err.Error()))
					return errors.Join(ErrVerifyFailed, err)
				}
				fmt.Fprintln(out, styles.Success.Render("verify: ok"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.at, "at", "", "track position LINE:COL through the edits")
	cmd.Flags().StringVar(&flags.lang, "lang", "", "language id or scope name, overriding detection")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "compare the cache with a full rebuild at the end")
	cmd.Flags().BoolVar(&flags.utf8, "utf8", false, "positions count bytes instead of UTF-16 code units")

	return cmd
}

// trackPoint moves p across one batch of edits.
func trackPoint(p buffer.Point, changes []buffer.ContentChange) buffer.Point {
	for _, c := range buffer.SortDescending(changes) {
		d, err := tracking.ComputeDelta(c.Range, c.Text)
		if err != nil {
			continue
		}
		p = tracking.TranslatePosition(p, d)
	}
	return p
}

func printStep(w io.Writer, styles *Styles, lineNo, version int, before, after statecache.ReparseStats) {
	fmt.Fprintf(w, "%s version %d: %d requested, %d cascaded\n",
		styles.Location.Render(fmt.Sprintf("#%d", lineNo)),
		version,
		after.Requested-before.Requested,
		after.Cascaded-before.Cascaded)
}

func printSummary(w io.Writer, styles *Styles, t *replayTotals, lines int) {
	fmt.Fprintf(w, "%s %d notifications, %d batches, %d edits",
		styles.Heading.Render("replayed"),
		t.notifications, t.batches, t.edits)
	if t.skipped > 0 {
		fmt.Fprintf(w, ", %s", styles.Failure.Render(fmt.Sprintf("%d skipped", t.skipped)))
	}
	fmt.Fprintf(w, "; %d lines tokenized (%d cascaded) over %d lines\n",
		t.work.Requested+t.work.Cascaded, t.work.Cascaded, lines)
}
