// Package driver runs one spreadsheet translation pass: it iterates the data
// rows sequentially, classifies each source cell, sends the ones that need
// translation through the inference gateway paragraph by paragraph, applies
// the post-processing corrections, and writes the result into the
// destination column.
//
// A Run is single-use. At most one generation is in flight at a time; the
// only state shared with other goroutines is the stop flag and the
// cancellation of the in-flight request, both owned by Stop.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/valpere/tablotran/internal/classifier"
	"github.com/valpere/tablotran/internal/gateway"
	"github.com/valpere/tablotran/internal/postprocess"
	"github.com/valpere/tablotran/internal/prompt"
	"github.com/valpere/tablotran/internal/validator"
)

// Table is the grid the driver reads and writes. Rows are 1-indexed and
// columns are addressed by letter, matching spreadsheet conventions.
type Table interface {
	RowCount() int
	Get(row int, col string) (string, error)
	Set(row int, col string, value string) error
}

// State of a run.
type State int32

const (
	StateIdle State = iota
	StateLoading
	StateRunning
	StateStopped
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Options configures one run.
type Options struct {
	SourceCol string
	DestCol   string
	StartRow  int
	// Temperature for generation; DefaultTemperature when zero.
	Temperature float64
}

const (
	// DefaultTemperature keeps generation deterministic-leaning.
	DefaultTemperature = 0.3

	// maxCharsSlack is added to the paragraph length when capping
	// generation: enough room for translation expansion, tight enough to
	// stop runaway output.
	maxCharsSlack = 50

	// journalCap bounds the audit journal; oldest entries are evicted first.
	journalCap = 40
)

// Record pairs one source cell with what was written to the destination.
type Record struct {
	Seq    int
	Source string
	Output string
}

// ErrStopped is returned by Execute when the run was cancelled via Stop.
// Rows processed before the stop are already written into the table.
var ErrStopped = errors.New("run stopped")

// Run is the context of one translation pass over one file.
type Run struct {
	ID string

	gw  gateway.Gateway
	val *validator.Validator

	state   atomic.Int32
	stop    atomic.Bool
	cancel  atomic.Value // context.CancelFunc for the in-flight generation
	current atomic.Int64
	total   atomic.Int64

	// Mutated only by the Execute goroutine.
	seq     int
	journal []Record
}

// New creates a run context. val may be nil to skip output language
// validation.
func New(gw gateway.Gateway, val *validator.Validator) *Run {
	return &Run{
		ID:  uuid.New().String(),
		gw:  gw,
		val: val,
	}
}

func (r *Run) State() State {
	return State(r.state.Load())
}

// Progress returns the last processed row and the total row count.
func (r *Run) Progress() (current, total int64) {
	return r.current.Load(), r.total.Load()
}

// Cells returns the number of destination cells written so far.
func (r *Run) Cells() int {
	return r.seq
}

// Journal returns the most recent translation records, oldest first.
func (r *Run) Journal() []Record {
	out := make([]Record, len(r.journal))
	copy(out, r.journal)
	return out
}

// Stop requests cooperative cancellation. The flag is re-read at every row
// boundary, and the in-flight generation is interrupted; the current row is
// left untouched along with the remaining ones.
func (r *Run) Stop() {
	r.stop.Store(true)
	if c, ok := r.cancel.Load().(context.CancelFunc); ok && c != nil {
		c()
	}
}

// Execute runs the translation pass over table. On ErrStopped or a per-cell
// generation failure the rows written so far remain in the table, so the
// caller can still serialize a partial result.
func (r *Run) Execute(ctx context.Context, table Table, opts Options) error {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateLoading)) {
		return fmt.Errorf("run %s already started", r.ID)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.cancel.Store(cancel)

	if err := r.gw.IsAvailable(runCtx); err != nil {
		r.state.Store(int32(StateFailed))
		return fmt.Errorf("inference backend unavailable: %w", err)
	}

	if opts.StartRow < 1 {
		opts.StartRow = 1
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}

	last := table.RowCount()
	r.total.Store(int64(last))
	r.state.Store(int32(StateRunning))

	for row := opts.StartRow; row <= last; row++ {
		if r.stop.Load() {
			r.state.Store(int32(StateStopped))
			return ErrStopped
		}

		source, err := table.Get(row, opts.SourceCol)
		if err != nil {
			r.state.Store(int32(StateFailed))
			return fmt.Errorf("failed to read row %d: %w", row, err)
		}

		dec := classifier.Classify(source)
		if dec.Kind == classifier.Skip {
			r.current.Store(int64(row))
			continue
		}

		output := dec.Text
		if dec.Kind == classifier.Translate {
			fmt.Fprintf(os.Stderr, "Translating row %d of %d\n", row, last)

			raw, err := r.translateCell(runCtx, dec.Text, temperature)
			if err != nil {
				// An error after a stop request is the interrupt
				// taking effect, not a gateway failure.
				if r.stop.Load() {
					r.state.Store(int32(StateStopped))
					return ErrStopped
				}
				r.state.Store(int32(StateFailed))
				return fmt.Errorf("generation failed at row %d: %w", row, err)
			}

			var warnings []string
			output, warnings = postprocess.Normalize(dec.Text, raw)
			for _, w := range warnings {
				fmt.Fprintf(os.Stderr, "Warning: row %d: %s\n", row, w)
			}

			if r.val != nil {
				if ok, verr := r.val.IsValid(output); !ok && verr != nil {
					fmt.Fprintf(os.Stderr, "Warning: row %d: %v\n", row, verr)
				}
			}
		}

		if err := table.Set(row, opts.DestCol, output); err != nil {
			r.state.Store(int32(StateFailed))
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		r.record(source, output)
		r.current.Store(int64(row))
	}

	r.state.Store(int32(StateCompleted))
	return nil
}

// translateCell resets the conversation, then translates the cell paragraph
// by paragraph, strictly in order, and reassembles the outputs with the
// original blank-line positions.
func (r *Run) translateCell(ctx context.Context, text string, temperature float64) (string, error) {
	r.gw.Reset()

	pieces := prompt.Segment(text)
	outputs := make([]string, len(pieces))
	for i, p := range pieces {
		if p.Text == "" {
			continue
		}

		stream, err := r.gw.Generate(ctx, p.Prompt, gateway.Options{
			Temperature: temperature,
			MaxChars:    utf8.RuneCountInString(p.Text) + maxCharsSlack,
		})
		if err != nil {
			return "", err
		}
		raw, err := gateway.Collect(stream)
		if err != nil {
			return "", err
		}
		outputs[i] = postprocess.Clean(raw)
	}
	return prompt.Join(outputs), nil
}

func (r *Run) record(source, output string) {
	r.seq++
	r.journal = append(r.journal, Record{Seq: r.seq, Source: source, Output: output})
	if len(r.journal) > journalCap {
		r.journal = r.journal[1:]
	}
}
