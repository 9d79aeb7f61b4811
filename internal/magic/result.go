package magic

import (
	"fmt"
	"iter"
	"time"

	"github.com/tuannm99/kqlmagic/internal"
	"github.com/tuannm99/kqlmagic/internal/render"
	"github.com/tuannm99/kqlmagic/internal/resultset"
)

// Result is a fetched ResultSet plus the magic settings it is shown with.
// Display limit and style are read at render time, so changing them
// re-renders an existing Result without running the query again.
type Result struct {
	*resultset.ResultSet

	Query      string
	Connection string
	Elapsed    time.Duration

	opts *internal.MagicOptions
}

func (r *Result) displayed() *resultset.ResultSet {
	if r.opts == nil {
		return r.ResultSet
	}
	return r.ResultSet.Truncated(r.opts.DisplayLimit)
}

func (r *Result) style() render.Style {
	if r.opts == nil {
		return render.StyleGrid
	}
	return r.opts.RenderStyle()
}

// String renders the text table, honoring the display limit.
func (r *Result) String() string {
	return render.Text(r.displayed(), r.style())
}

// HTML renders the HTML table, honoring the display limit.
func (r *Result) HTML() string {
	return render.HTML(r.displayed())
}

// CSV renders all fetched rows.
func (r *Result) CSV() (string, error) {
	return render.CSV(r.ResultSet)
}

// CSVFile writes all fetched rows to path.
func (r *Result) CSVFile(path string) (*render.CSVFile, error) {
	return render.WriteCSVFile(r.ResultSet, path)
}

func (r *Result) Dict() (map[string][]any, error) {
	return render.Dict(r.ResultSet)
}

func (r *Result) RowDicts() (iter.Seq[map[string]any], error) {
	return render.RowDicts(r.ResultSet)
}

func (r *Result) DataFrame() *render.Frame {
	return render.DataFrame(r.ResultSet)
}

// Bind injects one value list per column into ns.
func (r *Result) Bind(ns render.Namespace) error {
	return render.BindColumns(r.ResultSet, ns)
}

// Output is what a magic run hands back to the host.
type Output struct {
	Result   *Result
	Frame    *render.Frame // set when auto_dataframe is on
	Bound    bool          // columns went into the namespace; nothing to display
	Feedback string
}

// Display returns the value the host should show, or nil.
func (o *Output) Display() any {
	switch {
	case o == nil, o.Bound, o.Result == nil:
		return nil
	case o.Frame != nil:
		return o.Frame
	default:
		return o.Result
	}
}

func formatElapsed(d time.Duration) string {
	d = d.Round(time.Millisecond)
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%02d:%02d.%03d", int64(m), int64(s), int64(d/time.Millisecond))
}
