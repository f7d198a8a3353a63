package replay

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Report accumulates the outcome of a replay run.
type Report struct {
	Records []CommitRecord
	Started time.Time
}

func NewReport() *Report {
	return &Report{Started: time.Now()}
}

func (r *Report) Add(rec CommitRecord) {
	r.Records = append(r.Records, rec)
}

// Last returns the most recently committed changeset ID, or 0 when
// nothing was committed. After a mid-run failure the operator resumes
// from the next ID.
func (r *Report) Last() int {
	if len(r.Records) == 0 {
		return 0
	}
	return r.Records[len(r.Records)-1].Changeset
}

// Render writes the per-changeset table followed by a summary line.
func (r *Report) Render(w io.Writer) {
	if len(r.Records) == 0 {
		fmt.Fprintln(w, "no changesets replayed")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Changeset", "Commit", "Files", "Renames", "Took"})
	for _, rec := range r.Records {
		t.AppendRow(table.Row{
			rec.Changeset,
			shortHash(rec.Hash),
			rec.Files,
			rec.Renames,
			rec.Elapsed.Round(time.Millisecond),
		})
	}
	t.Render()

	fmt.Fprintf(w, "%s changesets replayed in %s\n",
		humanize.Comma(int64(len(r.Records))),
		time.Since(r.Started).Round(time.Second))
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
