package history

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// truncateLen bounds free-text fields recorded in the ledgers.
const truncateLen = 200

// Ledger appends one row per event to three append-only CSV files: matrix
// generations, modifications, and Q&A exchanges. The header row is written
// once when a file does not exist yet.
type Ledger struct {
	matrixFile       string
	modificationFile string
	qaFile           string

	// now is swappable in tests.
	now func() time.Time
}

// New creates a ledger rooted at dir, creating the directory and the CSV
// headers as needed.
func New(dir string) (l *Ledger, err error) {
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		err = errors.Wrapf(err, "failed to create history directory: %s", dir)
		return l, err
	}

	l = &Ledger{
		matrixFile:       filepath.Join(dir, "matrix_history.csv"),
		modificationFile: filepath.Join(dir, "modification_history.csv"),
		qaFile:           filepath.Join(dir, "qa_history.csv"),
		now:              time.Now,
	}

	err = l.ensureHeader(l.matrixFile, []string{"timestamp", "job_title", "job_domain"})
	if err != nil {
		return l, err
	}
	err = l.ensureHeader(l.modificationFile, []string{"timestamp", "modification_type", "request_summary"})
	if err != nil {
		return l, err
	}
	err = l.ensureHeader(l.qaFile, []string{"timestamp", "question", "answer_summary"})
	if err != nil {
		return l, err
	}

	return l, err
}

// LogMatrixGeneration records one matrix generation event.
func (l *Ledger) LogMatrixGeneration(jobTitle, jobDomain string) (err error) {
	err = l.appendRow(l.matrixFile, []string{l.timestamp(), jobTitle, jobDomain})
	return err
}

// LogModification records one modification event with a truncated request.
func (l *Ledger) LogModification(modificationType, request string) (err error) {
	err = l.appendRow(l.modificationFile, []string{l.timestamp(), modificationType, truncate(request)})
	return err
}

// LogQA records one Q&A exchange with truncated question and answer.
func (l *Ledger) LogQA(question, answer string) (err error) {
	err = l.appendRow(l.qaFile, []string{l.timestamp(), truncate(question), truncate(answer)})
	return err
}

// ensureHeader writes the header row if the file does not exist.
func (l *Ledger) ensureHeader(path string, header []string) (err error) {
	_, statErr := os.Stat(path)
	if statErr == nil {
		return err
	}
	if !os.IsNotExist(statErr) {
		err = errors.Wrapf(statErr, "failed to stat history file: %s", path)
		return err
	}

	err = l.appendRow(path, header)
	return err
}

// appendRow appends one CSV row to path.
func (l *Ledger) appendRow(path string, row []string) (err error) {
	var f *os.File
	f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		err = errors.Wrapf(err, "failed to open history file: %s", path)
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	err = w.Write(row)
	if err != nil {
		err = errors.Wrapf(err, "failed to write history row to %s", path)
		return err
	}
	w.Flush()

	err = w.Error()
	if err != nil {
		err = errors.Wrapf(err, "failed to flush history row to %s", path)
	}
	return err
}

// timestamp renders the event time.
func (l *Ledger) timestamp() (ts string) {
	ts = l.now().Format("2006-01-02 15:04:05")
	return ts
}

// truncate bounds free text to the ledger field limit.
func truncate(s string) (out string) {
	out = s
	if len(out) > truncateLen {
		out = out[:truncateLen]
	}
	return out
}
