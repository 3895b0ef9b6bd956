// Package prompt collects a chart request interactively from a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"StockChartViewer/internal/model"
)

// DefaultStart is the start date offered when the user leaves it blank.
var DefaultStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

var errEndBeforeStart = errors.New("end date must not be before start date")

// dateLayouts are tried in order; the second is the short form used by the date pickers.
var dateLayouts = []string{time.DateOnly, "01/02/06", "1/2/06"}

// ParseDate accepts YYYY-MM-DD or MM/DD/YY.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD or MM/DD/YY", s)
}

// Input is what the user asked for.
type Input struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// Prompter reads answers line by line and writes questions to Out.
type Prompter struct {
	in  *bufio.Scanner
	Out io.Writer
	Now func() time.Time
}

func New(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(r), Out: w, Now: time.Now}
}

func (p *Prompter) readLine(question string) (string, error) {
	fmt.Fprint(p.Out, question)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// Symbol asks until a non-empty symbol is entered.
func (p *Prompter) Symbol() (string, error) {
	for {
		line, err := p.readLine("Enter stock symbol: ")
		if err != nil {
			return "", err
		}
		if line != "" {
			return strings.ToUpper(line), nil
		}
		fmt.Fprintln(p.Out, "Symbol is required.")
	}
}

// Date asks for a date, returning def on an empty answer.
func (p *Prompter) Date(label string, def time.Time) (time.Time, error) {
	for {
		line, err := p.readLine(fmt.Sprintf("Enter %s date [%s]: ", label, def.Format(time.DateOnly)))
		if err != nil {
			return time.Time{}, err
		}
		if line == "" {
			return def, nil
		}
		d, err := ParseDate(line)
		if err == nil {
			return d, nil
		}
		fmt.Fprintln(p.Out, err)
	}
}

// Ask collects a full request. The end date is asked again while it precedes the start.
func (p *Prompter) Ask() (Input, error) {
	symbol, err := p.Symbol()
	if err != nil {
		return Input{}, err
	}
	start, err := p.Date("start", DefaultStart)
	if err != nil {
		return Input{}, err
	}
	today := model.DateOf(p.Now())
	for {
		end, err := p.Date("end", today)
		if err != nil {
			return Input{}, err
		}
		if !end.Before(start) {
			return Input{Symbol: symbol, Start: start, End: end}, nil
		}
		fmt.Fprintln(p.Out, errEndBeforeStart)
	}
}
