package prompt

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func newPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	p := New(strings.NewReader(input), &out)
	p.Now = func() time.Time { return time.Date(2024, 6, 14, 15, 30, 0, 0, time.UTC) }
	return p, &out
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-03-01", date(2024, 3, 1), true},
		{" 2024-12-31 ", date(2024, 12, 31), true},
		{"03/01/24", date(2024, 3, 1), true},
		{"3/1/24", date(2024, 3, 1), true},
		{"2024/03/01", time.Time{}, false},
		{"tomorrow", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestAsk_Defaults(t *testing.T) {
	p, _ := newPrompter("aapl\n\n\n")
	in, err := p.Ask()
	require.NoError(t, err)
	assert.Equal(t, "AAPL", in.Symbol)
	assert.True(t, DefaultStart.Equal(in.Start))
	assert.True(t, date(2024, 6, 14).Equal(in.End))
}

func TestAsk_RepromptsOnInvalidInput(t *testing.T) {
	p, out := newPrompter("\nMSFT\nnot-a-date\n01/02/24\n2023-12-31\n2024-02-01\n")
	in, err := p.Ask()
	require.NoError(t, err)
	assert.Equal(t, "MSFT", in.Symbol)
	assert.True(t, date(2024, 1, 2).Equal(in.Start))
	assert.True(t, date(2024, 2, 1).Equal(in.End))

	text := out.String()
	assert.Contains(t, text, "Symbol is required.")
	assert.Contains(t, text, `invalid date "not-a-date"`)
	assert.Contains(t, text, "end date must not be before start date")
}

func TestAsk_EOF(t *testing.T) {
	p, _ := newPrompter("TSLA\n")
	_, err := p.Ask()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
