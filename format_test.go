package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrintTable_NonTerminalIsTabSeparated(t *testing.T) {
	// Under `go test` stdout is not a terminal, so rows come out
	// tab-separated without a header line.
	var buf bytes.Buffer

	printTable(&buf, []string{"ID", "NAME"}, [][]string{
		{"kb1", "Support"},
		{"kb2", "Internal Docs"},
	})

	assert.Equal(t, "kb1\tSupport\nkb2\tInternal Docs\n", buf.String())
}

func TestPrintRow_PadsAndTrims(t *testing.T) {
	var buf bytes.Buffer

	printRow(&buf, []string{"a", "bb"}, []int{3, 2})
	assert.Equal(t, "a    bb\n", buf.String())
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "-", formatTime(time.Time{}))

	now := time.Now()
	sameYear := time.Date(now.Year(), time.March, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "Mar  5 14:30", formatTime(sameYear))

	otherYear := time.Date(2019, time.March, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "Mar  5  2019", formatTime(otherYear))
}
