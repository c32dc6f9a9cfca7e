package database

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AlexTLDR/rsvp/internal/guest"
)

// Guestlist columns, in output order.
const (
	colGroup  = "group"
	colFirst  = "first"
	colLast   = "last"
	colChild  = "child"
	colAttend = "attend"
	colMeal   = "meal"
	colMsg    = "msg"
)

var header = []string{colGroup, colFirst, colLast, colChild, colAttend, colMeal, colMsg}

var requiredCols = []string{colGroup, colFirst, colLast}

// ReadGuests parses a guestlist CSV with a header row. Only the group, first
// and last columns are required; a missing attend column means the guest has
// not answered.
func ReadGuests(r io.Reader) ([]guest.Guest, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.FieldsPerRecord = -1

	colIndex, err := readHeader(reader)
	if err != nil {
		return nil, err
	}

	var guests []guest.Guest
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return nil, &ParseError{Line: csvErr.StartLine, Err: csvErr.Err}
			}
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		g, err := parseRow(row, colIndex, line)
		if err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}

	return guests, nil
}

// WriteGuests encodes guests as CSV rows under the standard header.
func WriteGuests(w io.Writer, guests []guest.Guest) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, g := range guests {
		if err := writer.Write(formatRow(g)); err != nil {
			return fmt.Errorf("failed to write `%s`: %w", g.User.Name(), err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// skipBOM drops the byte order mark spreadsheet exports put in front of the
// header.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if c, _, err := br.ReadRune(); err == nil && c != '\ufeff' {
		_ = br.UnreadRune()
	}
	return br
}

func readHeader(reader *csv.Reader) (map[string]int, error) {
	row, err := reader.Read()
	if err == io.EOF {
		return nil, &ParseError{Line: 1, Err: errors.New("missing header")}
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int, len(row))
	for i, col := range row {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range requiredCols {
		if _, ok := colIndex[col]; !ok {
			return nil, &ParseError{Line: 1, Column: col, Err: errors.New("missing required column")}
		}
	}

	return colIndex, nil
}

func parseRow(row []string, colIndex map[string]int, line int) (guest.Guest, error) {
	fail := func(col string, err error) (guest.Guest, error) {
		return guest.Guest{}, &ParseError{Line: line, Column: col, Err: err}
	}

	group, err := strconv.ParseUint(getColumn(row, colIndex, colGroup), 10, 0)
	if err != nil {
		return fail(colGroup, err)
	}

	var child bool
	if s := getColumn(row, colIndex, colChild); s != "" {
		child, err = strconv.ParseBool(s)
		if err != nil {
			return fail(colChild, err)
		}
	}

	attend, err := guest.ParseAttend(getColumn(row, colIndex, colAttend))
	if err != nil {
		return fail(colAttend, err)
	}
	meal, err := guest.ParseMeal(getColumn(row, colIndex, colMeal))
	if err != nil {
		return fail(colMeal, err)
	}

	reply := guest.Reply{Attend: attend, Meal: meal, Msg: getColumn(row, colIndex, colMsg)}
	reply.Validate()

	return guest.Guest{
		Group: guest.Group(group),
		User:  guest.NewUser(getColumn(row, colIndex, colFirst), getColumn(row, colIndex, colLast)),
		Child: child,
		Reply: reply,
	}, nil
}

func formatRow(g guest.Guest) []string {
	return []string{
		strconv.FormatUint(uint64(g.Group), 10),
		g.User.First,
		g.User.Last,
		strconv.FormatBool(g.Child),
		g.Reply.Attend.String(),
		g.Reply.Meal.String(),
		g.Reply.Msg,
	}
}

// getColumn safely retrieves a column value from a row.
func getColumn(row []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(row) {
		return row[idx]
	}
	return ""
}
