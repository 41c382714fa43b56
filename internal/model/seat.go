package model

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidSeat is returned by ParseSeatKey when the input is neither a
// row label ("A1") nor a "row-col" pair ("0-0").
var ErrInvalidSeat = errors.New("invalid seat")

// SeatKey identifies a seat inside a show's grid.  Row and Col are zero
// based; Row 0 is labelled "A" and Col 0 is seat number 1.
type SeatKey struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Label renders the seat the way it is printed on a ticket, e.g. "A1" or
// "AB12" for grids with more than 26 rows.
func (k SeatKey) Label() string {
	return RowLabel(k.Row) + strconv.Itoa(k.Col+1)
}

func (k SeatKey) String() string { return k.Label() }

// MarshalText encodes the seat as its label so seat sets serialize as
// plain string arrays.
func (k SeatKey) MarshalText() ([]byte, error) { return []byte(k.Label()), nil }

// UnmarshalText accepts any form understood by ParseSeatKey.
func (k *SeatKey) UnmarshalText(b []byte) error {
	parsed, err := ParseSeatKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// RowLabel converts a zero-based row index to letters: 0 -> A, 25 -> Z,
// 26 -> AA.  Negative indices yield an empty string.
func RowLabel(i int) string {
	if i < 0 {
		return ""
	}
	var res []byte
	for i >= 0 {
		res = append([]byte{byte('A' + i%26)}, res...)
		i = i/26 - 1
	}
	return string(res)
}

// maxRowLetters bounds row labels to ZZZ (18278 rows).
const maxRowLetters = 3

// rowIndex is the inverse of RowLabel.
func rowIndex(label string) (int, bool) {
	if label == "" || len(label) > maxRowLetters {
		return 0, false
	}
	n := 0
	for _, r := range label {
		if r < 'A' || r > 'Z' {
			return 0, false
		}
		n = n*26 + int(r-'A'+1)
	}
	return n - 1, true
}

// ParseSeatKey parses "A1" style labels (case-insensitive) and the
// zero-based "row-col" form used by older clients.
func ParseSeatKey(s string) (SeatKey, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return SeatKey{}, ErrInvalidSeat
	}
	if r, c, ok := strings.Cut(s, "-"); ok {
		row, err1 := strconv.Atoi(r)
		col, err2 := strconv.Atoi(c)
		if err1 != nil || err2 != nil || row < 0 || col < 0 {
			return SeatKey{}, fmt.Errorf("%w: %q", ErrInvalidSeat, s)
		}
		return SeatKey{Row: row, Col: col}, nil
	}
	i := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return SeatKey{}, fmt.Errorf("%w: %q", ErrInvalidSeat, s)
	}
	row, ok := rowIndex(s[:i])
	if !ok {
		return SeatKey{}, fmt.Errorf("%w: %q", ErrInvalidSeat, s)
	}
	num, err := strconv.Atoi(s[i:])
	if err != nil || num < 1 {
		return SeatKey{}, fmt.Errorf("%w: %q", ErrInvalidSeat, s)
	}
	return SeatKey{Row: row, Col: num - 1}, nil
}

// ParseSeatKeys parses every entry and fails on the first invalid one.
func ParseSeatKeys(in []string) ([]SeatKey, error) {
	out := make([]SeatKey, 0, len(in))
	for _, s := range in {
		k, err := ParseSeatKey(s)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// SortSeats orders seats row-major in place and returns the slice.
func SortSeats(seats []SeatKey) []SeatKey {
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Col < seats[j].Col
	})
	return seats
}

// UniqueSeats returns a sorted copy of seats without duplicates.
func UniqueSeats(seats []SeatKey) []SeatKey {
	seen := make(map[SeatKey]struct{}, len(seats))
	out := make([]SeatKey, 0, len(seats))
	for _, k := range seats {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return SortSeats(out)
}

// SeatLabels maps seats to their printed labels.
func SeatLabels(seats []SeatKey) []string {
	out := make([]string, len(seats))
	for i, k := range seats {
		out[i] = k.Label()
	}
	return out
}
