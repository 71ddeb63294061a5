package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ID identifies a record. Zero is never assigned.
type ID int64

// ParseID parses a decimal record id.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid record id %q", s)
	}
	return ID(n), nil
}

// String returns the decimal form of id.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Record is one work experience entry. The JSON field names are the
// persisted format and must stay stable.
type Record struct {
	ID          ID       `json:"id"`
	CompanyName string   `json:"companyName"`
	Position    string   `json:"position"`
	JoinDate    Date     `json:"joinDate"`
	LeaveDate   Date     `json:"leaveDate"`
	Duration    Duration `json:"totalExperienceincompany"`
}

// Ongoing reports whether the record has no leave date.
func (r Record) Ongoing() bool {
	return r.LeaveDate.IsZero()
}

// Input returns the editable fields of r in form.
func (r Record) Input() Input {
	return Input{
		CompanyName: r.CompanyName,
		Position:    r.Position,
		JoinDate:    r.JoinDate.String(),
		LeaveDate:   r.LeaveDate.String(),
	}
}

// Input holds the user-entered fields of a record.
//
// Dates are YYYY-MM-DD strings. An empty LeaveDate, or "Present", means the
// position is ongoing.
type Input struct {
	CompanyName string `json:"companyName" yaml:"companyName"`
	Position    string `json:"position" yaml:"position"`
	JoinDate    string `json:"joinDate" yaml:"joinDate"`
	LeaveDate   string `json:"leaveDate,omitempty" yaml:"leaveDate,omitempty"`
}

// buildRecord validates in against today and returns a record with its
// duration computed. The id is left for the caller to assign.
func buildRecord(in Input, today Date) (Record, error) {
	company := normalizeText(in.CompanyName)
	position := normalizeText(in.Position)
	joinRaw := strings.TrimSpace(in.JoinDate)
	leaveRaw := strings.TrimSpace(in.LeaveDate)

	switch {
	case company == "":
		return Record{}, missingField("companyName")
	case position == "":
		return Record{}, missingField("position")
	case joinRaw == "":
		return Record{}, missingField("joinDate")
	}

	join, err := ParseDate(joinRaw)
	if err != nil {
		return Record{}, invalidDate("joinDate", joinRaw)
	}

	var leave Date
	if leaveRaw != "" && leaveRaw != Present {
		leave, err = ParseDate(leaveRaw)
		if err != nil {
			return Record{}, invalidDate("leaveDate", leaveRaw)
		}
	}

	effective := leave
	if effective.IsZero() {
		effective = today
	}
	if join.After(effective) {
		return Record{}, &ValidationError{
			Field:   "joinDate",
			Message: "joining date cannot be after leaving date",
		}
	}

	return Record{
		CompanyName: company,
		Position:    position,
		JoinDate:    join,
		LeaveDate:   leave,
		Duration:    Between(join, effective),
	}, nil
}

// normalizeText trims surrounding whitespace and applies Unicode NFC so that
// composed and decomposed spellings of a name are stored identically.
func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
