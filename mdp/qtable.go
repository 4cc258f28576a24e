package mdp

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const ColumnState = "state"

type QValue struct {
	Action Action
	Value  float64
}

type QRow struct {
	State  State
	Values []QValue
}

// Value returns the first value recorded for action a in this row.
func (r QRow) Value(a Action) (float64, bool) {
	for _, v := range r.Values {
		if v.Action == a {
			return v.Value, true
		}
	}
	return 0, false
}

// QTable is a learned value table. Every column other than state is read as
// the value of one action.
type QTable struct {
	Actions []Action
	Rows    []QRow
}

// Values flattens every parsed cell of the table into one sample slice.
func (q *QTable) Values() []float64 {
	var out []float64
	for _, row := range q.Rows {
		for _, v := range row.Values {
			out = append(out, v.Value)
		}
	}
	return out
}

func (q *QTable) NumStates() int {
	return len(q.Rows)
}

func LoadQTable(r io.Reader) (*QTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("q-table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read q-table header: %w", err)
	}

	stateIdx := -1
	q := &QTable{}
	columns := make([]Action, len(first))
	for i, name := range first {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == ColumnState && stateIdx < 0 {
			stateIdx = i
			continue
		}
		columns[i] = Action(name)
		q.Actions = append(q.Actions, Action(name))
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("failed to read q-table: %w", err)
		}

		row := QRow{Values: make([]QValue, 0, len(q.Actions))}
		for i, cell := range record {
			if i == stateIdx {
				row.State = State(strings.TrimSpace(cell))
				continue
			}
			if i >= len(columns) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			row.Values = append(row.Values, QValue{Action: columns[i], Value: v})
		}
		q.Rows = append(q.Rows, row)
	}
	return q, nil
}

func ReadQTable(path string) (*QTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadQTable(f)
}
