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

const (
	ColumnEpisode = "episode"
	ColumnReward  = "total_reward"
	ColumnSuccess = "success"
	ColumnSteps   = "steps"
)

// RewardAliases are accepted in place of total_reward, in order of preference.
var RewardAliases = []string{ColumnReward, "totalReward"}

var (
	ErrMissingColumn = errors.New("missing column")
	ErrMissingField  = errors.New("missing field")
	ErrNoEpisodes    = errors.New("no valid episodes")
)

type header map[string]int

func newHeader(record []string) header {
	h := make(header, len(record))
	for i, name := range record {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, ok := h[name]; !ok {
			h[name] = i
		}
	}
	return h
}

func (h header) has(name string) bool {
	_, ok := h[name]
	return ok
}

func (h header) field(record []string, name string) (string, error) {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return "", fmt.Errorf("%w %q", ErrMissingField, name)
	}
	v := strings.TrimSpace(record[i])
	if v == "" {
		return "", fmt.Errorf("%w %q", ErrMissingField, name)
	}
	return v, nil
}

func (h header) intField(record []string, name string) (int, error) {
	v, err := h.field(record, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return n, nil
}

// rewardColumn resolves which header column carries the episode reward.
func rewardColumn(record []string, h header) (string, error) {
	for _, alias := range RewardAliases {
		if h.has(alias) {
			return alias, nil
		}
	}
	if len(record) > 1 {
		name := strings.TrimSpace(record[1])
		if name != ColumnEpisode && name != ColumnSuccess && name != ColumnSteps {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: one of %s", ErrMissingColumn, strings.Join(RewardAliases, ", "))
}

type episodeParser struct {
	header       header
	rewardColumn string
	hasSuccess   bool
	hasSteps     bool
}

func (p *episodeParser) parse(record []string) (Episode, error) {
	var e Episode
	var err error

	if e.Number, err = p.header.intField(record, ColumnEpisode); err != nil {
		return e, err
	}

	v, err := p.header.field(record, p.rewardColumn)
	if err != nil {
		return e, err
	}
	reward, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return e, fmt.Errorf("column %q: %w", p.rewardColumn, err)
	}
	if math.IsNaN(reward) || math.IsInf(reward, 0) {
		return e, fmt.Errorf("column %q: non-finite value %q", p.rewardColumn, v)
	}
	e.TotalReward = Reward(reward)

	if p.hasSuccess {
		s, err := p.header.intField(record, ColumnSuccess)
		if err != nil {
			return e, err
		}
		if s != 0 && s != 1 {
			return e, fmt.Errorf("column %q: expected 0 or 1, got %d", ColumnSuccess, s)
		}
		e.Success = s == 1
	}

	if p.hasSteps {
		if e.Steps, err = p.header.intField(record, ColumnSteps); err != nil {
			return e, err
		}
		if e.Steps < 0 {
			return e, fmt.Errorf("column %q: negative step count %d", ColumnSteps, e.Steps)
		}
	}
	return e, nil
}

// LoadTrainingLog parses a training log CSV. Rows that cannot be parsed are
// recorded in TrainingLog.Skipped and do not stop the load.
func LoadTrainingLog(r io.Reader) (*TrainingLog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("training log is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read training log header: %w", err)
	}

	h := newHeader(first)
	if !h.has(ColumnEpisode) {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, ColumnEpisode)
	}
	rewardCol, err := rewardColumn(first, h)
	if err != nil {
		return nil, err
	}

	p := &episodeParser{
		header:       h,
		rewardColumn: rewardCol,
		hasSuccess:   h.has(ColumnSuccess),
		hasSteps:     h.has(ColumnSteps),
	}
	tl := &TrainingLog{
		RewardColumn: rewardCol,
		HasSuccess:   p.hasSuccess,
		HasSteps:     p.hasSteps,
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			tl.Skipped = append(tl.Skipped, SkippedRow{Line: parseErr.StartLine, Reason: err})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read training log: %w", err)
		}

		e, err := p.parse(record)
		if err != nil {
			line, _ := reader.FieldPos(0)
			tl.Skipped = append(tl.Skipped, SkippedRow{Line: line, Reason: err})
			continue
		}
		tl.Episodes = append(tl.Episodes, e)
	}

	if len(tl.Episodes) == 0 {
		return tl, ErrNoEpisodes
	}
	return tl, nil
}

func ReadTrainingLog(path string) (*TrainingLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadTrainingLog(f)
}
