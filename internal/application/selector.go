package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/bnema/driftbottle/internal/domain"
	"github.com/bnema/driftbottle/internal/ports"
)

// Selector picks the oldest drifting bottle with a raw scan. It reads a
// snapshot, so its pick may be claimed by someone else before the caller acts.
type Selector struct {
	scanner ports.RecordScanner
}

func NewSelector(scanner ports.RecordScanner) *Selector {
	return &Selector{scanner: scanner}
}

func (s *Selector) SelectOldest(ctx context.Context) (Candidate, bool, error) {
	slice := domain.BottleIDSlice()
	records, err := s.scanner.GetProgramRecords(ctx, domain.DriftingBottleFilters(), &slice)
	if err != nil {
		return Candidate{}, false, fmt.Errorf("scan drifting bottles: %w", err)
	}
	if len(records) == 0 {
		return Candidate{}, false, nil
	}

	type scored struct {
		addr domain.Address
		id   domain.BottleID
	}
	scores := make([]scored, 0, len(records))
	for _, record := range records {
		id, err := domain.DecodeBottleID(record.Data)
		if err != nil {
			return Candidate{}, false, fmt.Errorf("bottle %s: %w", record.Address, err)
		}
		scores = append(scores, scored{addr: record.Address, id: id})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].id < scores[j].id })

	oldest := scores[0].addr
	data, err := s.scanner.GetRecord(ctx, oldest)
	if err != nil {
		return Candidate{}, false, fmt.Errorf("fetch bottle %s: %w", oldest, err)
	}
	bottle, err := domain.DecodeBottle(data)
	if err != nil {
		return Candidate{}, false, fmt.Errorf("bottle %s: %w", oldest, err)
	}

	return Candidate{Address: oldest, Bottle: bottle}, true, nil
}

// Drifting returns every drifting bottle, oldest first.
func (s *Selector) Drifting(ctx context.Context) ([]Candidate, error) {
	records, err := s.scanner.GetProgramRecords(ctx, domain.DriftingBottleFilters(), nil)
	if err != nil {
		return nil, fmt.Errorf("scan drifting bottles: %w", err)
	}

	candidates := make([]Candidate, 0, len(records))
	for _, record := range records {
		bottle, err := domain.DecodeBottle(record.Data)
		if err != nil {
			return nil, fmt.Errorf("bottle %s: %w", record.Address, err)
		}
		candidates = append(candidates, Candidate{Address: record.Address, Bottle: bottle})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Bottle.ID < candidates[j].Bottle.ID })

	return candidates, nil
}
