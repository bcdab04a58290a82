package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/docuflow/docuflow/internal/application/port"
)

// documentNumberFormat is DOC-YYYYMM-NNNN, tenant-scoped and sequential
// within a month.
const documentNumberPrefix = "DOC"

// numberSequencer hands out document numbers. Assignment is serialized
// behind a per-(company, month) lock so two concurrent creations in the
// same tenant and month cannot compute the same sequence.
type numberSequencer struct {
	docRepo port.DocumentRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newNumberSequencer(docRepo port.DocumentRepository) *numberSequencer {
	return &numberSequencer{
		docRepo: docRepo,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *numberSequencer) lockFor(companyID int64, period string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf("%d-%s", companyID, period)
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Next computes the next document number for the company at the given
// time: the trailing digits of the last number assigned in the same
// month, incremented and zero-padded to four digits.
func (s *numberSequencer) Next(ctx context.Context, companyID int64, now time.Time) (string, error) {
	period := now.Format("200601")
	prefix := fmt.Sprintf("%s-%s-", documentNumberPrefix, period)

	l := s.lockFor(companyID, period)
	l.Lock()
	defer l.Unlock()

	last, err := s.docRepo.LastDocumentNumber(ctx, companyID, prefix)
	if err != nil {
		return "", fmt.Errorf("look up last document number: %w", err)
	}

	seq := 1
	if last != "" {
		if n, err := parseSequence(last); err == nil {
			seq = n + 1
		}
	}

	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// parseSequence extracts the trailing sequence from a document number.
func parseSequence(number string) (int, error) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, fmt.Errorf("malformed document number %q", number)
	}
	return strconv.Atoi(number[idx+1:])
}
