package service

import (
	"niyamtrack/internal/models"
	"niyamtrack/internal/niyam"
	"niyamtrack/internal/progress"
)

// Summary is the aggregate view of one account's progress
type Summary struct {
	AccountKey    string                 `json:"accountKey"`
	AgeGroup      string                 `json:"ageGroup"`
	AllTimeTotal  int                    `json:"allTimeTotal"`
	Streak        int                    `json:"streak"`
	Last7Days     []progress.DayPoints   `json:"last7Days"`
	NiyamProgress progress.NiyamProgress `json:"niyamProgress"`
	NiyamList     []niyam.Item           `json:"niyamList"`
}

// SummaryService computes progress summaries
type SummaryService struct {
	store progress.Store
}

// NewSummaryService creates the summary service
func NewSummaryService(store progress.Store) *SummaryService {
	return &SummaryService{store: store}
}

// Build assembles the full summary for one account. The account's legacy
// data is migrated first so pre-account entries show up in the totals.
func (s *SummaryService) Build(account models.Account) (*Summary, error) {
	accountKey := progress.AccountKey(account.PhoneNumber, account.DOB)
	if err := progress.MigrateLegacyData(s.store, accountKey); err != nil {
		return nil, err
	}

	list := niyam.ListForDOB(account.DOB)
	agg := progress.NewAggregator(s.store)

	total, err := agg.AllTimeTotal(accountKey, list)
	if err != nil {
		return nil, err
	}
	streak, err := agg.Streak(accountKey)
	if err != nil {
		return nil, err
	}
	last7, err := agg.Last7Days(accountKey, list)
	if err != nil {
		return nil, err
	}
	perNiyam, err := agg.PerNiyam(accountKey, list)
	if err != nil {
		return nil, err
	}

	return &Summary{
		AccountKey:    accountKey,
		AgeGroup:      niyam.AgeGroupLabel(niyam.AgeGroupForDOB(account.DOB)),
		AllTimeTotal:  total,
		Streak:        streak,
		Last7Days:     last7,
		NiyamProgress: perNiyam,
		NiyamList:     list,
	}, nil
}
