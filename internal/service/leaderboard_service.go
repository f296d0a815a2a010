package service

import (
	"context"
	"log"
	"sort"
	"strings"

	"niyamtrack/internal/cloud"
	"niyamtrack/internal/models"
	"niyamtrack/internal/niyam"
	"niyamtrack/internal/progress"
	"niyamtrack/internal/repository"
)

// LeaderboardService ranks the current user's peers by all-time points.
// Peers are the accounts sharing the user's hoti and age band.
type LeaderboardService struct {
	store    progress.Store
	accounts *repository.AccountRepository
	cloud    cloud.Client
}

// NewLeaderboardService creates the leaderboard service
func NewLeaderboardService(store progress.Store, accounts *repository.AccountRepository, cloudClient cloud.Client) *LeaderboardService {
	return &LeaderboardService{store: store, accounts: accounts, cloud: cloudClient}
}

// Leaderboard holds the ranked entries plus the peer-group labels
type Leaderboard struct {
	HotiNo   string                    `json:"hotiNo"`
	AgeGroup string                    `json:"ageGroup"`
	Entries  []models.LeaderboardEntry `json:"entries"`
}

// Build computes the leaderboard for the account identified by accountKey.
// The cloud accounts list refreshes the local cache when reachable; totals
// prefer the cloud copy of each peer's progress and fall back to local
// entries. Ties keep their relative order.
func (s *LeaderboardService) Build(ctx context.Context, current models.Account) (*Leaderboard, error) {
	currentKey := progress.AccountKey(current.PhoneNumber, current.DOB)
	currentHoti := strings.TrimSpace(current.HotiNo)
	currentAgeGroup := niyam.AgeGroupForDOB(current.DOB)

	accounts, err := s.accounts.List()
	if err != nil {
		return nil, err
	}
	if s.cloud != nil {
		cloudAccounts, err := s.cloud.ListAccounts(ctx)
		if err != nil {
			log.Printf("cloud accounts list failed, using local cache: %v", err)
		} else if len(cloudAccounts) > 0 {
			accounts = cloudAccounts
			for _, a := range cloudAccounts {
				if err := s.accounts.Upsert(a, ""); err != nil {
					log.Printf("failed to cache cloud account: %v", err)
					break
				}
			}
		}
	}

	var peers []models.Account
	for _, a := range accounts {
		key := progress.AccountKey(a.PhoneNumber, a.DOB)
		if currentHoti != "" && strings.TrimSpace(a.HotiNo) != currentHoti && key != currentKey {
			continue
		}
		if niyam.AgeGroupForDOB(a.DOB) != currentAgeGroup {
			continue
		}
		peers = append(peers, a)
	}

	entries := make([]models.LeaderboardEntry, 0, len(peers))
	for _, peer := range peers {
		peerKey := progress.AccountKey(peer.PhoneNumber, peer.DOB)
		total, err := s.totalFor(ctx, peerKey, peer.DOB)
		if err != nil {
			return nil, err
		}
		entries = append(entries, models.LeaderboardEntry{
			Name:          displayName(peer),
			TotalPoints:   total,
			IsCurrentUser: peerKey == currentKey,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})

	return &Leaderboard{
		HotiNo:   currentHoti,
		AgeGroup: niyam.AgeGroupLabel(currentAgeGroup),
		Entries:  entries,
	}, nil
}

// totalFor sums a peer's all-time points, cloud copy first
func (s *LeaderboardService) totalFor(ctx context.Context, accountKey, dob string) (int, error) {
	if s.cloud != nil {
		records, err := s.cloud.ProgressByAccount(ctx, accountKey)
		if err != nil {
			log.Printf("cloud progress fetch failed for %s, using local: %v", accountKey, err)
		} else if len(records) > 0 {
			total := 0
			for _, record := range records {
				total += record.Points
			}
			return total, nil
		}
	}

	agg := progress.NewAggregator(s.store)
	return agg.AllTimeTotal(accountKey, niyam.ListForDOB(dob))
}

func displayName(a models.Account) string {
	if a.FullName != "" {
		return a.FullName
	}
	return strings.TrimSpace(strings.Join([]string{a.FirstName, a.MiddleName, a.LastName}, " "))
}
