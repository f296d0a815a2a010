package progress

import (
	"context"
	"log"
	"strconv"

	"niyamtrack/internal/models"
)

// SyncResult reports how a best-effort cloud push went. The local write has
// already succeeded by the time this is produced.
type SyncResult string

const (
	SyncOK          SyncResult = "ok"
	SyncUnavailable SyncResult = "unavailable"
)

// CloudSync is the slice of the cloud client the tracker needs. A nil
// CloudSync means local-only mode.
type CloudSync interface {
	UpsertProgress(ctx context.Context, record models.CloudProgressRecord) error
	ProgressByAccount(ctx context.Context, accountKey string) ([]models.CloudProgressRecord, error)
}

// pushProgress mirrors a day to the cloud. Failures are logged and
// swallowed; cloud state is a replica and must never block local writes.
func pushProgress(ctx context.Context, cloud CloudSync, record models.CloudProgressRecord) SyncResult {
	if cloud == nil {
		return SyncUnavailable
	}
	if err := cloud.UpsertProgress(ctx, record); err != nil {
		log.Printf("cloud progress sync failed for %s %s: %v", record.AccountKey, record.DateKey, err)
		return SyncUnavailable
	}
	return SyncOK
}

// PullCloudProgress overwrites local progress for accountKey with whatever
// the cloud has for it. Runs on login so a reinstalled or second device
// picks up the account's history.
func PullCloudProgress(ctx context.Context, s Store, cloud CloudSync, accountKey string) error {
	if cloud == nil {
		return nil
	}

	records, err := cloud.ProgressByAccount(ctx, accountKey)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	entries := make(map[string]string, len(records)*3)
	for _, record := range records {
		if record.DateKey == "" {
			continue
		}
		entries[ScopedKey(PrefixChecklist, accountKey, record.DateKey)] = record.Checklist.Encode()
		entries[ScopedKey(PrefixPoints, accountKey, record.DateKey)] = strconv.Itoa(record.Points)
		entries[ScopedKey(PrefixSubmitted, accountKey, record.DateKey)] = strconv.FormatBool(record.Submitted)
	}
	return s.MultiSet(entries)
}
