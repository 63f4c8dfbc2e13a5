package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

const (
	backupPrefix = "recipes-"
	backupSuffix = ".db"
	backupStamp  = "20060102T150405Z"
)

// BackupKey names a snapshot taken at t. Keys sort in time order.
func BackupKey(prefix string, t time.Time) string {
	name := backupPrefix + t.UTC().Format(backupStamp) + backupSuffix
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// ListBackups returns the snapshots under prefix, oldest first. Unrelated
// objects sharing the prefix are skipped.
func ListBackups(ctx context.Context, svc Service, bucket, prefix string) ([]ObjectInfo, error) {
	listPrefix := strings.Trim(prefix, "/")
	if listPrefix != "" {
		listPrefix += "/"
	}
	objects, err := svc.ListObjects(ctx, bucket, listPrefix)
	if err != nil {
		return nil, err
	}

	backups := make([]ObjectInfo, 0, len(objects))
	for _, obj := range objects {
		name := strings.TrimPrefix(obj.Key, listPrefix)
		if strings.Contains(name, "/") || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		backups = append(backups, obj)
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].Key < backups[j].Key })
	return backups, nil
}

// PruneBackups deletes all but the newest keep snapshots and returns the
// removed keys. keep <= 0 disables pruning.
func PruneBackups(ctx context.Context, svc Service, bucket, prefix string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	backups, err := ListBackups(ctx, svc, bucket, prefix)
	if err != nil {
		return nil, err
	}
	if len(backups) <= keep {
		return nil, nil
	}

	stale := make([]string, 0, len(backups)-keep)
	for _, obj := range backups[:len(backups)-keep] {
		stale = append(stale, obj.Key)
	}
	if err := svc.DeleteObjects(ctx, bucket, stale); err != nil {
		return nil, fmt.Errorf("prune backups: %w", err)
	}
	return stale, nil
}
