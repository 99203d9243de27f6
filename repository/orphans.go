package repository

import (
	"context"
	"fmt"

	"soundcatalog/logger"
	"soundcatalog/storage"
)

// OrphanReconciler 找出对象存储中没有任何曲目引用的文件。
// 来源包括：AttachBlob 失败的上传、被覆盖的旧文件、已删除曲目的文件
type OrphanReconciler struct {
	tracks  TrackRepository
	objects storage.ObjectStore
}

func NewOrphanReconciler(tracks TrackRepository, objects storage.ObjectStore) *OrphanReconciler {
	return &OrphanReconciler{tracks: tracks, objects: objects}
}

// FindOrphanBlobs lists objects whose key no track references. The listing and
// the track scan are not a snapshot; an upload racing with this call can show
// up as an orphan until its attach step completes.
func (o *OrphanReconciler) FindOrphanBlobs(ctx context.Context) ([]storage.ObjectInfo, error) {
	objects, err := o.objects.ListObjects(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	tracks, err := o.tracks.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	referenced := make(map[string]struct{}, len(tracks))
	for _, t := range tracks {
		if t.FileKey != "" {
			referenced[t.FileKey] = struct{}{}
		}
	}

	orphans := make([]storage.ObjectInfo, 0)
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; !ok {
			orphans = append(orphans, obj)
		}
	}
	return orphans, nil
}

// RemoveOrphanBlobs deletes every orphan found by FindOrphanBlobs and returns
// the removed keys. It stops at the first failed delete.
func (o *OrphanReconciler) RemoveOrphanBlobs(ctx context.Context) ([]string, error) {
	orphans, err := o.FindOrphanBlobs(ctx)
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0, len(orphans))
	for _, obj := range orphans {
		if err := o.objects.DeleteObject(ctx, obj.Key); err != nil {
			return removed, fmt.Errorf("failed to delete orphan %s: %w", obj.Key, err)
		}
		removed = append(removed, obj.Key)
		logger.Info("Orphan blob removed", logger.String("key", obj.Key))
	}
	return removed, nil
}
