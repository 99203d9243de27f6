package storage

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

// BucketStats 存储桶统计信息
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
	ByType       map[string]int64 // 按文件类型统计的大小
}

// Summarize 汇总对象列表的统计信息
func Summarize(objects []ObjectInfo) *BucketStats {
	stats := &BucketStats{ByType: make(map[string]int64)}
	for _, obj := range objects {
		stats.TotalObjects++
		stats.TotalSize += obj.Size
		if obj.LastModified.After(stats.LastModified) {
			stats.LastModified = obj.LastModified
		}

		contentType := obj.ContentType
		if contentType == "" {
			contentType = inferContentType(obj.Key)
		}
		stats.ByType[contentType] += obj.Size
	}
	return stats
}

// inferContentType 从文件名推断内容类型
func inferContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".mp3", ".wav", ".flac", ".m4a", ".ogg":
		return "audio"
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return "image"
	default:
		return "other"
	}
}

// GroupByDir 按第一级目录（即曲目 UID）分组，返回排序后的目录名
func GroupByDir(objects []ObjectInfo) ([]string, map[string][]ObjectInfo) {
	groups := make(map[string][]ObjectInfo)
	for _, obj := range objects {
		dir, _, found := strings.Cut(obj.Key, "/")
		if !found {
			dir = ""
		}
		groups[dir] = append(groups[dir], obj)
	}

	dirs := make([]string, 0, len(groups))
	for dir := range groups {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, groups
}

// FormatSize 格式化文件大小
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
