package model

// Track represents an audio track in the catalog.
type Track struct {
	UID     string `json:"uid"`
	Name    string `json:"name"`
	FileKey string `json:"fileKey"` // Object key of the uploaded audio file, empty until upload
	FileURL string `json:"fileUrl"` // Public URL of the uploaded audio file, empty until upload
}

// HasFile 判断曲目是否已经上传了音频文件
func (t *Track) HasFile() bool {
	return t.FileKey != "" && t.FileURL != ""
}

// WithFile 返回设置了文件信息的副本，名称和 UID 保持不变
func (t *Track) WithFile(fileKey, fileURL string) *Track {
	return &Track{
		UID:     t.UID,
		Name:    t.Name,
		FileKey: fileKey,
		FileURL: fileURL,
	}
}
