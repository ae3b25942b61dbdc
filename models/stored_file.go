package models

import (
	"time"

	"github.com/google/uuid"
)

type FileKind string

const (
	FileAudio  FileKind = "audio"
	FileImage  FileKind = "image"
	FileUpload FileKind = "upload"
)

// StoredFile ghi lại mỗi blob đã upload lên storage để dọn các file không được gắn vào podcast nào.
type StoredFile struct {
	StorageID   string     `gorm:"size:255;primaryKey" json:"storage_id"`
	Kind        FileKind   `gorm:"type:varchar(20);not null" json:"kind"`
	OwnerID     *uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
	ContentType string     `gorm:"size:100" json:"content_type"`
	Size        int64      `json:"size"`
	Attached    bool       `gorm:"default:false;index" json:"attached"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}
