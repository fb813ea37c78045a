package model

import (
	"time"
)

// Note mapped from table <note>
type Note struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content" form:"content"`
	Title     *string   `gorm:"column:title;type:text" json:"title" form:"title"`
	Tags      string    `gorm:"column:tags;type:text;not null" json:"tags" form:"tags"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_note_created_at;precision:6;not null;autoCreateTime:false" json:"createdAt" form:"createdAt"`
}
