package model

import (
	"github.com/bytedance/sonic"
	"gorm.io/gorm"
)

// AutoMigrate 按名称迁移表结构
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "Note":
		return db.AutoMigrate(Note{})
	}
	return nil
}

// AutoMigrateAll 迁移全部表结构
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(Note{})
}

// EncodeTags 将标签列表编码为 JSON 文本
func EncodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	return sonic.MarshalString(tags)
}

// DecodeTags 解码标签列，数据损坏时返回空列表
func DecodeTags(raw string) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}
	if err := sonic.UnmarshalString(raw, &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}
