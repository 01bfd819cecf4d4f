// Package draft 在本地 SQLite 中保存简历文档的草稿快照。
// 保存失败时编辑器会写入一份快照，避免本地修改随进程退出丢失。
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"aiInterview/internal/errcode"
)

// Snapshot 是某份简历最近一次未能上传的文档快照。
type Snapshot struct {
	ResumeID   int64          `gorm:"primaryKey;autoIncrement:false"`
	TemplateID string         `gorm:"size:64"`
	Layout     datatypes.JSON `gorm:"type:jsonb"`
	SavedAt    time.Time
}

// Store 是草稿快照的持久化层。
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Open 打开（必要时创建）本地草稿库并完成迁移。path 为 ":memory:" 时仅驻留内存。
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open draft db: %w", err)
	}
	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		return nil, fmt.Errorf("migrate draft db: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Put 写入或覆盖某份简历的快照，每份简历只保留最新一份。
func (s *Store) Put(ctx context.Context, resumeID int64, templateID string, layout json.RawMessage) error {
	snap := Snapshot{
		ResumeID:   resumeID,
		TemplateID: templateID,
		Layout:     datatypes.JSON(layout),
		SavedAt:    s.now(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&snap).Error
	if err != nil {
		return fmt.Errorf("store draft snapshot: %w", err)
	}
	return nil
}

// Get 读取某份简历的快照。
func (s *Store) Get(ctx context.Context, resumeID int64) (Snapshot, error) {
	var snap Snapshot
	err := s.db.WithContext(ctx).First(&snap, "resume_id = ?", resumeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Snapshot{}, errcode.New(errcode.KindNotFound, "no draft snapshot")
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load draft snapshot: %w", err)
	}
	return snap, nil
}

// Delete 删除某份简历的快照，快照不存在时不报错。
func (s *Store) Delete(ctx context.Context, resumeID int64) error {
	if err := s.db.WithContext(ctx).Delete(&Snapshot{}, "resume_id = ?", resumeID).Error; err != nil {
		return fmt.Errorf("delete draft snapshot: %w", err)
	}
	return nil
}

// All 按保存时间倒序列出全部快照。
func (s *Store) All(ctx context.Context) ([]Snapshot, error) {
	var snaps []Snapshot
	if err := s.db.WithContext(ctx).Order("saved_at desc").Find(&snaps).Error; err != nil {
		return nil, fmt.Errorf("list draft snapshots: %w", err)
	}
	return snaps, nil
}
