package storage

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/LJTian/CryptoPulse/internal/collector"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ArchivedArticle 历史归档行。快照是“最新一轮”的整体覆盖，
// 归档则按 URL 幂等累积每轮见过的文章，便于按日期回看。
type ArchivedArticle struct {
	ID           string            `gorm:"primaryKey;size:40" json:"id"`
	Title        string            `gorm:"size:512" json:"title"`
	URL          string            `gorm:"size:1024;uniqueIndex" json:"url"`
	Source       string            `gorm:"size:64;index" json:"source"`
	Sentiment    string            `gorm:"size:16;index" json:"sentiment"`
	Summary      string            `gorm:"size:600" json:"summary"`
	CapturedAt   time.Time         `gorm:"index" json:"capturedAt"`
	CapturedDate string            `gorm:"size:10;index" json:"capturedDate"` // YYYY-MM-DD（UTC），用于按日期筛选
	ExtraData    datatypes.JSONMap `gorm:"type:jsonb" json:"extraData"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ArchivedArticle) TableName() string { return "articles" }

// Archive 基于 Postgres 的文章历史库。未配置 DSN 时整个功能关闭，
// 所有方法对 nil 接收者都安全——调用方不用到处判空。
type Archive struct {
	db *gorm.DB
}

func NewArchive(dsn string) (*Archive, error) {
	if dsn == "" {
		return nil, nil
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&ArchivedArticle{}); err != nil {
		return nil, err
	}
	return &Archive{db: db}, nil
}

// Enabled 归档是否可用
func (a *Archive) Enabled() bool {
	return a != nil && a.db != nil
}

// SaveBatch 把一轮快照的文章幂等写入归档。已存在的 URL 更新标题/情绪/摘要，
// ExtraData 里的 first_captured_at 只在首次入库时写，记录文章第一次被看到的时间。
func (a *Archive) SaveBatch(snap NewsSnapshot) error {
	if !a.Enabled() {
		return nil
	}

	for _, art := range snap.Articles {
		// 没有链接就没有幂等键，跳过归档；快照里仍然保留这一条
		if art.Link == "" || art.Link == collector.NoLink {
			continue
		}

		row := &ArchivedArticle{
			ID:           hashURL(art.Link),
			Title:        toValidUTF8(art.Title),
			URL:          art.Link,
			Source:       snap.Source,
			Sentiment:    string(art.Sentiment),
			Summary:      truncateRunes(toValidUTF8(art.Summary), 600),
			CapturedAt:   snap.Timestamp,
			CapturedDate: snap.Timestamp.UTC().Format("2006-01-02"),
			ExtraData: datatypes.JSONMap{
				"first_captured_at": snap.Timestamp.UTC().Format(time.RFC3339),
			},
		}

		if err := a.db.Where("url = ?", row.URL).FirstOrCreate(row).Error; err != nil {
			return err
		}
		_ = a.db.Model(row).Updates(map[string]any{
			"title":         row.Title,
			"sentiment":     row.Sentiment,
			"summary":       row.Summary,
			"captured_at":   row.CapturedAt,
			"captured_date": row.CapturedDate,
		}).Error
	}
	return nil
}

// ListByDate 返回某天（UTC）的归档；date 为空时取最近 limit 条
func (a *Archive) ListByDate(date string, limit int) ([]ArchivedArticle, error) {
	if !a.Enabled() {
		return nil, nil
	}
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	var list []ArchivedArticle
	q := a.db.Model(&ArchivedArticle{})
	if date != "" {
		q = q.Where("captured_date = ?", date)
	}
	if err := q.Order("captured_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func hashURL(url string) string {
	h := sha1.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}

// toValidUTF8 规范为合法 UTF-8，避免 Postgres invalid byte sequence
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunes 按 rune 数截断，保证不超过数据库字段长度
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
