package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"backoffice/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Cache mirrors the in-memory collections to an embedded SQLite file so a branch
// machine keeps working between sessions and through backend outages. It is a
// cache of the remote sheet, never a source of truth: every save overwrites the
// collection wholesale, matching the snapshot semantics of the data it replaces.
type Cache struct {
	db *gorm.DB
}

// kvRecord backs the odd single-value keys (settings lists, attendance state,
// current date) that do not deserve a table of their own.
type kvRecord struct {
	Key   string `gorm:"primaryKey;type:varchar(100)"`
	Value string `gorm:"type:text"`
}

// CachedCredential lets a branch sign in while the backend is unreachable.
// Only the bcrypt hash is kept; the cleartext never touches disk.
type CachedCredential struct {
	Username     string `gorm:"primaryKey;type:varchar(100)"`
	PasswordHash string `gorm:"type:varchar(100)"`
	UserJSON     string `gorm:"type:text"`
}

// Well-known kv keys.
const (
	KeySettings        = "settings"
	KeyAttendanceState = "attendance_state"
	KeyAttendanceDate  = "attendance_date"
	KeyLastSync        = "last_sync"
)

// ErrNotFound is returned by kv and credential lookups that miss.
var ErrNotFound = errors.New("snapshot: not found")

// Open creates or opens the cache file and migrates its schema.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}

	err = db.AutoMigrate(
		&model.Entry{},
		&model.Expense{},
		&model.StockItem{},
		&model.Branch{},
		&model.User{},
		&kvRecord{},
		&CachedCredential{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate snapshot: %w", err)
	}

	return &Cache{db: db}, nil
}

// replaceAll deletes every row of dst's table and inserts rows in one transaction.
func (c *Cache) replaceAll(dst any, rows any, count int) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(dst).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		return tx.Create(rows).Error
	})
}

func (c *Cache) SaveEntries(entries []model.Entry) error {
	return c.replaceAll(&model.Entry{}, entries, len(entries))
}

func (c *Cache) SaveExpenses(expenses []model.Expense) error {
	return c.replaceAll(&model.Expense{}, expenses, len(expenses))
}

func (c *Cache) SaveStock(items []model.StockItem) error {
	return c.replaceAll(&model.StockItem{}, items, len(items))
}

func (c *Cache) SaveBranches(branches []model.Branch) error {
	return c.replaceAll(&model.Branch{}, branches, len(branches))
}

func (c *Cache) SaveUsers(users []model.User) error {
	return c.replaceAll(&model.User{}, users, len(users))
}

func (c *Cache) LoadEntries() ([]model.Entry, error) {
	var entries []model.Entry
	if err := c.db.Order("timestamp desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Cache) LoadExpenses() ([]model.Expense, error) {
	var expenses []model.Expense
	if err := c.db.Order("timestamp desc").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (c *Cache) LoadStock() ([]model.StockItem, error) {
	var items []model.StockItem
	if err := c.db.Order("barcode").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Cache) LoadBranches() ([]model.Branch, error) {
	var branches []model.Branch
	if err := c.db.Order("id").Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

func (c *Cache) LoadUsers() ([]model.User, error) {
	var users []model.User
	if err := c.db.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SetValue stores any JSON-serializable value under key.
func (c *Cache) SetValue(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	rec := kvRecord{Key: key, Value: string(raw)}
	return c.db.Save(&rec).Error
}

// GetValue decodes the value stored under key into dest. ErrNotFound when the
// key was never written.
func (c *Cache) GetValue(key string, dest any) error {
	var rec kvRecord
	if err := c.db.First(&rec, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal([]byte(rec.Value), dest)
}

func (c *Cache) SaveSettings(s model.Settings) error {
	return c.SetValue(KeySettings, s)
}

func (c *Cache) LoadSettings() (model.Settings, error) {
	var s model.Settings
	if err := c.GetValue(KeySettings, &s); err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

// SaveCredential caches a verified login for offline fallback.
func (c *Cache) SaveCredential(username, passwordHash string, user model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	rec := CachedCredential{Username: username, PasswordHash: passwordHash, UserJSON: string(raw)}
	return c.db.Save(&rec).Error
}

// LookupCredential returns the cached hash and user for username.
func (c *Cache) LookupCredential(username string) (string, model.User, error) {
	var rec CachedCredential
	if err := c.db.First(&rec, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", model.User{}, ErrNotFound
		}
		return "", model.User{}, err
	}
	var user model.User
	if err := json.Unmarshal([]byte(rec.UserJSON), &user); err != nil {
		return "", model.User{}, err
	}
	return rec.PasswordHash, user, nil
}
