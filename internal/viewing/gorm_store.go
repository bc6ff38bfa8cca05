package viewing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"remote-viewing/internal/db"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormStore persists sessions in the rv_sessions table. The connection must be
// opened with TranslateError so duplicate keys surface as gorm.ErrDuplicatedKey.
// Created dates are written and compared in UTC and read back in location.
type GormStore struct {
	db       *gorm.DB
	location *time.Location
}

func NewGormStore(conn *gorm.DB, location *time.Location) *GormStore {
	if location == nil {
		location = time.UTC
	}
	return &GormStore{db: conn, location: location}
}

func (g *GormStore) Create(ctx context.Context, s *Session) error {
	record := toRecord(*s)
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return appendEvent(tx, &record.ID, "session_created", map[string]any{
			"name":              record.Name,
			"unique_identifier": record.UniqueIdentifier,
		})
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", ErrDuplicateIdentifier, s.UniqueIdentifier)
	}
	if err != nil {
		return err
	}
	s.ID = record.ID
	return nil
}

func (g *GormStore) Get(ctx context.Context, id uint) (*Session, error) {
	if id == 0 {
		return nil, ErrSessionNotFound
	}
	var record db.RVSession
	if err := g.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, notFound(err)
	}
	out := fromRecord(record, g.location)
	return &out, nil
}

func (g *GormStore) FindByUniqueIdentifier(ctx context.Context, code string) (*Session, error) {
	var record db.RVSession
	if err := g.db.WithContext(ctx).Where("unique_identifier = ?", code).First(&record).Error; err != nil {
		return nil, notFound(err)
	}
	out := fromRecord(record, g.location)
	return &out, nil
}

func (g *GormStore) FindLatestByName(ctx context.Context, name string) (*Session, error) {
	var record db.RVSession
	err := g.db.WithContext(ctx).
		Where("name = ?", name).
		Order("created_date DESC").
		Order("id DESC").
		First(&record).Error
	if err != nil {
		return nil, notFound(err)
	}
	out := fromRecord(record, g.location)
	return &out, nil
}

func (g *GormStore) DeleteWhere(ctx context.Context, c Criteria) (int64, error) {
	if c.IsEmpty() {
		return 0, nil
	}
	var deleted int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := applyCriteria(tx, c).Delete(&db.RVSession{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		if deleted == 0 {
			return nil
		}
		var sessionID *uint
		if c.ID != 0 {
			sessionID = &c.ID
		}
		return appendEvent(tx, sessionID, "sessions_deleted", map[string]any{
			"count":         deleted,
			"missing_guess": c.MissingGuess,
			"rating":        c.Rating,
			"created_until": c.CreatedAtOrBefore,
		})
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (g *GormStore) Update(ctx context.Context, id uint, changes Changes) error {
	updates := map[string]any{}
	payload := map[string]any{}
	if changes.UserGuess != nil {
		updates["user_guess"] = *changes.UserGuess
		payload["user_guess"] = *changes.UserGuess
	}
	if changes.Rating != nil {
		updates["rating"] = *changes.Rating
		payload["rating"] = *changes.Rating
	}
	if len(updates) == 0 {
		_, err := g.Get(ctx, id)
		return err
	}
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&db.RVSession{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSessionNotFound
		}
		return appendEvent(tx, &id, "session_updated", payload)
	})
}

func (g *GormStore) List(ctx context.Context, field SortField, dir Direction) ([]Session, error) {
	field, dir = NormalizeSort(string(field), string(dir))
	query := g.db.WithContext(ctx).Model(&db.RVSession{})
	column := string(field)
	nullable := field == SortByUserGuess || field == SortByRating
	if dir == Ascending {
		if nullable {
			query = query.Order(column + " IS NULL")
		}
		query = query.Order(column + " ASC").Order("id ASC")
	} else {
		if nullable {
			query = query.Order(column + " IS NULL DESC")
		}
		query = query.Order(column + " DESC").Order("id DESC")
	}
	var records []db.RVSession
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]Session, 0, len(records))
	for _, record := range records {
		list = append(list, fromRecord(record, g.location))
	}
	return list, nil
}

func applyCriteria(query *gorm.DB, c Criteria) *gorm.DB {
	if c.ID != 0 {
		query = query.Where("id = ?", c.ID)
	}
	if c.Rating != nil {
		query = query.Where("rating = ?", *c.Rating)
	}
	if !c.CreatedAtOrBefore.IsZero() {
		query = query.Where("created_date <= ?", c.CreatedAtOrBefore.UTC())
	}
	if c.MissingGuess {
		query = query.Where("(user_guess IS NULL OR TRIM(user_guess) = '')")
	}
	return query
}

func appendEvent(tx *gorm.DB, sessionID *uint, eventType string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.Create(&db.Event{
		SessionID: sessionID,
		Type:      eventType,
		Payload:   datatypes.JSON(data),
	}).Error
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSessionNotFound
	}
	return err
}

func toRecord(s Session) db.RVSession {
	return db.RVSession{
		ID:               s.ID,
		ImageURL:         s.ImageURL,
		Name:             s.Name,
		UniqueIdentifier: s.UniqueIdentifier,
		UserGuess:        s.UserGuess,
		Rating:           s.Rating,
		CreatedDate:      s.CreatedDate.UTC(),
	}
}

func fromRecord(record db.RVSession, location *time.Location) Session {
	return Session{
		ID:               record.ID,
		ImageURL:         record.ImageURL,
		Name:             record.Name,
		UniqueIdentifier: record.UniqueIdentifier,
		UserGuess:        record.UserGuess,
		Rating:           record.Rating,
		CreatedDate:      record.CreatedDate.In(location),
	}
}
