package model

import (
	"encoding/json"
)

// UserRecord is the full per-user record as it is persisted in the user
// store. The password hash is stored under the "password" key of the
// persisted document and is never serialized towards API clients.
type UserRecord struct {
	// PasswordHash stores a PHC-formatted argon2id hash of the user's password
	PasswordHash string `json:"password"`
	// Gamification holds the user's progress state
	Gamification GamificationState `json:"gamification_state"`
	// ProductCache maps barcodes to previously fetched product payloads.
	// The server never interprets its contents.
	ProductCache ProductCache `json:"product_cache"`
}

// ProductCache is an opaque pass-through blob of client-defined product
// payloads keyed by barcode.
type ProductCache map[string]json.RawMessage

// GamificationState holds level, XP, statistics, streaks and badges.
type GamificationState struct {
	Level     int           `json:"level"`
	CurrentXP int           `json:"current_xp"`
	Lifetime  LifetimeStats `json:"lifetime_stats"`
	Streaks   Streaks       `json:"streaks"`
	Badges    []string      `json:"badges"`
}

// LifetimeStats tracks sugar consumption counters. DailySugarConsumedG is
// only valid for the calendar date stored in LastConsumedDate.
type LifetimeStats struct {
	TotalSugarSavedG    float64 `json:"total_sugar_saved_g"`
	TotalSugarConsumedG float64 `json:"total_sugar_consumed_g"`
	DailySugarConsumedG float64 `json:"daily_sugar_consumed_g"`
	// LastConsumedDate is an ISO-8601 calendar date; empty means the user
	// never logged a consumption.
	LastConsumedDate string `json:"last_consumed_date,omitempty"`
}

// Streaks tracks consecutive logging days.
type Streaks struct {
	CurrentStreakDays int    `json:"current_streak_days"`
	LastLogDate       string `json:"last_log_date,omitempty"`
}

// DefaultGamificationState returns the state assigned to a freshly
// registered user.
func DefaultGamificationState() GamificationState {
	return GamificationState{
		Level:  1,
		Badges: []string{},
	}
}

// Normalize fills in defaults for legacy records that predate newer
// fields. Absent sub-objects unmarshal to their zero values; the only
// zero value that is not a valid default is a level below 1.
func (g *GamificationState) Normalize() {
	if g.Level < 1 {
		g.Level = 1
	}
	if g.Badges == nil {
		g.Badges = []string{}
	}
}

// Rollover returns the stats adjusted for the given calendar date: if the
// daily counter belongs to an earlier date it is reset to zero and the
// date is moved forward. Stats already stamped with today pass through
// unchanged. The receiver is never modified; callers decide whether the
// result is persisted.
func (s LifetimeStats) Rollover(today string) LifetimeStats {
	if s.LastConsumedDate == today {
		return s
	}
	s.DailySugarConsumedG = 0
	s.LastConsumedDate = today
	return s
}

// UsersStore abstracts the per-user record repository.
//
// Implementations load and save the whole user collection as one unit;
// there is no partial update at the storage layer. Two sessions of the
// same user racing on writes resolve as last-write-wins.
type UsersStore interface {
	// Count returns the number of registered users
	Count() (int64, error)
	// Create registers a user; the implementation must hash the password
	Create(username, password string) (*UserRecord, error)
	// Get returns a user's record by username
	Get(username string) (*UserRecord, error)
	// Authenticate checks a username/password combo and returns the record
	Authenticate(username, password string) (*UserRecord, error)
	// UpdateState replaces gamification state and product cache,
	// leaving the password hash untouched
	UpdateState(username string, state GamificationState, cache ProductCache) error
}
