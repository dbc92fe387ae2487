package domain

import "time"

// MonthlyBalance is an account's opening balance for a period.
type MonthlyBalance struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Note           *string
	ID             string
	OwnerID        string
	AccountID      string
	Year           int
	Month          int
	OpeningBalance int64
}

// Period returns the balance's period.
func (b *MonthlyBalance) Period() Period {
	return Period{Year: b.Year, Month: b.Month}
}

// MonthlyLock records whether a period is closed to writes. A missing row
// means unlocked.
type MonthlyLock struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	OwnerID   string
	Year      int
	Month     int
	IsLocked  bool
}

// Period returns the lock's period.
func (l *MonthlyLock) Period() Period {
	return Period{Year: l.Year, Month: l.Month}
}
