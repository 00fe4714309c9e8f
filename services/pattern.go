// services/pattern.go
package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sujalrawat884/BadmintonAIManager/models"
	"github.com/sujalrawat884/BadmintonAIManager/utils"
)

// DigestSchemaVersion tags the rendered digest so the oracle-facing format
// can evolve without silently changing shape under the prompt.
const DigestSchemaVersion = 1

// PatternConfig tunes how much history establishes a regular weekday.
type PatternConfig struct {
	Weeks       int // lookback window in weeks
	MinSessions int // distinct weeks a weekday must recur in to count as regular
}

func DefaultPatternConfig() PatternConfig {
	return PatternConfig{Weeks: 4, MinSessions: 2}
}

// MemberPattern is the derived attendance summary for one member.
type MemberPattern struct {
	MemberID        string     `json:"member_id"`
	MemberName      string     `json:"member_name"`
	ContactAddress  string     `json:"contact_address"`
	RegularWeekdays []string   `json:"regular_weekdays"`
	LastSeen        *time.Time `json:"last_seen,omitempty"`
	IsDelinquent    bool       `json:"is_delinquent"`
	MissedWeekday   string     `json:"missed_weekday,omitempty"`
	MissedDate      *time.Time `json:"missed_date,omitempty"`
}

// Digest is the structured summary handed to the decision oracle instead of
// raw booking rows, to bound prompt size.
type Digest struct {
	SchemaVersion int             `json:"schema_version"`
	GeneratedFor  time.Time       `json:"generated_for"`
	Members       []MemberPattern `json:"members"`
}

// BuildDigest derives per-member attendance patterns from a booking window
// and flags members whose most recent regular-weekday occurrence has no
// booking. today is collapsed to a UTC calendar day.
func BuildDigest(bookings []models.Booking, today time.Time, cfg PatternConfig) Digest {
	if cfg.Weeks <= 0 {
		cfg.Weeks = 4
	}
	if cfg.MinSessions <= 0 {
		cfg.MinSessions = 2
	}
	today = utils.UTCDay(today)
	windowStart := today.AddDate(0, 0, -7*cfg.Weeks)

	type memberState struct {
		name    string
		contact string
		// all attended days, deduplicated
		days map[time.Time]bool
		// regular-slot days per weekday -> set of week keys (Monday of
		// the ISO week), restricted to the pattern window
		regularWeeks map[time.Weekday]map[time.Time]bool
		lastSeen     time.Time
	}

	members := map[string]*memberState{}
	seen := map[string]bool{} // (member_id, session_date, venue) dedup

	for _, b := range bookings {
		day := b.SessionDay()
		key := fmt.Sprintf("%s|%s|%s", b.MemberID, day.Format("2006-01-02"), b.Venue)
		if seen[key] {
			continue
		}
		seen[key] = true

		st := members[b.MemberID]
		if st == nil {
			st = &memberState{
				days:         map[time.Time]bool{},
				regularWeeks: map[time.Weekday]map[time.Time]bool{},
			}
			members[b.MemberID] = st
		}
		// newest-first input, first row carries the freshest metadata
		if st.name == "" {
			st.name = b.MemberName
		}
		if st.contact == "" {
			st.contact = b.ContactAddress
		}
		st.days[day] = true
		if day.After(st.lastSeen) {
			st.lastSeen = day
		}

		// Pattern evidence: regular-slot bookings strictly before today,
		// inside the lookback window. Today's own booking can explain an
		// occurrence but cannot establish the habit.
		if b.IsRegularSlot && day.Before(today) && !day.Before(windowStart) {
			week := utils.MostRecentWeekday(day, time.Monday)
			wd := day.Weekday()
			if st.regularWeeks[wd] == nil {
				st.regularWeeks[wd] = map[time.Time]bool{}
			}
			st.regularWeeks[wd][week] = true
		}
	}

	digest := Digest{SchemaVersion: DigestSchemaVersion, GeneratedFor: today}
	for id, st := range members {
		mp := MemberPattern{
			MemberID:       id,
			MemberName:     st.name,
			ContactAddress: st.contact,
		}
		if !st.lastSeen.IsZero() {
			last := st.lastSeen
			mp.LastSeen = &last
		}

		var regular []time.Weekday
		for wd, weeks := range st.regularWeeks {
			if len(weeks) >= cfg.MinSessions {
				regular = append(regular, wd)
			}
		}
		sort.Slice(regular, func(i, j int) bool { return regular[i] < regular[j] })
		for _, wd := range regular {
			mp.RegularWeekdays = append(mp.RegularWeekdays, wd.String())
		}

		// At most one delinquency per run: only the most recent missed
		// occurrence across the member's regular weekdays is flagged.
		var missed time.Time
		var missedWD time.Weekday
		for _, wd := range regular {
			occ := utils.MostRecentWeekday(today, wd)
			if !st.days[occ] && occ.After(missed) {
				missed = occ
				missedWD = wd
			}
		}
		if !missed.IsZero() {
			mp.IsDelinquent = true
			mp.MissedWeekday = missedWD.String()
			m := missed
			mp.MissedDate = &m
		}

		digest.Members = append(digest.Members, mp)
	}

	sort.Slice(digest.Members, func(i, j int) bool {
		return digest.Members[i].MemberID < digest.Members[j].MemberID
	})
	return digest
}

// Delinquents returns the members flagged in this digest.
func (d Digest) Delinquents() []MemberPattern {
	var out []MemberPattern
	for _, m := range d.Members {
		if m.IsDelinquent {
			out = append(out, m)
		}
	}
	return out
}

// Member looks a member up by id.
func (d Digest) Member(memberID string) (MemberPattern, bool) {
	for _, m := range d.Members {
		if m.MemberID == memberID {
			return m, true
		}
	}
	return MemberPattern{}, false
}

// RenderJSON serializes the digest for the oracle prompt.
func (d Digest) RenderJSON() (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return string(raw), nil
}
