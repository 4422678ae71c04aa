// Package leaderboard aggregates score and game-over events into simple
// all-time rankings. It is a bus collaborator, not part of the session
// core: it observes scoreUpdate and gameOver and never touches sessions.
package leaderboard

import (
	"sort"
	"sync"

	"github.com/mvb0005/SweepTogether-sub000/internal/game"
)

// Metric names an aggregated value.
type Metric string

const (
	// MetricPoints: cumulative positive score deltas across all games.
	MetricPoints Metric = "points"
	// MetricWins: games won.
	MetricWins Metric = "wins"
)

// Entry is one leaderboard row.
type Entry struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Value    int    `json:"value"`
}

// Board keeps the all-time tallies. Reset partitioning (daily/weekly) is
// deliberately not implemented here.
type Board struct {
	mu        sync.RWMutex
	usernames map[string]string
	points    map[string]int
	wins      map[string]int
}

func New() *Board {
	return &Board{
		usernames: make(map[string]string),
		points:    make(map[string]int),
		wins:      make(map[string]int),
	}
}

// Deliver implements game.Sink. Only scoreUpdate, gameOver and
// playerJoined (for usernames) are of interest.
func (b *Board) Deliver(env game.Envelope) {
	switch ev := env.Event.(type) {
	case game.PlayerJoined:
		b.mu.Lock()
		b.usernames[ev.Player.ID] = ev.Player.Username
		b.mu.Unlock()
	case game.ScoreUpdate:
		if ev.Delta <= 0 {
			return
		}
		b.mu.Lock()
		b.points[ev.PlayerID] += ev.Delta
		b.mu.Unlock()
	case game.GameOver:
		if ev.Winner == "" {
			return
		}
		b.mu.Lock()
		b.wins[ev.Winner]++
		b.mu.Unlock()
	}
}

// Top returns the highest-ranked entries for the metric, at most limit.
// Ties order by player id for stable output.
func (b *Board) Top(metric Metric, limit int) []Entry {
	if limit <= 0 {
		limit = 10
	}

	b.mu.RLock()
	var src map[string]int
	switch metric {
	case MetricWins:
		src = b.wins
	default:
		src = b.points
	}
	entries := make([]Entry, 0, len(src))
	for id, v := range src {
		entries = append(entries, Entry{PlayerID: id, Username: b.usernames[id], Value: v})
	}
	b.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
