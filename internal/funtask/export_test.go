package funtask

import "time"

func (b *Leaderboard) SetClock(now func() time.Time) { b.now = now }
