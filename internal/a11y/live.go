package a11y

import (
	"time"

	"golang.org/x/time/rate"
)

// PoliteInterval is the minimum spacing between polite announcements.
const PoliteInterval = 750 * time.Millisecond

// Politeness of an announcement.
type Politeness int

const (
	Polite Politeness = iota
	Assertive
)

func (p Politeness) String() string {
	if p == Assertive {
		return "assertive"
	}
	return "polite"
}

// Announcement is one message read out by assistive technology.
type Announcement struct {
	Text       string
	Politeness Politeness
	At         time.Time
}

// Region is a live region. It is driven with explicit times so it can run on logical clocks.
type Region struct {
	limiter   *rate.Limiter
	queue     []string
	polite    Announcement
	assertive Announcement
	listener  func(Announcement)
}

func NewRegion() *Region {
	return &Region{limiter: rate.NewLimiter(rate.Every(PoliteInterval), 1)}
}

// OnAnnounce registers fn to observe every announcement as it is made.
func (r *Region) OnAnnounce(fn func(Announcement)) { r.listener = fn }

// Polite queues text and announces whatever the pacing allows at now. Repeating the last queued
// or announced text is a no-op.
func (r *Region) Polite(text string, now time.Time) {
	last := r.polite.Text
	if n := len(r.queue); n > 0 {
		last = r.queue[n-1]
	}
	if text == "" || text == last {
		r.Flush(now)
		return
	}
	r.queue = append(r.queue, text)
	r.Flush(now)
}

// Assertive announces text immediately and discards queued polite messages.
func (r *Region) Assertive(text string, now time.Time) {
	r.queue = nil
	r.limiter.AllowN(now, 1)
	r.emit(Announcement{Text: text, Politeness: Assertive, At: now})
}

// Flush announces queued polite messages the pacing allows at now and returns how many went out.
func (r *Region) Flush(now time.Time) int {
	n := 0
	for len(r.queue) > 0 && r.limiter.AllowN(now, 1) {
		text := r.queue[0]
		r.queue = r.queue[1:]
		r.emit(Announcement{Text: text, Politeness: Polite, At: now})
		n++
	}
	return n
}

// NextAt returns when the next queued polite message can be announced.
func (r *Region) NextAt(now time.Time) (time.Time, bool) {
	if len(r.queue) == 0 {
		return time.Time{}, false
	}
	tokens := r.limiter.TokensAt(now)
	if tokens >= 1 {
		return now, true
	}
	return now.Add(time.Duration((1 - tokens) * float64(PoliteInterval))), true
}

// Drop discards queued polite messages without announcing them.
func (r *Region) Drop() { r.queue = nil }

// Pending returns the number of queued polite messages.
func (r *Region) Pending() int { return len(r.queue) }

// PoliteText is the text currently in the polite region.
func (r *Region) PoliteText() string { return r.polite.Text }

// AssertiveText is the text currently in the assertive region.
func (r *Region) AssertiveText() string { return r.assertive.Text }

// Clear empties both regions and the queue.
func (r *Region) Clear() {
	r.queue = nil
	r.polite = Announcement{}
	r.assertive = Announcement{}
}

func (r *Region) emit(a Announcement) {
	if a.Politeness == Assertive {
		r.assertive = a
	} else {
		r.polite = a
	}
	if r.listener != nil {
		r.listener(a)
	}
}
