// Package queue implements the per-guild ordered list of pending tracks.
//
// A Queue is not safe for concurrent use; the player owns one queue per guild
// and only touches it from that guild's executor.
package queue

import "djtoad/internal/music/track"

type Queue struct {
	tracks []track.Track
}

func New(tracks ...track.Track) *Queue {
	q := &Queue{}
	q.ReplaceAll(tracks)
	return q
}

// PushBack appends t to the tail.
func (q *Queue) PushBack(t track.Track) {
	q.tracks = append(q.tracks, t)
}

// PushFront inserts t at the head so it plays next.
func (q *Queue) PushFront(t track.Track) {
	q.tracks = append(q.tracks, track.Track{})
	copy(q.tracks[1:], q.tracks)
	q.tracks[0] = t
}

// PopFront removes and returns the head. ok is false when the queue is empty.
func (q *Queue) PopFront() (t track.Track, ok bool) {
	if len(q.tracks) == 0 {
		return track.Track{}, false
	}
	t = q.tracks[0]
	q.tracks[0] = track.Track{}
	q.tracks = q.tracks[1:]
	if len(q.tracks) == 0 {
		q.tracks = nil
	}
	return t, true
}

// PeekAll returns a copy of the pending tracks in play order.
func (q *Queue) PeekAll() []track.Track {
	out := make([]track.Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}

func (q *Queue) Clear() {
	q.tracks = nil
}

// ReplaceAll discards the pending tracks and enqueues tracks in order.
func (q *Queue) ReplaceAll(tracks []track.Track) {
	q.tracks = make([]track.Track, len(tracks))
	copy(q.tracks, tracks)
}

func (q *Queue) Len() int {
	return len(q.tracks)
}
