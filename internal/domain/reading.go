package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReadingStatus represents the processing state of a reading task.
type ReadingStatus string

// Possible reading status values. The lifecycle is forward-only:
// pending -> processing -> {completed, failed}.
const (
	ReadingStatusPending    ReadingStatus = "pending"
	ReadingStatusProcessing ReadingStatus = "processing"
	ReadingStatusCompleted  ReadingStatus = "completed"
	ReadingStatusFailed     ReadingStatus = "failed"
)

// Orientation is the facing of a drawn card.
type Orientation string

// Valid card orientations.
const (
	OrientationUpright  Orientation = "upright"
	OrientationReversed Orientation = "reversed"
)

// Common validation errors for ReadingTask.
var (
	ErrEmptyReadingID      = errors.New("reading ID cannot be empty")
	ErrEmptyReadingOwner   = errors.New("reading owner cannot be empty")
	ErrEmptyQuestion       = errors.New("question cannot be empty")
	ErrEmptyCards          = errors.New("at least one card is required")
	ErrEmptySpread         = errors.New("spread name cannot be empty")
	ErrInvalidOrientation  = errors.New("card orientation must be upright or reversed")
	ErrInvalidReadingState = errors.New("invalid reading status")
)

// Card is a single drawn card with its orientation.
type Card struct {
	Name        string
	Orientation Orientation
}

// CardDraw is an ordered list of drawn cards. On the wire it is a JSON
// object mapping card name to orientation; the entry order is the draw
// order and is significant for spread positions, so decoding preserves it.
type CardDraw []Card

// UnmarshalJSON decodes a {"name":"orientation",...} object while keeping
// the key order the client sent.
func (d *CardDraw) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("cards must be a JSON object")
	}

	cards := CardDraw{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("card name must be a string")
		}

		var orientation string
		if err := dec.Decode(&orientation); err != nil {
			return fmt.Errorf("orientation for card %q: %w", name, err)
		}

		cards = append(cards, Card{Name: name, Orientation: Orientation(orientation)})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*d = cards
	return nil
}

// MarshalJSON encodes the draw back into a JSON object in draw order.
func (d CardDraw) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		orientation, err := json.Marshal(string(c.Orientation))
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(orientation)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ReadingResult is the structured interpretation produced by the LLM.
// Missing fields are normalized to empty strings at the client boundary,
// so a stored result always carries all four keys.
type ReadingResult struct {
	ReadingContent string `json:"reading_content"`
	Analysis       string `json:"analysis"`
	Quote          string `json:"quote"`
	Advice         string `json:"advice"`
}

// ParseStoredResult decodes a stored result string into a ReadingResult.
// Legacy records stored plain text; those are wrapped with the raw text as
// the reading content and the other fields empty.
func ParseStoredResult(stored string) ReadingResult {
	if stored == "" {
		return ReadingResult{}
	}

	var result ReadingResult
	if err := json.Unmarshal([]byte(stored), &result); err == nil {
		return result
	}

	return ReadingResult{ReadingContent: stored}
}

// ReadingTask is one submitted tarot-reading request and its lifecycle
// record. The task is created pending, is written to exactly twice by its
// background processor, and is never destroyed; deletion only flips the
// visibility flag.
type ReadingTask struct {
	ID        uuid.UUID     `json:"id"`
	OwnerID   string        `json:"owner_id"`
	Question  string        `json:"question"`
	Cards     CardDraw      `json:"cards"`
	Spread    string        `json:"spread"`
	Positions []string      `json:"positions,omitempty"`
	Status    ReadingStatus `json:"status"`
	// Result is the serialized terminal outcome: a ReadingResult JSON
	// document when completed, a human-readable message when failed,
	// empty otherwise.
	Result    string    `json:"result,omitempty"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReadingTask creates a new pending ReadingTask owned by ownerID.
// It assigns the task id, which is never reused or reassigned.
// Returns an error if validation fails.
func NewReadingTask(
	ownerID string,
	question string,
	cards CardDraw,
	spread string,
	positions []string,
) (*ReadingTask, error) {
	now := time.Now().UTC()
	reading := &ReadingTask{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Question:  question,
		Cards:     cards,
		Spread:    spread,
		Positions: positions,
		Status:    ReadingStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := reading.Validate(); err != nil {
		return nil, err
	}

	return reading, nil
}

// Validate checks the ReadingTask invariants.
// The positions list is advisory and is not hard-validated here; callers
// only use it when its length matches the card count.
func (r *ReadingTask) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyReadingID
	}
	if r.OwnerID == "" {
		return ErrEmptyReadingOwner
	}
	if r.Question == "" {
		return ErrEmptyQuestion
	}
	if len(r.Cards) == 0 {
		return ErrEmptyCards
	}
	if r.Spread == "" {
		return ErrEmptySpread
	}
	for _, c := range r.Cards {
		if c.Orientation != OrientationUpright && c.Orientation != OrientationReversed {
			return fmt.Errorf("%w: card %q has orientation %q",
				ErrInvalidOrientation, c.Name, c.Orientation)
		}
	}
	if !isValidReadingStatus(r.Status) {
		return ErrInvalidReadingState
	}
	return nil
}

// Terminal reports whether the status admits no further transitions.
func (s ReadingStatus) Terminal() bool {
	return s == ReadingStatusCompleted || s == ReadingStatusFailed
}

// CanTransitionTo is the single place the forward-only rule lives.
// pending may move to processing or straight to a terminal state (the
// processing mark is best-effort); processing may only move to a terminal
// state; terminal states admit nothing.
func (s ReadingStatus) CanTransitionTo(next ReadingStatus) bool {
	switch s {
	case ReadingStatusPending:
		return next == ReadingStatusProcessing || next.Terminal()
	case ReadingStatusProcessing:
		return next.Terminal()
	default:
		return false
	}
}

// isValidReadingStatus checks if the given status is a known ReadingStatus.
func isValidReadingStatus(status ReadingStatus) bool {
	switch status {
	case ReadingStatusPending, ReadingStatusProcessing,
		ReadingStatusCompleted, ReadingStatusFailed:
		return true
	default:
		return false
	}
}
