// Package dwell builds G4 pause sequences and the retract/lift bracket that
// surrounds them when a layer must wait.
package dwell

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Defaults for the pause bracket.
const (
	DefaultSegmentLength    = 10 * time.Second
	DefaultRetractionLength = 6.0  // mm
	DefaultRetractionSpeed  = 40.0 // mm/s
	DefaultPrimeOffset      = 0.1  // mm re-extruded less than retracted
	DefaultLiftZ            = 1.0  // mm
	DefaultShiftY           = 10.0 // mm
)

// ErrInvalidSegment is returned for a non-positive segment length.
var ErrInvalidSegment = errors.New("pause segment length must be positive")

// Settings controls pause segmentation and the surrounding motion.
type Settings struct {
	// SegmentLength caps a single G4 pause.
	SegmentLength time.Duration

	// Retract pulls filament back before lifting away from the part.
	Retract bool

	// RetractionLength is the filament retracted, in mm.
	RetractionLength float64

	// RetractionSpeed is the feed for the backoff and return moves, in mm/s.
	RetractionSpeed float64

	// PrimeOffset is subtracted from the re-extrusion on return to avoid a blob.
	PrimeOffset float64

	// LiftZ and ShiftY move the nozzle away from the print while waiting.
	LiftZ  float64
	ShiftY float64
}

// DefaultSettings returns the stock bracket used by the clean command.
func DefaultSettings() Settings {
	return Settings{
		SegmentLength:    DefaultSegmentLength,
		RetractionLength: DefaultRetractionLength,
		RetractionSpeed:  DefaultRetractionSpeed,
		PrimeOffset:      DefaultPrimeOffset,
		LiftZ:            DefaultLiftZ,
		ShiftY:           DefaultShiftY,
	}
}

// Plan is an ordered list of pause segments.
type Plan []time.Duration

// Total returns the summed pause time.
func (p Plan) Total() time.Duration {
	var sum time.Duration
	for _, d := range p {
		sum += d
	}
	return sum
}

// Synthesizer turns a required wait into G-code.
type Synthesizer struct {
	settings Settings
}

// NewSynthesizer validates settings and returns a Synthesizer.
func NewSynthesizer(s Settings) (*Synthesizer, error) {
	if s.SegmentLength < time.Millisecond {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSegment, s.SegmentLength)
	}
	if s.RetractionSpeed <= 0 {
		return nil, fmt.Errorf("retraction speed must be positive: %v", s.RetractionSpeed)
	}
	if s.Retract && (s.RetractionLength < 0 || s.PrimeOffset < 0 || s.PrimeOffset > s.RetractionLength) {
		return nil, fmt.Errorf("prime offset %v must be within [0, retraction length %v]", s.PrimeOffset, s.RetractionLength)
	}
	return &Synthesizer{settings: s}, nil
}

// Settings returns the synthesizer configuration.
func (s *Synthesizer) Settings() Settings {
	return s.settings
}

// Milliseconds truncates a wait to whole milliseconds, the resolution of G4 P.
// The small guard keeps float noise such as 4.8*1000 = 4799.999... from
// losing a millisecond. Non-positive waits give 0.
func Milliseconds(seconds float64) int64 {
	if !(seconds > 0) {
		return 0
	}
	return int64(math.Floor(seconds*1000 + 1e-6))
}

// Segments splits seconds into full-length segments plus one remainder.
// The plan total never exceeds the request and falls short of it by less
// than a millisecond. Zero-length segments are never produced.
func (s *Synthesizer) Segments(seconds float64) Plan {
	total := Milliseconds(seconds)
	if total == 0 {
		return nil
	}
	seg := s.settings.SegmentLength.Milliseconds()

	plan := make(Plan, 0, total/seg+1)
	for i := int64(0); i < total/seg; i++ {
		plan = append(plan, time.Duration(seg)*time.Millisecond)
	}
	if rem := total % seg; rem > 0 {
		plan = append(plan, time.Duration(rem)*time.Millisecond)
	}
	return plan
}

// Commands renders a plan as G4 dwell lines.
func (s *Synthesizer) Commands(plan Plan) []string {
	out := make([]string, 0, len(plan))
	for _, d := range plan {
		out = append(out, fmt.Sprintf("G4 P%d ; Dwell for %s seconds", d.Milliseconds(), num(d.Seconds())))
	}
	return out
}

// Block returns the full pause block for a wait of seconds: switch to
// relative moves, back off, dwell, return, and restore absolute modes.
// A wait shorter than a millisecond yields nil.
func (s *Synthesizer) Block(seconds float64) []string {
	plan := s.Segments(seconds)
	if len(plan) == 0 {
		return nil
	}
	backoff, ret := s.bracket()
	dwell := s.Commands(plan)

	out := make([]string, 0, len(dwell)+6)
	out = append(out, "G91", "M83", backoff)
	out = append(out, dwell...)
	out = append(out, ret, "G90", "M82")
	return out
}

func (s *Synthesizer) bracket() (backoff, ret string) {
	st := s.settings
	feed := num(st.RetractionSpeed * 60)
	lift, shift := num(st.LiftZ), num(st.ShiftY)

	if st.Retract {
		backoff = fmt.Sprintf("G1 E%s Z%s Y%s F%s ;Retract filament, raise Z, and shift Y",
			num(-st.RetractionLength), lift, shift, feed)
		ret = fmt.Sprintf("G1 E%s Z%s Y%s F%s ;Re-extrude slightly less, lower Z, and return Y",
			num(st.RetractionLength-st.PrimeOffset), num(-st.LiftZ), num(-st.ShiftY), feed)
		return backoff, ret
	}
	backoff = fmt.Sprintf("G1 Z%s Y%s F%s ;Just raise Z and shift Y without retracting", lift, shift, feed)
	ret = fmt.Sprintf("G1 Z%s Y%s F%s ;Return Z and Y to original positions", num(-st.LiftZ), num(-st.ShiftY), feed)
	return backoff, ret
}

// num formats a G-code number without trailing zeros, rounded to microns.
func num(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // normalize -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
