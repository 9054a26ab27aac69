package diagram

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultInclineAngle is drawn when an incline description carries no angle.
	DefaultInclineAngle = 30.0
	// MaxLabelRunes bounds the placeholder text kept from a description.
	MaxLabelRunes = 120
	// DefaultBodyLabel names the body when the description names none.
	DefaultBodyLabel = "m"
)

// Classification vocabularies, checked in this order; the first match decides.
var (
	inclineWords  = []string{"incline", "inclined", "inclines", "ramp", "ramps", "slope", "slopes", "sloped"}
	freeBodyTerms = []string{"free body", "freebody", "fbd", "force diagram", "forces diagram"}
)

// forceKind is one recognisable force and the words that name it.
type forceKind struct {
	label   string
	symbol  string
	words   []string
	phrases []string
}

// forceKinds is scanned in order; a force's position in DiagramSpec.Forces is
// the position of its first mention in the description.
var forceKinds = []forceKind{
	{label: "gravity", symbol: "mg", words: []string{"gravity", "gravitational", "weight", "mg"}},
	{label: "normal", symbol: "N", words: []string{"normal"}},
	{label: "friction", symbol: "f", words: []string{"friction", "frictional"}},
	{label: "tension", symbol: "T", words: []string{"tension"}},
	{label: "applied", symbol: "F", words: []string{"applied", "push", "pushes", "pushed", "pushing", "pull", "pulls", "pulled", "pulling"}},
	{label: "drag", symbol: "D", words: []string{"drag"}, phrases: []string{"air resistance"}},
}

// Units allowed between a magnitude and the force keyword ("20 N friction").
var magnitudeUnits = map[string]bool{"n": true, "newton": true, "newtons": true, "kn": true, "x": true}

var bodyWords = []string{"block", "box", "crate", "mass", "ball", "car", "cart", "sled", "object", "person", "particle"}

var surfaceWords = []string{"surface", "floor", "ground", "table", "plane", "track", "road"}

var surfaceAdjectives = map[string]bool{"rough": true, "smooth": true, "frictionless": true, "horizontal": true, "level": true, "flat": true, "icy": true}

var degreeRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*-?\s*(?:°|º|degrees?\b|deg\b)`)

// directionPhrase is a direction named in a description. motion marks the
// phrases that say which way the body moves; "along the plane" and the like
// only name an axis.
type directionPhrase struct {
	phrases []string
	dir     Vec
	frame   Frame
	motion  bool
}

// direction phrases for tension and applied forces, checked in order
var directionPhrases = []directionPhrase{
	{[]string{"up the incline", "up the ramp", "up the slope", "up the plane"}, Right, FrameSurface, true},
	{[]string{"down the incline", "down the ramp", "down the slope", "down the plane"}, Left, FrameSurface, true},
	{[]string{"along the incline", "along the ramp", "along the slope", "along the plane", "parallel to the incline", "parallel to the plane", "parallel to the surface"}, Right, FrameSurface, false},
	{[]string{"perpendicular to the surface", "perpendicular to the incline", "perpendicular to the plane", "perpendicular to the ramp"}, Up, FrameSurface, false},
	{[]string{"straight up", "upward", "upwards", "vertically up"}, Up, FrameWorld, true},
	{[]string{"straight down", "downward", "downwards", "vertically down"}, Down, FrameWorld, true},
	{[]string{"to the left", "leftward", "leftwards"}, Left, FrameWorld, true},
	{[]string{"to the right", "rightward", "rightwards"}, Right, FrameWorld, true},
}

// clauseBreak splits a description into clauses. A full stop only breaks
// when followed by space or the end, so "12.5" survives.
var clauseBreak = regexp.MustCompile(`[;:,!?\n]|\.(?:\s|$)`)

// description is a lower-cased, tokenised view of a diagram description.
type description struct {
	tokens []string
	// joined is the tokens separated by single spaces and padded with a
	// space at each end, so phrase lookups match whole words only.
	joined string
}

func newDescription(raw string) description {
	tokens := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
	})
	for i, t := range tokens {
		tokens[i] = strings.Trim(t, ".")
	}
	return description{tokens: tokens, joined: " " + strings.Join(tokens, " ") + " "}
}

func (d description) hasPhrase(phrase string) bool {
	return strings.Contains(d.joined, " "+phrase+" ")
}

func (d description) hasAny(phrases []string) bool {
	for _, p := range phrases {
		if d.hasPhrase(p) {
			return true
		}
	}
	return false
}

// firstIndex returns the token index of the earliest word or phrase, or -1.
func (d description) firstIndex(words, phrases []string) int {
	best := -1
	for i, t := range d.tokens {
		for _, w := range words {
			if t == w && (best < 0 || i < best) {
				best = i
			}
		}
	}
	for _, p := range phrases {
		at := strings.Index(d.joined, " "+p+" ")
		if at < 0 {
			continue
		}
		i := strings.Count(d.joined[:at+1], " ") - 1
		if best < 0 || i < best {
			best = i
		}
	}
	return best
}

// Interpret maps a diagram description to a DiagramSpec. It never fails:
// descriptions it cannot place come back as a Generic spec that carries the
// (truncated) description as its label.
func Interpret(raw string) DiagramSpec {
	d := newDescription(raw)

	kind := classify(d)
	if kind == KindGeneric {
		return DiagramSpec{Kind: KindGeneric, BodyLabel: truncateLabel(raw), Forces: []Force{}}
	}

	spec := DiagramSpec{
		Kind:         kind,
		BodyLabel:    bodyLabel(d),
		SurfaceLabel: surfaceLabel(d, kind),
	}
	if kind == KindInclinedPlane {
		spec.AngleDegrees = extractAngle(raw)
	}
	spec.Forces = extractForces(raw, d, kind)
	return spec
}

func classify(d description) Kind {
	if d.hasAny(inclineWords) {
		return KindInclinedPlane
	}
	if d.hasAny(freeBodyTerms) {
		return KindFreeBody
	}
	for _, fk := range forceKinds {
		if d.firstIndex(fk.words, fk.phrases) >= 0 {
			return KindFreeBody
		}
	}
	return KindGeneric
}

// extractAngle returns the first number followed by a degree indicator, if
// it lies in [0, 90].
func extractAngle(raw string) *float64 {
	m := degreeRe.FindStringSubmatch(strings.ToLower(raw))
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 0 || v > 90 {
		return nil
	}
	return &v
}

type mention struct {
	at    int
	force Force
}

func extractForces(raw string, d description, kind Kind) []Force {
	clauses := splitClauses(raw)

	// tension and applied take a direction from their own clause; the first
	// of those that describes motion sets what friction and drag oppose
	motion, motionFrame := defaultMotion(kind)
	steered := make(map[string]directionPhrase)
	moved := false
	for _, fk := range forceKinds {
		if fk.label != "tension" && fk.label != "applied" {
			continue
		}
		dp, ok := attachedDirection(clauses, fk)
		if !ok {
			continue
		}
		steered[fk.label] = dp
		if dp.motion && !moved {
			motion, motionFrame, moved = dp.dir, dp.frame, true
		}
	}

	var mentions []mention
	for _, fk := range forceKinds {
		at := d.firstIndex(fk.words, fk.phrases)
		if at < 0 {
			continue
		}
		f := Force{Label: fk.label, Symbol: fk.symbol, Frame: FrameWorld, RelativeMagnitude: magnitudeBefore(d, at)}
		switch fk.label {
		case "gravity":
			f.Direction = Down
		case "normal":
			f.Direction = Up
			if kind == KindInclinedPlane {
				f.Frame = FrameSurface
			}
		case "friction", "drag":
			f.Direction, f.Frame = opposeMotion(motion, motionFrame, kind)
		default:
			f.Direction, f.Frame = Right, FrameWorld
			if dp, ok := steered[fk.label]; ok {
				f.Direction, f.Frame = dp.dir, dp.frame
			}
		}
		mentions = append(mentions, mention{at: at, force: f})
	}

	sort.SliceStable(mentions, func(i, j int) bool { return mentions[i].at < mentions[j].at })
	forces := make([]Force, 0, len(mentions))
	for _, m := range mentions {
		forces = append(forces, m.force)
	}
	return forces
}

func splitClauses(raw string) []description {
	parts := clauseBreak.Split(strings.ToLower(raw), -1)
	clauses := make([]description, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			clauses = append(clauses, newDescription(p))
		}
	}
	return clauses
}

// attachedDirection finds the first direction phrase sharing a clause with
// the force.
func attachedDirection(clauses []description, fk forceKind) (directionPhrase, bool) {
	for _, c := range clauses {
		if c.firstIndex(fk.words, fk.phrases) < 0 {
			continue
		}
		for _, dp := range directionPhrases {
			if c.hasAny(dp.phrases) {
				return dp, true
			}
		}
	}
	return directionPhrase{}, false
}

// defaultMotion is sliding down the slope on an incline, rightward otherwise.
func defaultMotion(kind Kind) (Vec, Frame) {
	if kind == KindInclinedPlane {
		return Left, FrameSurface
	}
	return Right, FrameWorld
}

// opposeMotion points friction and drag against the motion. A vertical
// motion carries no sliding direction, so the kind's default is opposed.
func opposeMotion(motion Vec, frame Frame, kind Kind) (Vec, Frame) {
	if motion == Up || motion == Down {
		if kind == KindInclinedPlane {
			return Right, FrameSurface
		}
		return Left, FrameWorld
	}
	return motion.Neg(), frame
}

// magnitudeBefore reads a positive number immediately before the keyword at
// token index at, optionally followed by a unit such as "N". It returns 1
// otherwise.
func magnitudeBefore(d description, at int) float64 {
	i := at - 1
	if i >= 0 && magnitudeUnits[d.tokens[i]] {
		i--
	}
	if i < 0 {
		return 1
	}
	v, err := strconv.ParseFloat(d.tokens[i], 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 1
	}
	return v
}

func bodyLabel(d description) string {
	if at := d.firstIndex(bodyWords, nil); at >= 0 {
		return d.tokens[at]
	}
	return DefaultBodyLabel
}

func surfaceLabel(d description, kind Kind) *string {
	words := surfaceWords
	if kind == KindInclinedPlane {
		words = append(append([]string{}, inclineWords...), surfaceWords...)
	}
	at := d.firstIndex(words, nil)
	if at < 0 {
		if d.hasPhrase("frictionless") {
			s := "frictionless surface"
			return &s
		}
		return nil
	}
	label := d.tokens[at]
	if at > 0 && surfaceAdjectives[d.tokens[at-1]] {
		label = d.tokens[at-1] + " " + label
	}
	return &label
}

func truncateLabel(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	if utf8.RuneCountInString(s) <= MaxLabelRunes {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:MaxLabelRunes-1])) + "…"
}
