package animation

import (
	"hash/fnv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/desertthunder/searchviz/internal/models"
)

// ValueSource supplies the value substituted into a sub-step's placeholder.
//
// It is consulted once per sub-step when the sub-step first becomes visible. An empty string leaves
// the sub-step without a value.
type ValueSource interface {
	Value(key models.SubStepKey, in Inputs) string
}

// ValueFunc adapts a function to [ValueSource].
type ValueFunc func(key models.SubStepKey, in Inputs) string

func (f ValueFunc) Value(key models.SubStepKey, in Inputs) string { return f(key, in) }

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// EstimatedValues produces plausible counts derived from the query so a given query always narrates
// the same numbers.
type EstimatedValues struct{}

func (EstimatedValues) Value(key models.SubStepKey, in Inputs) string {
	h := fnv.New32a()
	h.Write([]byte(string(in.SearchType) + ":" + in.Query))
	seed := int(h.Sum32() % 100000)

	switch key.Stage {
	case 2:
		return FormatCount(1200 + seed%48000)
	case 3:
		return FormatCount(8 + seed%40)
	case 4:
		return FormatCount(50 + seed%200)
	case 5:
		return FormatCount(3 + seed%47)
	default:
		return FormatCount(1 + seed%10)
	}
}
