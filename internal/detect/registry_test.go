package detect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/texdup/internal/document"
	"github.com/zjrosen/texdup/internal/segment"
)

func named(name string) Detector {
	return Func{DetectorName: name, Fn: func(document.Document, []segment.Paragraph) ([]Result, error) {
		return nil, nil
	}}
}

func TestRegistry_PreservesOrder(t *testing.T) {
	r := NewRegistry(named("first"), named("second"))
	require.NoError(t, r.Register(named("third")))

	var names []string
	for _, d := range r.Detectors() {
		names = append(names, d.Name())
	}
	require.Equal(t, []string{"first", "second", "third"}, names)
}

func TestRegistry_RejectsDuplicateNames(t *testing.T) {
	r := NewRegistry(named("dup"))
	require.Error(t, r.Register(named("dup")))
	require.Equal(t, 1, r.Len())
}

func TestNewRegistry_FirstDuplicateWins(t *testing.T) {
	first := Func{DetectorName: "dup", Fn: func(document.Document, []segment.Paragraph) ([]Result, error) {
		return []Result{{Message: "first"}}, nil
	}}
	r := NewRegistry(first, named("dup"), named("other"))

	require.Equal(t, 2, r.Len())
	results, err := r.Detectors()[0].Check(nil, nil)
	require.NoError(t, err)
	require.Equal(t, "first", results[0].Message)
	require.Equal(t, "other", r.Detectors()[1].Name())
}

func TestRegistry_Replace(t *testing.T) {
	r := NewRegistry(named("a"), NewDuplicates(nil))
	replacement := NewDuplicates(NewVocabulary([]string{"x"}), WithScope(ScopeLine))
	r.Replace(replacement)

	ds := r.Detectors()
	require.Len(t, ds, 2)
	require.Same(t, replacement, ds[1])

	r.Replace(named("c"))
	require.Equal(t, 3, r.Len())
}

func TestRegistry_DetectorsIsACopy(t *testing.T) {
	r := NewRegistry(named("a"))
	ds := r.Detectors()
	ds[0] = named("mutated")
	require.Equal(t, "a", r.Detectors()[0].Name())
}
