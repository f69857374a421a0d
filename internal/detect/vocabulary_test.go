package detect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVocabulary_UnionOfTiers(t *testing.T) {
	v := NewVocabulary([]string{"The", " and "}, []string{"and", "OF", ""})

	require.Equal(t, 3, v.Len())
	require.Equal(t, []string{"and", "of", "the"}, v.Words())
	require.True(t, v.Contains("THE"))
	require.False(t, v.Contains("a"))
}

func TestVocabulary_NilIsEmpty(t *testing.T) {
	var v *Vocabulary
	require.False(t, v.Contains("the"))
	require.Zero(t, v.Len())
	require.Nil(t, v.Words())
}
