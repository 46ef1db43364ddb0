package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnv_Get(t *testing.T) {
	t.Setenv("PEPTIDE_TEST_SECRET", "swordfish")

	v, err := Env{}.Get(context.Background(), "PEPTIDE_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "swordfish", v)

	_, err = Env{}.Get(context.Background(), "PEPTIDE_TEST_SECRET_ABSENT")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChain_FirstHitWins(t *testing.T) {
	chain := Chain{
		Static{"b": "from-first"},
		Static{"a": "fallback", "b": "shadowed"},
	}

	v, err := chain.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "from-first", v)

	v, err = chain.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	_, err = chain.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
