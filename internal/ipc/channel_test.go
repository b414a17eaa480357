package ipc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for name, want := range map[string]Kind{
		"pipe":      KindPipe,
		"queue":     KindQueue,
		"msgqueue":  KindQueue,
		"shm":       KindSharedMem,
		"sharedmem": KindSharedMem,
	} {
		got, err := ParseKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseKind("carrier-pigeon")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	for _, kind := range []Kind{KindPipe, KindQueue, KindSharedMem} {
		ch, err := New(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, ch.Kind())
	}

	_, err := New(Kind("Bogus"))
	assert.Error(t, err)
}
