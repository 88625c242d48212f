package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleBatchReduce(t *testing.T) {
	t.Run("odd sample count takes middle value", func(t *testing.T) {
		var b SampleBatch
		b.Add(19.8, 52.0)
		b.Add(20.1, 50.0)
		b.Add(20.0, 51.0)

		temp, hum, err := b.Reduce()
		require.NoError(t, err)
		assert.Equal(t, 20.0, temp)
		assert.Equal(t, 51.0, hum)
	})

	t.Run("even sample count averages the two middle values", func(t *testing.T) {
		var b SampleBatch
		b.Add(19.0, 40.0)
		b.Add(19.5, 42.0)
		b.Add(20.5, 44.0)
		b.Add(21.0, 46.0)

		temp, hum, err := b.Reduce()
		require.NoError(t, err)
		assert.Equal(t, 20.0, temp)
		assert.Equal(t, 43.0, hum)
	})

	t.Run("metrics are reduced independently", func(t *testing.T) {
		// The median temperature comes from the second sample while the
		// median humidity comes from the first; the output pair does not
		// have to originate from a single sample.
		var b SampleBatch
		b.Add(25.0, 50.0)
		b.Add(20.0, 80.0)
		b.Add(15.0, 20.0)

		temp, hum, err := b.Reduce()
		require.NoError(t, err)
		assert.Equal(t, 20.0, temp)
		assert.Equal(t, 50.0, hum)
	})

	t.Run("single sample is its own median", func(t *testing.T) {
		var b SampleBatch
		b.Add(22.3, 61.5)

		temp, hum, err := b.Reduce()
		require.NoError(t, err)
		assert.Equal(t, 22.3, temp)
		assert.Equal(t, 61.5, hum)
	})

	t.Run("empty batch fails", func(t *testing.T) {
		var b SampleBatch
		assert.True(t, b.Empty())

		_, _, err := b.Reduce()
		assert.ErrorIs(t, err, ErrEmptyBatch)
	})
}
